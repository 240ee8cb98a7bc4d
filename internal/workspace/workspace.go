package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/logfields"
)

const dirPrefix = "aspnetcore-"

// Manager handles the lifecycle of one scratch directory.
type Manager struct {
	baseDir string
	tempDir string
}

// NewManager creates a manager whose scratch directories live under baseDir.
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{baseDir: baseDir}
}

// Create creates a fresh timestamped scratch directory. Calling Create again while a
// directory is active returns the active one.
func (m *Manager) Create() (string, error) {
	if m.tempDir != "" {
		return m.tempDir, nil
	}
	if err := os.MkdirAll(m.baseDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create scratch base directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	tempDir, err := os.MkdirTemp(m.baseDir, dirPrefix+timestamp+"-")
	if err != nil {
		return "", fmt.Errorf("failed to create scratch directory: %w", err)
	}

	m.tempDir = tempDir
	slog.Debug("Created scratch directory", logfields.Path(tempDir))
	return tempDir, nil
}

// GetPath returns the active scratch directory, or "" before Create.
func (m *Manager) GetPath() string {
	return m.tempDir
}

// Cleanup removes the scratch directory. It is safe to call more than once.
func (m *Manager) Cleanup() error {
	if m.tempDir == "" {
		return nil
	}

	if err := os.RemoveAll(m.tempDir); err != nil {
		return fmt.Errorf("failed to cleanup scratch directory: %w", err)
	}

	slog.Debug("Cleaned up scratch directory", logfields.Path(m.tempDir))
	m.tempDir = ""
	return nil
}
