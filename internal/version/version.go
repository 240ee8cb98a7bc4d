package version

import (
	"os"
	"path/filepath"
	"strings"
)

// Version contains the buildpack version compiled into the binary.
// This should be set via build-time ldflags in production:
// go build -ldflags "-X git.home.luguber.info/inful/aspnetcore-buildpack/internal/version.Version=v1.0.0".
var Version = "unknown"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// FileName is the version file shipped at the buildpack root.
const FileName = "VERSION"

// Resolve returns the version recorded in buildpackDir/VERSION, or Version when the file
// is missing or empty.
func Resolve(buildpackDir string) string {
	if buildpackDir == "" {
		return Version
	}
	data, err := os.ReadFile(filepath.Join(buildpackDir, FileName))
	if err != nil {
		return Version
	}
	if v := strings.TrimSpace(string(data)); v != "" {
		return v
	}
	return Version
}
