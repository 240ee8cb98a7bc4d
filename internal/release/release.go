// Package release writes the droplet's startup profile script and produces the
// process types the platform starts the application with.
package release

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/appdir"
	foundationerrors "git.home.luguber.info/inful/aspnetcore-buildpack/internal/foundation/errors"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/installer"
)

const (
	profileDir    = ".profile.d"
	startupScript = "startup.sh"
	appHome       = "/app"
	serverURLs    = "--server.urls http://0.0.0.0:${PORT}"
)

// ErrNoStartCommand is returned when the droplet holds nothing runnable.
var ErrNoStartCommand = errors.New("No project could be identified to run")

// Output is the release document consumed by the platform.
type Output struct {
	DefaultProcessTypes map[string]string `yaml:"default_process_types"`
}

// Releaser assembles the release of one build directory.
type Releaser struct {
	buildDir string
	registry *installer.Registry
}

// New returns a Releaser for buildDir. The registry supplies the runtime locations of
// the native library and the toolchain.
func New(buildDir string, registry *installer.Registry) *Releaser {
	return &Releaser{buildDir: buildDir, registry: registry}
}

// Release writes the startup script and returns the YAML release document.
func (r *Releaser) Release() ([]byte, error) {
	cmd, err := r.StartCommand()
	if err != nil {
		return nil, err
	}
	if err := r.WriteStartupScript(); err != nil {
		return nil, err
	}
	data, err := yaml.Marshal(Output{DefaultProcessTypes: map[string]string{"web": cmd}})
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryRelease, "encode release").Build()
	}
	return data, nil
}

// StartupScript returns the profile script content.
func (r *Releaser) StartupScript() string {
	lines := []string{"export HOME=" + appHome}
	if native := r.registry.Native(); native != nil {
		lines = append(lines, "export LD_LIBRARY_PATH=$LD_LIBRARY_PATH:"+native.RuntimeLibraryPath())
	}
	if tc := r.registry.Toolchain(); tc != nil {
		lines = append(lines, "export PATH=$PATH:"+tc.RuntimePath())
	}
	return strings.Join(lines, "\n") + "\n"
}

// WriteStartupScript writes .profile.d/startup.sh into the build directory.
func (r *Releaser) WriteStartupScript() error {
	dir := filepath.Join(r.buildDir, profileDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryRelease, "create "+profileDir).Build()
	}
	// #nosec G306 -- profile scripts are sourced by the platform user
	if err := os.WriteFile(filepath.Join(dir, startupScript), []byte(r.StartupScript()), 0o755); err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryRelease, "write startup script").Build()
	}
	return nil
}

// StartCommand picks how to start the application: the published self-contained
// binary, the published portable dll, or dotnet run in the main project.
func (r *Releaser) StartCommand() (string, error) {
	app := appdir.New(r.buildDir)

	name, err := app.PublishedProject()
	if err != nil {
		return "", err
	}
	if name != "" {
		if fileExists(filepath.Join(r.buildDir, name)) {
			return fmt.Sprintf("cd $HOME && ./%s %s", name, serverURLs), nil
		}
		if fileExists(filepath.Join(r.buildDir, name+".dll")) {
			return fmt.Sprintf("cd $HOME && dotnet %s.dll %s", name, serverURLs), nil
		}
	}

	mainProject, err := app.MainProjectPath()
	if err != nil {
		return "", foundationerrors.ReleaseError("release").
			WithCause(ErrNoStartCommand).
			WithContext("reason", err.Error()).
			Build()
	}
	return fmt.Sprintf("cd $HOME/%s && dotnet run %s", mainProject, serverURLs), nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
