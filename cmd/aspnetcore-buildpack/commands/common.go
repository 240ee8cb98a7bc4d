package commands

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/config"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/installer"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/logfields"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/manifest"
)

// ErrNotDetected is returned by detect when the application is not an ASP.NET Core app.
var ErrNotDetected = errors.New("no ASP.NET Core application detected")

// Global is shared by all subcommands.
type Global struct {
	Stdout io.Writer
}

func (g *Global) stdout() io.Writer {
	if g == nil || g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// CLI definition & global flags.
type CLI struct {
	Verbose      bool             `short:"v" help:"Enable verbose logging"`
	EnvFile      string           `name:"env-file" help:"Optional dotenv file supplying default environment variables" type:"path"`
	BuildpackDir string           `name:"buildpack-dir" help:"Buildpack root holding manifest.yml and VERSION (defaults to the parent of the binary's directory)" env:"BP_BUILDPACK_DIR" type:"path"`
	Version      kong.VersionFlag `name:"version" help:"Show version and exit"`

	Detect  DetectCmd  `cmd:"" help:"Report whether the application can be built by this buildpack"`
	Compile CompileCmd `cmd:"" help:"Install dependencies and publish the application into the droplet"`
	Release ReleaseCmd `cmd:"" help:"Write the startup script and print the release document"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if v, ok := os.LookupEnv(config.EnvLogLevel); ok {
		level = config.NormalizeLogLevel(v).SlogLevel()
	}
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// ResolveBuildpackDir returns the configured buildpack directory, falling back to the
// parent of the directory holding the running binary (the buildpack's bin/).
func (c *CLI) ResolveBuildpackDir() string {
	if c.BuildpackDir != "" {
		return c.BuildpackDir
	}
	exe, err := os.Executable()
	if err != nil {
		slog.Warn("Cannot locate executable, using working directory as buildpack directory", logfields.Error(err))
		return "."
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(filepath.Dir(exe))
}

// environment loads the process environment overlaid on the optional env file.
func (c *CLI) environment() (config.Environment, error) {
	return config.LoadEnvironment(c.EnvFile)
}

// NewRegistry builds the installer set. Node.js and Bower are only registered when the
// catalog carries a Node.js version.
func NewRegistry(opts installer.Options, catalog *manifest.Manifest) *installer.Registry {
	libunwind := installer.NewLibunwindInstaller(opts)
	dotnet := installer.NewDotnetInstaller(opts)
	if catalog == nil {
		return installer.NewRegistry(libunwind, dotnet)
	}
	nodeVersion, err := catalog.DefaultVersion(installer.NodeDependency)
	if err != nil {
		slog.Debug("No Node.js version in catalog, skipping Node.js and Bower", logfields.Error(err))
		return installer.NewRegistry(libunwind, dotnet)
	}
	node := installer.NewNodeInstaller(opts, nodeVersion)
	return installer.NewRegistry(libunwind, dotnet, node, installer.NewBowerInstaller(opts, node))
}
