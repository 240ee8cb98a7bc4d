// Package installer implements the dependencies the buildpack installs into a droplet:
// the libunwind native library, the Dotnet CLI toolchain, Node.js and Bower. Each
// installer decides from the application tree and the cache whether it needs to run,
// and declares where its files live while compiling and at runtime.
package installer

import (
	"context"
	"os"

	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/manifest"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/out"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/shell"
)

// ProjectView is the part of the project locator installers consult.
type ProjectView interface {
	ProjectPaths() ([]string, error)
	ProjectsWith(name string) ([]string, error)
	PublishedProject() (string, error)
}

// Installer owns the install and cache behavior of one dependency.
type Installer interface {
	Name() string
	// CacheDir is the cache key, a directory name under both the build and cache
	// directories. Empty means the installer is not cached.
	CacheDir() string
	InstallOrder() int
	// InRuntime reports whether the installed files stay in the droplet.
	InRuntime() bool
	// PathInStaging is added to PATH while compiling. Empty means none.
	PathInStaging() string
	InstallDescription() string
	ShouldInstall(app ProjectView) bool
	Install(ctx context.Context, p out.Printer) error
}

// Toolchain is the installer providing the compiler.
type Toolchain interface {
	Installer
	ShouldCompile(app ProjectView) bool
	// RuntimePath is the toolchain location inside the running droplet.
	RuntimePath() string
}

// NativeLibrary is the installer providing shared libraries the toolchain loads.
type NativeLibrary interface {
	Installer
	// LibraryPath is added to LD_LIBRARY_PATH while compiling.
	LibraryPath() string
	// RuntimeLibraryPath is the library location inside the running droplet.
	RuntimeLibraryPath() string
}

// Catalog resolves dependency versions.
type Catalog interface {
	Resolve(name, requested string) (manifest.Dependency, error)
}

// CommandRunner runs shell commands.
type CommandRunner interface {
	Run(ctx context.Context, cmd shell.Command, p out.Printer) error
}

// Options carries what every installer is constructed with.
type Options struct {
	BuildDir string
	CacheDir string
	Catalog  Catalog
	Fetcher  Fetcher
	Shell    CommandRunner
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
