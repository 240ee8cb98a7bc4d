package installer

import (
	"context"
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/logfields"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/observability"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/out"
)

// LibunwindCacheDir is the cache key and build directory of libunwind.
const LibunwindCacheDir = "libunwind"

// LibunwindInstaller installs the libunwind shared library the Dotnet CLI depends on.
type LibunwindInstaller struct {
	opts Options
}

func NewLibunwindInstaller(opts Options) *LibunwindInstaller {
	return &LibunwindInstaller{opts: opts}
}

func (l *LibunwindInstaller) Name() string               { return "libunwind" }
func (l *LibunwindInstaller) CacheDir() string           { return LibunwindCacheDir }
func (l *LibunwindInstaller) InstallOrder() int          { return 1 }
func (l *LibunwindInstaller) InRuntime() bool            { return true }
func (l *LibunwindInstaller) PathInStaging() string      { return "" }
func (l *LibunwindInstaller) InstallDescription() string { return "Extracting libunwind" }
func (l *LibunwindInstaller) RuntimeLibraryPath() string { return "$HOME/" + LibunwindCacheDir + "/lib" }

func (l *LibunwindInstaller) LibraryPath() string {
	return filepath.Join(l.opts.BuildDir, LibunwindCacheDir, "lib")
}

// ShouldInstall is false once libunwind is in the build directory, usually restored
// from the cache.
func (l *LibunwindInstaller) ShouldInstall(ProjectView) bool {
	return !exists(filepath.Join(l.opts.BuildDir, LibunwindCacheDir))
}

func (l *LibunwindInstaller) Install(ctx context.Context, p out.Printer) error {
	dep, err := l.opts.Catalog.Resolve(LibunwindCacheDir, "")
	if err != nil {
		return err
	}
	p.Print("libunwind version: " + dep.Version)
	name := fmt.Sprintf("libunwind-%s.tar.gz", dep.Version)
	observability.InfoContext(ctx, "Installing libunwind", logfields.Version(dep.Version), logfields.Dependency(name))

	archive, err := l.opts.Fetcher.Fetch(ctx, name)
	if err != nil {
		return err
	}
	if err := dep.Verify(archive); err != nil {
		return err
	}
	return Extract(archive, filepath.Join(l.opts.BuildDir, LibunwindCacheDir))
}
