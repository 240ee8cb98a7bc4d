package installer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	foundationerrors "git.home.luguber.info/inful/aspnetcore-buildpack/internal/foundation/errors"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/fsutil"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/logfields"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/observability"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/out"
)

const (
	// DotnetCacheDir is the cache key and build directory of the Dotnet CLI.
	DotnetCacheDir = ".dotnet"
	// VersionMarker records the installed Dotnet CLI version inside DotnetCacheDir.
	VersionMarker = ".buildpack-version"
	// GlobalJSON pins the SDK version of an application.
	GlobalJSON = "global.json"

	dotnetDependency = "dotnet"
)

// DotnetInstaller installs the Dotnet CLI.
type DotnetInstaller struct {
	opts Options
}

// NewDotnetInstaller returns the Dotnet CLI installer.
func NewDotnetInstaller(opts Options) *DotnetInstaller {
	return &DotnetInstaller{opts: opts}
}

func (d *DotnetInstaller) Name() string               { return "Dotnet CLI" }
func (d *DotnetInstaller) CacheDir() string           { return DotnetCacheDir }
func (d *DotnetInstaller) InstallOrder() int          { return 2 }
func (d *DotnetInstaller) InRuntime() bool            { return true }
func (d *DotnetInstaller) InstallDescription() string { return "Installing Dotnet CLI" }
func (d *DotnetInstaller) RuntimePath() string        { return "$HOME/" + DotnetCacheDir }

func (d *DotnetInstaller) PathInStaging() string {
	return filepath.Join(d.opts.BuildDir, DotnetCacheDir)
}

// ShouldInstall is false when the build directory already holds a published
// application or the cached Dotnet CLI matches the required version.
func (d *DotnetInstaller) ShouldInstall(app ProjectView) bool {
	return !d.published(app) && !d.cached()
}

// ShouldCompile is true unless the application was published before staging.
func (d *DotnetInstaller) ShouldCompile(app ProjectView) bool {
	name, err := app.PublishedProject()
	if err != nil {
		slog.Debug("Published project lookup failed", logfields.Error(err))
		return true
	}
	return name == ""
}

func (d *DotnetInstaller) published(app ProjectView) bool {
	name, err := app.PublishedProject()
	if err != nil || name == "" {
		return false
	}
	return exists(filepath.Join(d.opts.BuildDir, name))
}

// cached reports whether the cache entry's version marker names the required version.
// Any failure reads as not cached.
func (d *DotnetInstaller) cached() bool {
	marker := filepath.Join(d.opts.CacheDir, DotnetCacheDir, VersionMarker)
	data, err := os.ReadFile(marker)
	if err != nil {
		return false
	}
	version, err := d.RequiredVersion()
	if err != nil {
		slog.Debug("Dotnet version resolution failed", logfields.Error(err))
		return false
	}
	return strings.TrimSpace(string(data)) == version
}

// RequiredVersion is the SDK version from global.json, or the catalogue default.
func (d *DotnetInstaller) RequiredVersion() (string, error) {
	requested, err := d.requestedVersion()
	if err != nil {
		return "", err
	}
	dep, err := d.opts.Catalog.Resolve(dotnetDependency, requested)
	if err != nil {
		return "", err
	}
	return dep.Version, nil
}

func (d *DotnetInstaller) requestedVersion() (string, error) {
	data, err := fsutil.ReadText(filepath.Join(d.opts.BuildDir, GlobalJSON))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "read "+GlobalJSON).Build()
	}
	var doc struct {
		SDK struct {
			Version string `json:"version"`
		} `json:"sdk"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", foundationerrors.ValidationError("parse "+GlobalJSON).WithCause(err).Build()
	}
	return strings.TrimSpace(doc.SDK.Version), nil
}

// Install downloads and unpacks the Dotnet CLI into the build directory and records
// its version.
func (d *DotnetInstaller) Install(ctx context.Context, p out.Printer) error {
	requested, err := d.requestedVersion()
	if err != nil {
		return err
	}
	dep, err := d.opts.Catalog.Resolve(dotnetDependency, requested)
	if err != nil {
		return err
	}

	p.Print("dotnet version: " + dep.Version)
	name := fmt.Sprintf("dotnet.%s.linux-amd64.tar.gz", dep.Version)
	observability.InfoContext(ctx, "Installing Dotnet CLI", logfields.Version(dep.Version), logfields.Dependency(name))

	archive, err := d.opts.Fetcher.Fetch(ctx, name)
	if err != nil {
		return err
	}
	if err := dep.Verify(archive); err != nil {
		return err
	}

	dest := filepath.Join(d.opts.BuildDir, DotnetCacheDir)
	if err := Extract(archive, dest); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dest, VersionMarker), []byte(dep.Version+"\n"), 0o644); err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryInstall, "write Dotnet CLI version marker").Build()
	}
	return nil
}
