package compile

import (
	"context"
	"os"
	"path/filepath"

	foundationerrors "git.home.luguber.info/inful/aspnetcore-buildpack/internal/foundation/errors"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/logfields"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/observability"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/out"
)

// NuGetCacheDir holds the NuGet package cache in the cache, build and source directories.
const NuGetCacheDir = ".nuget"

const nugetCacheName = "Nuget packages"

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// restoreCache copies every installer's cache entry into the build directory. Missing
// entries are skipped.
func (c *Compiler) restoreCache(ctx context.Context, s out.StepReporter) error {
	for _, inst := range c.registry.Ordered() {
		key := inst.CacheDir()
		if key == "" {
			continue
		}
		src := filepath.Join(c.cfg.CacheDir, key)
		if !exists(src) {
			continue
		}
		observability.DebugContext(ctx, "Restoring cache entry", logfields.CacheKey(key))
		if err := c.copier.Copy(src, c.cfg.BuildDir); err != nil {
			return foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "restore "+key).
				WithContext("installer", inst.Name()).
				Build()
		}
	}
	return nil
}

// nugetCacheValid: the cached NuGet packages were produced with the toolchain this build
// will use.
func (c *Compiler) nugetCacheValid() bool {
	tc := c.registry.Toolchain()
	if tc == nil || !exists(filepath.Join(c.cfg.CacheDir, NuGetCacheDir)) {
		return false
	}
	return !tc.ShouldInstall(c.app)
}

func (c *Compiler) shouldClearNuGetCache() bool {
	if !exists(filepath.Join(c.cfg.CacheDir, NuGetCacheDir)) {
		return false
	}
	return !c.cfg.CacheNuGetPackages || !c.nugetCacheValid()
}

func (c *Compiler) clearNuGetCache(_ context.Context, _ out.StepReporter) error {
	if err := os.RemoveAll(filepath.Join(c.cfg.CacheDir, NuGetCacheDir)); err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "clear NuGet cache").Build()
	}
	return nil
}

func (c *Compiler) restoreNuGetCache(_ context.Context, _ out.StepReporter) error {
	if !c.cfg.CacheNuGetPackages || !c.nugetCacheValid() {
		return nil
	}
	if err := c.copier.Copy(filepath.Join(c.cfg.CacheDir, NuGetCacheDir), c.cfg.BuildDir); err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "restore NuGet cache").Build()
	}
	return nil
}

// saveCache copies installer trees and the NuGet cache into the cache directory. A failed
// entry is reported and removed from the cache; the remaining entries are still saved.
func (c *Compiler) saveCache(ctx context.Context, _ out.StepReporter) error {
	for _, inst := range c.registry.Ordered() {
		key := inst.CacheDir()
		if key == "" {
			continue
		}
		root := c.sourceDir
		if inst.InRuntime() {
			root = c.cfg.BuildDir
		}
		c.saveEntry(ctx, inst.Name(), filepath.Join(root, key))
	}
	if c.cfg.CacheNuGetPackages {
		// dotnet restore writes packages under HOME, the source directory once moved.
		c.saveEntry(ctx, nugetCacheName, filepath.Join(c.sourceDir, NuGetCacheDir))
	}
	return nil
}

func (c *Compiler) saveEntry(ctx context.Context, name, dir string) {
	if !exists(dir) {
		return
	}
	err := c.copier.Copy(dir, c.cfg.CacheDir)
	if err == nil {
		c.recorder.IncCacheSave(name, true)
		return
	}

	c.out.Fail("Failed to save cached files for " + name)
	c.recorder.IncCacheSave(name, false)
	saveErr := foundationerrors.CacheError("save cache entry").
		WithCause(err).
		WithContext("entry", name).
		Build()
	observability.WarnContext(ctx, "Cache save failed",
		logfields.Installer(name),
		logfields.Path(dir),
		logfields.Error(saveErr))

	dest := filepath.Join(c.cfg.CacheDir, filepath.Base(dir))
	if rmErr := os.RemoveAll(dest); rmErr != nil {
		observability.WarnContext(ctx, "Failed to remove partial cache entry", logfields.Path(dest), logfields.Error(rmErr))
	}
}
