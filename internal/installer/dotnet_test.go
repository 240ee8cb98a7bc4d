package installer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/appdir"
	foundationerrors "git.home.luguber.info/inful/aspnetcore-buildpack/internal/foundation/errors"
)

type dotnetFixture struct {
	build, cache string
	fetcher      *fakeFetcher
	installer    *DotnetInstaller
}

func newDotnetFixture(t *testing.T) *dotnetFixture {
	t.Helper()
	f := &dotnetFixture{
		build:   t.TempDir(),
		cache:   t.TempDir(),
		fetcher: &fakeFetcher{dir: t.TempDir()},
	}
	f.installer = NewDotnetInstaller(Options{
		BuildDir: f.build,
		CacheDir: f.cache,
		Catalog:  testCatalog(t),
		Fetcher:  f.fetcher,
	})
	return f
}

func (f *dotnetFixture) writeMarker(t *testing.T, version string) {
	t.Helper()
	dir := filepath.Join(f.cache, DotnetCacheDir)
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, VersionMarker), []byte(version), 0o600))
}

func TestDotnet_CachedVersionMatchesSkipsInstall(t *testing.T) {
	f := newDotnetFixture(t)
	touch(t, filepath.Join(f.build, "src", "app", "project.json"))
	f.writeMarker(t, "2.0.0\n")

	app := appdir.New(f.build)
	assert.False(t, f.installer.ShouldInstall(app))
	assert.True(t, f.installer.ShouldCompile(app))
	assert.Empty(t, f.fetcher.calls)
}

func TestDotnet_CachedVersionMismatch(t *testing.T) {
	f := newDotnetFixture(t)
	f.writeMarker(t, "2.0.0-preview")

	assert.True(t, f.installer.ShouldInstall(appdir.New(f.build)))
}

func TestDotnet_NoCacheEntry(t *testing.T) {
	f := newDotnetFixture(t)
	assert.True(t, f.installer.ShouldInstall(appdir.New(f.build)))
}

func TestDotnet_GlobalJSONSelectsVersion(t *testing.T) {
	f := newDotnetFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.build, GlobalJSON),
		[]byte("\xef\xbb\xbf{\"sdk\": {\"version\": \"1.1.4\"}}"), 0o600))

	v, err := f.installer.RequiredVersion()
	require.NoError(t, err)
	assert.Equal(t, "1.1.4", v)

	f.writeMarker(t, "2.0.0")
	assert.True(t, f.installer.ShouldInstall(appdir.New(f.build)))
	f.writeMarker(t, "1.1.4")
	assert.False(t, f.installer.ShouldInstall(appdir.New(f.build)))
}

func TestDotnet_MalformedGlobalJSON(t *testing.T) {
	f := newDotnetFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.build, GlobalJSON), []byte(`{"sdk":`), 0o600))

	_, err := f.installer.RequiredVersion()
	require.Error(t, err)
	assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryValidation))
}

func TestDotnet_UnresolvableVersionIsNotCached(t *testing.T) {
	f := newDotnetFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.build, GlobalJSON), []byte(`{"sdk":{"version":"9.9.9"}}`), 0o600))
	f.writeMarker(t, "9.9.9")

	assert.True(t, f.installer.ShouldInstall(appdir.New(f.build)))
}

func TestDotnet_PublishedApplication(t *testing.T) {
	f := newDotnetFixture(t)
	touch(t, filepath.Join(f.build, "MyApp.runtimeconfig.json"))
	app := appdir.New(f.build)

	assert.False(t, f.installer.ShouldCompile(app))
	assert.True(t, f.installer.ShouldInstall(app), "portable app still needs the runtime")

	touch(t, filepath.Join(f.build, "MyApp"))
	assert.False(t, f.installer.ShouldInstall(app), "self-contained app brings its own runtime")
}

func TestDotnet_Install(t *testing.T) {
	f := newDotnetFixture(t)
	writeTarGz(t, filepath.Join(f.fetcher.dir, "dotnet.2.0.0.linux-amd64.tar.gz"),
		tarEntry{name: "dotnet", body: "#!/bin/sh\n", mode: 0o755},
		tarEntry{name: "sdk/2.0.0/", typeflag: '5', mode: 0o755},
		tarEntry{name: "sdk/2.0.0/dotnet.dll", body: "dll"},
	)
	p := &linePrinter{}

	require.NoError(t, f.installer.Install(context.Background(), p))

	assert.Equal(t, []string{"dotnet.2.0.0.linux-amd64.tar.gz"}, f.fetcher.calls)
	assert.Equal(t, []string{"dotnet version: 2.0.0"}, p.lines)
	assert.FileExists(t, filepath.Join(f.build, DotnetCacheDir, "sdk", "2.0.0", "dotnet.dll"))

	marker, err := os.ReadFile(filepath.Join(f.build, DotnetCacheDir, VersionMarker))
	require.NoError(t, err)
	assert.Equal(t, "2.0.0\n", string(marker))
}

func TestDotnet_InstallFetchFailure(t *testing.T) {
	f := newDotnetFixture(t)
	f.fetcher.err = assert.AnError

	err := f.installer.Install(context.Background(), &linePrinter{})
	require.ErrorIs(t, err, assert.AnError)
	assert.NoDirExists(t, filepath.Join(f.build, DotnetCacheDir))
}

func TestDotnet_Identity(t *testing.T) {
	d := NewDotnetInstaller(Options{BuildDir: "/tmp/build"})
	assert.Equal(t, ".dotnet", d.CacheDir())
	assert.Equal(t, 2, d.InstallOrder())
	assert.True(t, d.InRuntime())
	assert.Equal(t, "/tmp/build/.dotnet", d.PathInStaging())
	assert.Equal(t, "Installing Dotnet CLI", d.InstallDescription())
}
