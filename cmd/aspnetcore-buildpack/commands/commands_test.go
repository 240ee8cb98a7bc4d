package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/config"
	foundationerrors "git.home.luguber.info/inful/aspnetcore-buildpack/internal/foundation/errors"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/installer"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/manifest"
)

const testManifest = `language: aspnetcore
default_versions:
  - name: dotnet
    version: 1.0.0-preview2-003131
  - name: node
    version: 6.11.3
dependencies:
  - name: dotnet
    version: 1.0.0-preview2-003131
    uri: https://example.invalid/dotnet.1.0.0-preview2-003131.linux-amd64.tar.gz
  - name: libunwind
    version: "1.2"
    uri: https://example.invalid/libunwind-1.2.tar.gz
  - name: node
    version: 6.11.3
    uri: https://example.invalid/node-v6.11.3-linux-x64.tar.gz
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestDetect(t *testing.T) {
	t.Run("project.json", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "src", "web", "project.json"), "{}")
		ok, err := Detect(dir)
		require.NoError(t, err)
		assert.True(t, ok)
	})
	t.Run("published", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "web.runtimeconfig.json"), "{}")
		ok, err := Detect(dir)
		require.NoError(t, err)
		assert.True(t, ok)
	})
	t.Run("other", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "index.html"), "<html/>")
		ok, err := Detect(dir)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestDetectCmd(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "project.json"), "{}")
	var buf bytes.Buffer
	require.NoError(t, (&DetectCmd{BuildDir: dir}).Run(&Global{Stdout: &buf}, &CLI{}))
	assert.Equal(t, "ASP.NET Core\n", buf.String())

	empty := t.TempDir()
	err := (&DetectCmd{BuildDir: empty}).Run(&Global{Stdout: &buf}, &CLI{})
	assert.ErrorIs(t, err, ErrNotDetected)
}

func TestReleaseCmd(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "web", "project.json"), "{}")

	var buf bytes.Buffer
	require.NoError(t, (&ReleaseCmd{BuildDir: dir}).Run(&Global{Stdout: &buf}, &CLI{}))

	var doc struct {
		DefaultProcessTypes map[string]string `yaml:"default_process_types"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "cd $HOME/src/web && dotnet run --server.urls http://0.0.0.0:${PORT}", doc.DefaultProcessTypes["web"])

	script, err := os.ReadFile(filepath.Join(dir, ".profile.d", "startup.sh"))
	require.NoError(t, err)
	assert.Contains(t, string(script), "export PATH=$PATH:$HOME/.dotnet")
	assert.Contains(t, string(script), "export LD_LIBRARY_PATH=$LD_LIBRARY_PATH:$HOME/libunwind/lib")
}

func TestReleaseCmd_NothingToRun(t *testing.T) {
	err := (&ReleaseCmd{BuildDir: t.TempDir()}).Run(&Global{Stdout: &bytes.Buffer{}}, &CLI{})
	require.Error(t, err)
	assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryRelease))
}

func TestNewRegistry(t *testing.T) {
	catalog, err := manifest.Parse([]byte(testManifest))
	require.NoError(t, err)

	reg := NewRegistry(installer.Options{BuildDir: t.TempDir()}, catalog)
	var names []string
	for _, inst := range reg.Ordered() {
		names = append(names, inst.Name())
	}
	assert.Equal(t, []string{"libunwind", "Dotnet CLI", "Node.js", "Bower"}, names)

	bare := NewRegistry(installer.Options{BuildDir: t.TempDir()}, &manifest.Manifest{})
	assert.Len(t, bare.Ordered(), 2)
	assert.NotNil(t, bare.Native())
	assert.NotNil(t, bare.Toolchain())
}

func TestResolveBuildpackDir(t *testing.T) {
	cli := &CLI{BuildpackDir: "/opt/buildpack"}
	assert.Equal(t, "/opt/buildpack", cli.ResolveBuildpackDir())
	assert.NotEmpty(t, (&CLI{}).ResolveBuildpackDir())
}

func TestRunCompile_PublishedApplication(t *testing.T) {
	buildpackDir := t.TempDir()
	writeFile(t, filepath.Join(buildpackDir, manifest.FileName), testManifest)
	writeFile(t, filepath.Join(buildpackDir, "VERSION"), "1.0.28\n")

	buildDir := t.TempDir()
	writeFile(t, filepath.Join(buildDir, "web.runtimeconfig.json"), "{}")
	writeFile(t, filepath.Join(buildDir, "web"), "binary")
	writeFile(t, filepath.Join(buildDir, "libunwind", "lib", "libunwind.so"), "so")

	cacheDir := t.TempDir()
	metricsFile := filepath.Join(t.TempDir(), "buildpack.prom")
	cfg, err := config.New(config.Dirs{Build: buildDir, Cache: cacheDir, Buildpack: buildpackDir},
		config.Environment{config.EnvMetricsFile: metricsFile, config.EnvScratchDir: t.TempDir()})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RunCompile(context.Background(), cfg, &buf))

	assert.Contains(t, buf.String(), "ASP.NET Core buildpack version: 1.0.28")
	assert.Contains(t, buf.String(), "ASP.NET Core buildpack is done creating the droplet")
	assert.NotContains(t, buf.String(), "Compiling application with Dotnet CLI")
	assert.FileExists(t, filepath.Join(cacheDir, "libunwind", "lib", "libunwind.so"))

	metrics, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `buildpack_compile_outcomes_total{outcome="success"} 1`)
}

func TestRunCompile_MissingManifest(t *testing.T) {
	cfg, err := config.New(config.Dirs{Build: t.TempDir(), Cache: t.TempDir(), Buildpack: t.TempDir()}, config.Environment{})
	require.NoError(t, err)
	err = RunCompile(context.Background(), cfg, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryConfig))
}

func TestRunCompile_NoProject(t *testing.T) {
	buildpackDir := t.TempDir()
	writeFile(t, filepath.Join(buildpackDir, manifest.FileName), testManifest)

	buildDir := t.TempDir()
	writeFile(t, filepath.Join(buildDir, "libunwind", "lib", "libunwind.so"), "so")
	cacheDir := t.TempDir()
	writeFile(t, filepath.Join(cacheDir, ".dotnet", installer.VersionMarker), "1.0.0-preview2-003131")

	cfg, err := config.New(config.Dirs{Build: buildDir, Cache: cacheDir, Buildpack: buildpackDir},
		config.Environment{config.EnvScratchDir: t.TempDir()})
	require.NoError(t, err)

	var buf bytes.Buffer
	err = RunCompile(context.Background(), cfg, &buf)
	require.ErrorIs(t, err, ErrCompileFailed)
	assert.Contains(t, buf.String(), "No project found to build")
}
