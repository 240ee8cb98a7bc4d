package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	foundationerrors "git.home.luguber.info/inful/aspnetcore-buildpack/internal/foundation/errors"
)

const sample = `---
language: dotnet-core
default_versions:
  - name: dotnet
    version: 2.0.0
  - name: node
    version: 6.11.3
dependencies:
  - name: dotnet
    version: 1.1.4
    uri: https://buildpacks.example.com/dotnet/dotnet.1.1.4.linux-amd64.tar.gz
    sha256: aaaa
    cf_stacks:
      - cflinuxfs2
  - name: dotnet
    version: 2.0.0
    uri: https://buildpacks.example.com/dotnet/dotnet.2.0.0.linux-amd64.tar.gz
  - name: node
    version: 6.11.3
    uri: https://buildpacks.example.com/node/node-v6.11.3-linux-x64.tar.gz
  - name: libunwind
    version: "1.2"
    uri: https://buildpacks.example.com/libunwind/libunwind-1.2.tar.gz
`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "dotnet-core", m.Language)
	assert.Len(t, m.Dependencies, 4)
	assert.Equal(t, []string{"cflinuxfs2"}, m.Dependencies[0].CFStacks)
	assert.Equal(t, []string{"1.1.4", "2.0.0"}, m.Versions("dotnet"))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(sample), 0o600))

	m, err := Load(dir)
	require.NoError(t, err)
	v, err := m.DefaultVersion("node")
	require.NoError(t, err)
	assert.Equal(t, "6.11.3", v)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryConfig))
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("dependencies: [unterminated"))
	require.Error(t, err)
}

func TestResolve(t *testing.T) {
	m, err := Parse([]byte(sample))
	require.NoError(t, err)

	d, err := m.Resolve("dotnet", "")
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", d.Version)
	assert.Equal(t, "dotnet.2.0.0.linux-amd64.tar.gz", d.FileName())

	d, err = m.Resolve("dotnet", " 1.1.4 ")
	require.NoError(t, err)
	assert.Equal(t, "1.1.4", d.Version)

	_, err = m.Resolve("dotnet", "2.0")
	require.Error(t, err)
	assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryNotFound))

	_, err = m.Resolve("bower", "")
	require.Error(t, err)

	_, err = m.Resolve("libunwind", "")
	require.Error(t, err, "libunwind has no default")
	d, err = m.Resolve("libunwind", "1.2")
	require.NoError(t, err)
	assert.Equal(t, "libunwind-1.2.tar.gz", d.FileName())
}

func TestVerify(t *testing.T) {
	p := filepath.Join(t.TempDir(), "archive.tar.gz")
	require.NoError(t, os.WriteFile(p, []byte("hello"), 0o600))

	sum, err := Checksum(p)
	require.NoError(t, err)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", sum)

	assert.NoError(t, Dependency{URI: "x/archive.tar.gz"}.Verify(p))
	assert.NoError(t, Dependency{URI: "x/archive.tar.gz", SHA256: sum}.Verify(p))

	err = Dependency{URI: "x/archive.tar.gz", SHA256: "deadbeef"}.Verify(p)
	require.Error(t, err)
	assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryInstall))
}
