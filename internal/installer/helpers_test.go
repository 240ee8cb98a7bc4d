package installer

import (
	"archive/tar"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/manifest"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/out"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/shell"
)

const testManifest = `---
default_versions:
  - name: dotnet
    version: 2.0.0
  - name: libunwind
    version: "1.2"
  - name: node
    version: 6.11.3
dependencies:
  - name: dotnet
    version: 2.0.0
    uri: https://buildpacks.example.com/dotnet.2.0.0.linux-amd64.tar.gz
  - name: dotnet
    version: 1.1.4
    uri: https://buildpacks.example.com/dotnet.1.1.4.linux-amd64.tar.gz
  - name: libunwind
    version: "1.2"
    uri: https://buildpacks.example.com/libunwind-1.2.tar.gz
  - name: node
    version: 6.11.3
    uri: https://buildpacks.example.com/node-v6.11.3-linux-x64.tar.gz
`

func testCatalog(t *testing.T) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Parse([]byte(testManifest))
	require.NoError(t, err)
	return m
}

type tarEntry struct {
	name     string
	body     string
	mode     int64
	typeflag byte
	linkname string
}

func writeTarGz(t *testing.T, path string, entries ...tarEntry) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	for _, e := range entries {
		typeflag := e.typeflag
		if typeflag == 0 {
			typeflag = tar.TypeReg
		}
		mode := e.mode
		if mode == 0 {
			mode = 0o644
		}
		hdr := &tar.Header{Name: e.name, Mode: mode, Typeflag: typeflag, Linkname: e.linkname}
		if typeflag == tar.TypeReg {
			hdr.Size = int64(len(e.body))
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if typeflag == tar.TypeReg {
			_, err := tw.Write([]byte(e.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
}

// fakeFetcher serves archives from a directory and records requested names.
type fakeFetcher struct {
	dir   string
	calls []string
	err   error
}

func (f *fakeFetcher) Fetch(_ context.Context, name string) (string, error) {
	f.calls = append(f.calls, name)
	if f.err != nil {
		return "", f.err
	}
	return filepath.Join(f.dir, name), nil
}

type fakeShell struct {
	commands []shell.Command
	errs     []error
}

func (s *fakeShell) Run(_ context.Context, cmd shell.Command, _ out.Printer) error {
	s.commands = append(s.commands, cmd)
	if len(s.errs) == 0 {
		return nil
	}
	err := s.errs[0]
	s.errs = s.errs[1:]
	return err
}

type linePrinter struct {
	lines []string
}

func (p *linePrinter) Print(msg string) { p.lines = append(p.lines, msg) }

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
}
