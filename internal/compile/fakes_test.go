package compile

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/config"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/fsutil"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/installer"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/out"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/shell"
)

type fakeInstaller struct {
	name          string
	cacheDir      string
	order         int
	runtime       bool
	staging       string
	shouldInstall func(app installer.ProjectView) bool
	install       func(ctx context.Context, p out.Printer) error

	decisions []bool
	installs  int
}

func (f *fakeInstaller) Name() string               { return f.name }
func (f *fakeInstaller) CacheDir() string           { return f.cacheDir }
func (f *fakeInstaller) InstallOrder() int          { return f.order }
func (f *fakeInstaller) InRuntime() bool            { return f.runtime }
func (f *fakeInstaller) PathInStaging() string      { return f.staging }
func (f *fakeInstaller) InstallDescription() string { return "Installing " + f.name }

func (f *fakeInstaller) ShouldInstall(app installer.ProjectView) bool {
	decision := f.shouldInstall != nil && f.shouldInstall(app)
	f.decisions = append(f.decisions, decision)
	return decision
}

func (f *fakeInstaller) Install(ctx context.Context, p out.Printer) error {
	f.installs++
	if f.install != nil {
		return f.install(ctx, p)
	}
	return nil
}

type fakeToolchain struct {
	fakeInstaller
	shouldCompile bool
}

func (f *fakeToolchain) ShouldCompile(installer.ProjectView) bool { return f.shouldCompile }
func (f *fakeToolchain) RuntimePath() string                      { return "$HOME/.dotnet" }

type fakeNative struct {
	fakeInstaller
	libraryPath string
}

func (f *fakeNative) LibraryPath() string        { return f.libraryPath }
func (f *fakeNative) RuntimeLibraryPath() string { return "$HOME/libunwind/lib" }

// recordingShell records commands and the scratch directory listing at the time of
// each command.
type recordingShell struct {
	commands []shell.Command
	listings [][]string
	err      error
}

func (s *recordingShell) Run(_ context.Context, cmd shell.Command, _ out.Printer) error {
	s.commands = append(s.commands, cmd)
	var names []string
	entries, _ := os.ReadDir(cmd.Dir)
	for _, e := range entries {
		names = append(names, e.Name())
	}
	s.listings = append(s.listings, names)
	return s.err
}

func (s *recordingShell) lines() []string {
	var l []string
	for _, c := range s.commands {
		l = append(l, c.Line)
	}
	return l
}

// failingCopier copies with fsutil but fails for sources with a given base name after
// writing a partial entry.
type failingCopier struct {
	failBase string
}

func (f failingCopier) Copy(src, dstParent string) error {
	if filepath.Base(src) == f.failBase {
		partial := filepath.Join(dstParent, f.failBase)
		_ = os.MkdirAll(partial, 0o750)
		_ = os.WriteFile(filepath.Join(partial, "partial"), []byte("x"), 0o600)
		return errors.New("disk full")
	}
	return fsutil.DirCopier{}.Copy(src, dstParent)
}

type fixture struct {
	cfg     *config.Config
	shell   *recordingShell
	console bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		cfg: &config.Config{
			BuildDir:           t.TempDir(),
			CacheDir:           t.TempDir(),
			BuildpackDir:       t.TempDir(),
			ScratchDir:         t.TempDir(),
			CacheNuGetPackages: true,
		},
		shell: &recordingShell{},
	}
}

func (f *fixture) compiler(reg *installer.Registry, copier Copier) *Compiler {
	if copier == nil {
		copier = fsutil.DirCopier{}
	}
	return NewCompiler(f.cfg, reg, copier, f.shell, out.NewConsole(&f.console)).WithVersion("1.0.0")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// compilingToolchain is a toolchain that is already installed and wants to compile.
func compilingToolchain() *fakeToolchain {
	return &fakeToolchain{
		fakeInstaller: fakeInstaller{name: "Dotnet CLI", cacheDir: ".dotnet", order: 2, runtime: true},
		shouldCompile: true,
	}
}
