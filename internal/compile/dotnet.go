package compile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/appdir"
	foundationerrors "git.home.luguber.info/inful/aspnetcore-buildpack/internal/foundation/errors"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/fsutil"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/logfields"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/observability"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/out"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/shell"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/util/sets"
)

// Messages of compile step failures.
const (
	msgNoProject = "No project found to build"
)

// keepInDroplet lists build directory entries that stay put while the source moves.
var keepInDroplet = []string{".profile", ".profile.d"}

// compileApp moves the source to a scratch directory and publishes the main project
// from there into the build directory.
func (c *Compiler) compileApp(ctx context.Context, s out.StepReporter) error {
	scratch, err := c.workspace.Create()
	if err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "create scratch directory").Build()
	}

	s.Print("Moving application source code from " + c.cfg.BuildDir + " to " + scratch)
	if err := c.moveSource(scratch); err != nil {
		return err
	}
	c.sourceDir = scratch
	c.app = appdir.New(scratch)

	projects, err := c.app.ProjectPaths()
	if err != nil {
		return err
	}
	mainProject, err := c.app.MainProjectPath()
	switch {
	case errors.Is(err, appdir.ErrNoProject):
		return foundationerrors.NotFoundError(msgNoProject).Build()
	case errors.Is(err, appdir.ErrAmbiguousProject):
		return foundationerrors.AmbiguousError(appdir.ErrAmbiguousProject.Error()).
			WithContext("projects", projects).
			Build()
	case err != nil:
		return err
	}
	observability.InfoContext(ctx, "Resolved main project", logfields.Project(mainProject))

	env := c.compilationEnv(scratch, projects)
	restore := shell.Command{
		Line: "dotnet restore --verbosity minimal " + strings.Join(projects, " "),
		Dir:  scratch,
		Env:  env,
	}
	if err := c.shell.Run(ctx, restore, s); err != nil {
		return err
	}

	publish := shell.Command{
		Line: "dotnet publish " + mainProject + " -o " + c.cfg.BuildDir + " -c Release",
		Dir:  scratch,
		Env:  env,
	}
	return c.shell.Run(ctx, publish, s)
}

// moveSource moves every top-level build directory entry except the profile files and
// the runtime installers' directories into scratch.
func (c *Compiler) moveSource(scratch string) error {
	keep := sets.New(keepInDroplet...)
	keep.Add(c.registry.RuntimeCacheDirs()...)

	entries, err := os.ReadDir(c.cfg.BuildDir)
	if err != nil {
		return foundationerrors.FileSystemError("list build directory").WithCause(err).Build()
	}
	for _, e := range entries {
		if keep.Has(e.Name()) {
			continue
		}
		if err := fsutil.Move(filepath.Join(c.cfg.BuildDir, e.Name()), filepath.Join(scratch, e.Name())); err != nil {
			return foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "move application source").
				WithContext("entry", e.Name()).
				Build()
		}
	}
	return nil
}

// compilationEnv is the environment of the Dotnet CLI commands. $VAR references are
// expanded by the shell runner.
func (c *Compiler) compilationEnv(scratch string, projects []string) map[string]string {
	env := map[string]string{"HOME": scratch}

	if native := c.registry.Native(); native != nil {
		env["LD_LIBRARY_PATH"] = "$LD_LIBRARY_PATH:" + native.LibraryPath()
	}

	paths := append([]string{"$PATH"}, c.registry.StagingPaths()...)
	for _, p := range projects {
		paths = append(paths, filepath.Join(scratch, filepath.FromSlash(p), "node_modules", ".bin"))
	}
	env["PATH"] = strings.Join(paths, ":")
	return env
}
