package commands

import (
	"context"
	"io"
	"log/slog"

	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/compile"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/config"
	foundationerrors "git.home.luguber.info/inful/aspnetcore-buildpack/internal/foundation/errors"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/fsutil"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/installer"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/logfields"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/manifest"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/metrics"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/out"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/retry"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/shell"
)

// CompileCmd implements the 'compile' command.
type CompileCmd struct {
	BuildDir string `arg:"" name:"build-dir" help:"Application directory to build in place" type:"existingdir"`
	CacheDir string `arg:"" name:"cache-dir" optional:"" help:"Directory persisted between builds" type:"path"`
}

func (c *CompileCmd) Run(g *Global, root *CLI) error {
	env, err := root.environment()
	if err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "load env file").
			WithContext("path", root.EnvFile).
			Build()
	}
	cfg, err := config.New(config.Dirs{
		Build:     c.BuildDir,
		Cache:     c.CacheDir,
		Buildpack: root.ResolveBuildpackDir(),
	}, env)
	if err != nil {
		return err
	}
	return RunCompile(context.Background(), cfg, g.stdout())
}

// RunCompile wires the installers and runs the compile pipeline for cfg.
func RunCompile(ctx context.Context, cfg *config.Config, w io.Writer) error {
	catalog, err := manifest.Load(cfg.BuildpackDir)
	if err != nil {
		return err
	}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var prom *metrics.PrometheusRecorder
	if cfg.MetricsFile != "" {
		prom = metrics.NewPrometheusRecorder(nil)
		recorder = prom
	}

	runner := shell.NewRunner()
	policy := retry.FromConfig(cfg.Download)
	if err := policy.Validate(); err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "invalid download retry settings").Build()
	}
	opts := installer.Options{
		BuildDir: cfg.BuildDir,
		CacheDir: cfg.CacheDir,
		Catalog:  catalog,
		Fetcher: &installer.ShellFetcher{
			BuildpackDir: cfg.BuildpackDir,
			Shell:        runner,
			Policy:       policy,
			Recorder:     recorder,
		},
		Shell: runner,
	}

	console := out.NewConsole(w)
	compiler := compile.NewCompiler(cfg, NewRegistry(opts, catalog), fsutil.DirCopier{}, runner, console).
		WithRecorder(recorder)
	ok := compiler.Compile(ctx)

	if prom != nil {
		if err := prom.WriteTextfile(cfg.MetricsFile); err != nil {
			slog.Warn("Failed to write metrics file", logfields.Path(cfg.MetricsFile), logfields.Error(err))
		}
	}
	if !ok {
		return ErrCompileFailed
	}
	return nil
}

// ErrCompileFailed is returned after a failed compile has been reported on the console.
var ErrCompileFailed = foundationerrors.CompileError("compile failed").Build()
