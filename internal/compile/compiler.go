package compile

import (
	"context"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/appdir"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/config"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/installer"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/logfields"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/metrics"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/observability"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/out"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/version"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/workspace"
)

// Copier copies src into dstParent as dstParent/<base(src)>.
type Copier interface {
	Copy(src, dstParent string) error
}

// Compiler drives one compile of the application in the build directory.
type Compiler struct {
	cfg       *config.Config
	registry  *installer.Registry
	copier    Copier
	shell     installer.CommandRunner
	out       out.Reporter
	recorder  metrics.Recorder
	workspace *workspace.Manager
	version   string

	// app views the source tree: the build directory until the source is moved to
	// the scratch directory for compilation.
	app       *appdir.AppDir
	sourceDir string
}

// NewCompiler returns a Compiler for cfg.
func NewCompiler(cfg *config.Config, registry *installer.Registry, copier Copier, sh installer.CommandRunner, rep out.Reporter) *Compiler {
	return &Compiler{
		cfg:       cfg,
		registry:  registry,
		copier:    copier,
		shell:     sh,
		out:       rep,
		recorder:  metrics.NoopRecorder{},
		workspace: workspace.NewManager(cfg.ScratchDir),
		version:   version.Resolve(cfg.BuildpackDir),
	}
}

// WithRecorder sets the metrics recorder.
func (c *Compiler) WithRecorder(r metrics.Recorder) *Compiler {
	if r != nil {
		c.recorder = r
	}
	return c
}

// WithVersion overrides the buildpack version printed in the banner.
func (c *Compiler) WithVersion(v string) *Compiler {
	c.version = v
	return c
}

// Compile runs the pipeline and reports whether the droplet was created. Failures are
// reported on the console, never returned.
func (c *Compiler) Compile(ctx context.Context) bool {
	start := time.Now()
	ctx = observability.WithBuildID(ctx, uuid.NewString())
	c.sourceDir = c.cfg.BuildDir
	c.app = appdir.New(c.cfg.BuildDir)

	c.out.Print("ASP.NET Core buildpack version: " + c.version)
	c.out.Print("ASP.NET Core buildpack starting compile")
	observability.InfoContext(ctx, "Compile started", logfields.Path(c.cfg.BuildDir))

	defer func() {
		scratch := c.workspace.GetPath()
		if scratch == "" {
			return
		}
		if err := c.workspace.Cleanup(); err != nil {
			observability.WarnContext(ctx, "Failed to clean up scratch directory", logfields.Path(scratch), logfields.Error(err))
		}
	}()

	err := c.run(ctx)
	c.recorder.ObserveCompileDuration(time.Since(start))
	if err != nil {
		c.out.Fail(err.Error())
		c.recorder.IncCompileOutcome(metrics.OutcomeFailed)
		observability.ErrorContext(ctx, "Compile failed", logfields.Error(err))
		return false
	}

	c.out.Print("ASP.NET Core buildpack is done creating the droplet")
	c.recorder.IncCompileOutcome(metrics.OutcomeSuccess)
	observability.InfoContext(ctx, "Compile finished", logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	return true
}

func (c *Compiler) run(ctx context.Context) error {
	if err := c.runStep(ctx, StepRestoreCache, c.restoreCache); err != nil {
		return err
	}
	if c.shouldClearNuGetCache() {
		if err := c.runStep(ctx, StepClearNuGetCache, c.clearNuGetCache); err != nil {
			return err
		}
	}
	if err := c.runStep(ctx, StepRestoreNuGetCache, c.restoreNuGetCache); err != nil {
		return err
	}
	if err := c.runInstallers(ctx); err != nil {
		return err
	}
	if c.shouldCompile() {
		if err := c.runStep(ctx, StepCompile, c.compileApp); err != nil {
			return err
		}
	}
	return c.runStep(ctx, StepSaveCache, c.saveCache)
}

func (c *Compiler) runInstallers(ctx context.Context) error {
	for _, inst := range c.registry.Ordered() {
		ictx := observability.WithInstaller(ctx, inst.Name())
		if !inst.ShouldInstall(c.app) {
			observability.DebugContext(ictx, "Installer not needed")
			continue
		}
		if err := c.runStep(ictx, inst.InstallDescription(), func(ctx context.Context, s out.StepReporter) error {
			return inst.Install(ctx, s)
		}); err != nil {
			return err
		}
		c.recorder.IncInstall(inst.Name())
	}
	return nil
}

func (c *Compiler) shouldCompile() bool {
	tc := c.registry.Toolchain()
	return tc != nil && tc.ShouldCompile(c.app)
}
