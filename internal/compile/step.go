package compile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	foundationerrors "git.home.luguber.info/inful/aspnetcore-buildpack/internal/foundation/errors"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/logfields"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/metrics"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/observability"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/out"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/shell"
)

// Step names, as printed in step headers.
const (
	StepRestoreCache      = "Restoring files from buildpack cache"
	StepClearNuGetCache   = "Clearing NuGet packages cache"
	StepRestoreNuGetCache = "Restoring NuGet packages cache"
	StepCompile           = "Compiling application with Dotnet CLI"
	StepSaveCache         = "Saving to buildpack cache"
)

// StepFailedError ends the pipeline.
type StepFailedError struct {
	Step string
	Err  error
}

func (e *StepFailedError) Error() string {
	return fmt.Sprintf("%s failed, %s", e.Step, e.Err)
}

func (e *StepFailedError) Unwrap() error {
	return e.Err
}

// stepFunc is the body of one step.
type stepFunc func(ctx context.Context, s out.StepReporter) error

func (c *Compiler) runStep(ctx context.Context, name string, body stepFunc) error {
	ctx = observability.WithStep(ctx, name)
	start := time.Now()
	observability.DebugContext(ctx, "Step started")

	s := c.out.Step(name)
	err := invoke(ctx, s, body)
	elapsed := time.Since(start)
	c.recorder.ObserveStepDuration(name, elapsed)

	if err != nil {
		s.Fail(err.Error())
		c.recorder.IncStepResult(name, metrics.ResultFailed)
		observability.ErrorContext(ctx, "Step failed",
			logfields.Error(err),
			logfields.DurationMS(float64(elapsed.Milliseconds())))
		if output := shell.OutputOf(err); output != "" {
			observability.DebugContext(ctx, "Failed command output", slog.String(shell.ContextOutput, output))
		}
		return &StepFailedError{Step: name, Err: err}
	}

	s.Succeed()
	c.recorder.IncStepResult(name, metrics.ResultSuccess)
	observability.DebugContext(ctx, "Step finished", logfields.DurationMS(float64(elapsed.Milliseconds())))
	return nil
}

// invoke runs body, turning a panic into an error.
func invoke(ctx context.Context, s out.StepReporter, body stepFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = foundationerrors.InternalError(fmt.Sprintf("panic: %v", r)).Build()
		}
	}()
	return body(ctx, s)
}
