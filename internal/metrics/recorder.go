package metrics

import "time"

// ResultLabel enumerates step result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
	ResultSkipped ResultLabel = "skipped"
)

// OutcomeLabel enumerates final compile outcomes.
type OutcomeLabel string

const (
	OutcomeSuccess OutcomeLabel = "success"
	OutcomeFailed  OutcomeLabel = "failed"
)

// Recorder defines observability hooks for the compile pipeline.
type Recorder interface {
	ObserveStepDuration(step string, d time.Duration)
	IncStepResult(step string, result ResultLabel)
	ObserveCompileDuration(d time.Duration)
	IncCompileOutcome(outcome OutcomeLabel)
	IncInstall(installer string)
	IncCacheSave(name string, success bool)
	IncDownloadRetry(dependency string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStepDuration(string, time.Duration) {}
func (NoopRecorder) IncStepResult(string, ResultLabel)         {}
func (NoopRecorder) ObserveCompileDuration(time.Duration)      {}
func (NoopRecorder) IncCompileOutcome(OutcomeLabel)            {}
func (NoopRecorder) IncInstall(string)                         {}
func (NoopRecorder) IncCacheSave(string, bool)                 {}
func (NoopRecorder) IncDownloadRetry(string)                   {}
