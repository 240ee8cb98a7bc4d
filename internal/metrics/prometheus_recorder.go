package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "buildpack"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry        *prom.Registry
	stepDuration    *prom.HistogramVec
	stepResults     *prom.CounterVec
	compileDuration prom.Histogram
	compileOutcome  *prom.CounterVec
	installs        *prom.CounterVec
	cacheSaves      *prom.CounterVec
	downloadRetries *prom.CounterVec
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
// A nil registry gets a fresh private one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		registry: reg,
		stepDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Duration of individual compile steps",
			Buckets:   prom.ExponentialBuckets(0.05, 2, 14),
		}, []string{"step"}),
		stepResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "step_results_total",
			Help:      "Step result counts by outcome",
		}, []string{"step", "result"}),
		compileDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "compile_duration_seconds",
			Help:      "Total compile duration",
			Buckets:   prom.ExponentialBuckets(0.5, 2, 12),
		}),
		compileOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "compile_outcomes_total",
			Help:      "Compile outcomes by final status",
		}, []string{"outcome"}),
		installs: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "installs_total",
			Help:      "Dependency installations performed",
		}, []string{"installer"}),
		cacheSaves: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "cache_saves_total",
			Help:      "Cache save attempts by entry and result",
		}, []string{"name", "result"}),
		downloadRetries: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "download_retries_total",
			Help:      "Dependency download retries after transient failures",
		}, []string{"dependency"}),
	}
	reg.MustRegister(pr.stepDuration, pr.stepResults, pr.compileDuration, pr.compileOutcome,
		pr.installs, pr.cacheSaves, pr.downloadRetries)
	return pr
}

// Registry returns the registry the collectors are registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.registry
}

// WriteTextfile writes the current metric values in the text exposition format.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	return prom.WriteToTextfile(path, p.registry)
}

func (p *PrometheusRecorder) ObserveStepDuration(step string, d time.Duration) {
	if p == nil {
		return
	}
	p.stepDuration.WithLabelValues(step).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStepResult(step string, result ResultLabel) {
	if p == nil {
		return
	}
	p.stepResults.WithLabelValues(step, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveCompileDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.compileDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncCompileOutcome(outcome OutcomeLabel) {
	if p == nil {
		return
	}
	p.compileOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncInstall(installer string) {
	if p == nil {
		return
	}
	p.installs.WithLabelValues(installer).Inc()
}

func (p *PrometheusRecorder) IncCacheSave(name string, success bool) {
	if p == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.cacheSaves.WithLabelValues(name, res).Inc()
}

func (p *PrometheusRecorder) IncDownloadRetry(dependency string) {
	if p == nil {
		return
	}
	p.downloadRetries.WithLabelValues(dependency).Inc()
}
