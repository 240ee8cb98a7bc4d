// Package metrics provides build metrics for the buildpack pipeline.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no nil checks are needed at call sites:
//
//	c := compile.New(opts) // NoopRecorder unless opts.Recorder is set
//
// PrometheusRecorder registers collectors on a private registry. A staging run is a
// short-lived process, so instead of serving /metrics the CLI writes the registry to a
// node_exporter textfile when BP_METRICS_FILE is set.
package metrics
