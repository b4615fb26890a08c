// Package metrics provides build metrics for recipebuilder.
//
// Components receive a Recorder through dependency injection. NoopRecorder is
// the default and does nothing, so callers never need nil checks:
//
//	b := build.New(cfg, build.WithRecorder(metrics.NoopRecorder{}))
//
// PrometheusRecorder collects the same observations into a private registry.
// A build is a one-shot process, so instead of serving the registry over HTTP
// it is written in the node_exporter textfile format:
//
//	rec := metrics.NewPrometheusRecorder(nil)
//	// ... run the build ...
//	err := rec.WriteTextfile("/var/lib/node_exporter/recipebuilder.prom")
package metrics
