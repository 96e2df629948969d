// Package metrics provides observability hooks for the watch loop.
//
// Components receive a Recorder through dependency injection. NoopRecorder is
// the default, so call sites never need nil checks; PrometheusRecorder is
// swapped in when METRICS_ADDR is configured:
//
//	reg := prometheus.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	w := watcher.New(..., watcher.WithRecorder(rec))
//	http.Handle("/metrics", metrics.HTTPHandler(reg))
package metrics
