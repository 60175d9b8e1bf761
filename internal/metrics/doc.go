// Package metrics records tag generation metrics.
//
// Components receive a Recorder through dependency injection. NoopRecorder is
// the default and does nothing; PrometheusRecorder registers collectors on a
// private registry which can be dumped to a node-exporter textfile after each
// run:
//
//	reg := prom.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	gen := generator.New(cfg, logger, generator.WithRecorder(rec))
//	...
//	_ = metrics.WriteTextfile(path, reg)
package metrics
