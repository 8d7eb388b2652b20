// Package metric exports mutation metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	t, _ := colframe.NewTable(cols, colframe.WithMetricsCollector(metric.NewPrometheusCollector(reg)))
package metric
