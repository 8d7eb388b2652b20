package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusCollector records SetItem and Replace calls as Prometheus
// metrics. It satisfies colframe.MetricsCollector.
type PrometheusCollector struct {
	setItems      *prometheus.CounterVec
	setItemErrors *prometheus.CounterVec
	rowsWritten   prometheus.Counter
	setItemTime   prometheus.Histogram

	replaces        prometheus.Counter
	replaceErrors   prometheus.Counter
	valuesReplaced  prometheus.Counter
	replaceDuration prometheus.Histogram
}

// NewPrometheusCollector registers the collector's metrics with r. A nil r
// creates unregistered metrics.
func NewPrometheusCollector(r prometheus.Registerer) *PrometheusCollector {
	return &PrometheusCollector{
		setItems: promauto.With(r).NewCounterVec(prometheus.CounterOpts{
			Name: "colframe_setitem_total",
			Help: "Total number of SetItem calls by selector kind.",
		}, []string{"selector"}),
		setItemErrors: promauto.With(r).NewCounterVec(prometheus.CounterOpts{
			Name: "colframe_setitem_failures_total",
			Help: "Total number of failed SetItem calls by selector kind.",
		}, []string{"selector"}),
		rowsWritten: promauto.With(r).NewCounter(prometheus.CounterOpts{
			Name: "colframe_rows_written_total",
			Help: "Total number of rows written by successful SetItem calls.",
		}),
		setItemTime: promauto.With(r).NewHistogram(prometheus.HistogramOpts{
			Name:    "colframe_setitem_duration_seconds",
			Help:    "Time taken by a SetItem call.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		replaces: promauto.With(r).NewCounter(prometheus.CounterOpts{
			Name: "colframe_replace_total",
			Help: "Total number of Replace calls.",
		}),
		replaceErrors: promauto.With(r).NewCounter(prometheus.CounterOpts{
			Name: "colframe_replace_failures_total",
			Help: "Total number of failed Replace calls.",
		}),
		valuesReplaced: promauto.With(r).NewCounter(prometheus.CounterOpts{
			Name: "colframe_values_replaced_total",
			Help: "Total number of values replaced.",
		}),
		replaceDuration: promauto.With(r).NewHistogram(prometheus.HistogramOpts{
			Name:    "colframe_replace_duration_seconds",
			Help:    "Time taken by a Replace call.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
	}
}

// RecordSetItem implements colframe.MetricsCollector.
func (p *PrometheusCollector) RecordSetItem(kind string, rows int, d time.Duration, err error) {
	p.setItems.WithLabelValues(kind).Inc()
	p.setItemTime.Observe(d.Seconds())
	if err != nil {
		p.setItemErrors.WithLabelValues(kind).Inc()
		return
	}
	p.rowsWritten.Add(float64(rows))
}

// RecordReplace implements colframe.MetricsCollector.
func (p *PrometheusCollector) RecordReplace(count int, d time.Duration, err error) {
	p.replaces.Inc()
	p.replaceDuration.Observe(d.Seconds())
	if err != nil {
		p.replaceErrors.Inc()
		return
	}
	p.valuesReplaced.Add(float64(count))
}
