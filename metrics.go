package colframe

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// metric.PrometheusCollector implements it for Prometheus.
type MetricsCollector interface {
	// RecordSetItem is called after each SetItem. kind is the selector
	// variant, rows the number of selected rows (0 for column writes).
	RecordSetItem(kind string, rows int, duration time.Duration, err error)

	// RecordReplace is called after each Replace with the number of
	// replaced values.
	RecordReplace(count int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSetItem(string, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordReplace(int, time.Duration, error)         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SetItemCount      atomic.Int64
	SetItemErrors     atomic.Int64
	SetItemTotalNanos atomic.Int64
	RowsWritten       atomic.Int64
	ReplaceCount      atomic.Int64
	ReplaceErrors     atomic.Int64
	ValuesReplaced    atomic.Int64
}

// RecordSetItem implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSetItem(_ string, rows int, duration time.Duration, err error) {
	b.SetItemCount.Add(1)
	b.SetItemTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SetItemErrors.Add(1)
		return
	}
	b.RowsWritten.Add(int64(rows))
}

// RecordReplace implements MetricsCollector.
func (b *BasicMetricsCollector) RecordReplace(count int, _ time.Duration, err error) {
	b.ReplaceCount.Add(1)
	if err != nil {
		b.ReplaceErrors.Add(1)
		return
	}
	b.ValuesReplaced.Add(int64(count))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SetItemCount:    b.SetItemCount.Load(),
		SetItemErrors:   b.SetItemErrors.Load(),
		SetItemAvgNanos: b.getAvgSetItemNanos(),
		RowsWritten:     b.RowsWritten.Load(),
		ReplaceCount:    b.ReplaceCount.Load(),
		ReplaceErrors:   b.ReplaceErrors.Load(),
		ValuesReplaced:  b.ValuesReplaced.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgSetItemNanos() int64 {
	count := b.SetItemCount.Load()
	if count == 0 {
		return 0
	}
	return b.SetItemTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SetItemCount    int64
	SetItemErrors   int64
	SetItemAvgNanos int64
	RowsWritten     int64
	ReplaceCount    int64
	ReplaceErrors   int64
	ValuesReplaced  int64
}
