package colframe

import (
	"fmt"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hupe1980/colframe/index"
	"github.com/hupe1980/colframe/resource"
	"github.com/hupe1980/colframe/selector"
	"github.com/hupe1980/colframe/value"
)

type options struct {
	index            *index.Index
	metricsCollector MetricsCollector
	logger           *Logger
	strictKeys       bool
	mem              memory.Allocator
	resources        *resource.Controller
	err              error
}

// Option configures a Table or Series at construction. Views returned by
// Table.GetColumn share the options of their table.
type Option func(*options)

// WithIndex sets the row index. Its length must match the row count.
func WithIndex(ix *index.Index) Option {
	return func(o *options) {
		o.index = ix
	}
}

// WithLabels builds the row index from a slice of labels, e.g. []string or
// []value.Value (tuples for a multi-level index).
func WithLabels(labels any, names ...string) Option {
	return func(o *options) {
		vals, ok, err := value.SliceFromAny(labels)
		if err == nil && !ok {
			err = fmt.Errorf("%w: labels of type %T", ErrUnsupportedValue, labels)
		}
		if err != nil {
			o.err = err
			return
		}
		o.index, o.err = index.New(vals, names...)
	}
}

// WithMultiIndex builds a multi-level row index from one label slice per
// level.
//
// Example:
//
//	t, _ := colframe.NewTable(cols,
//	    colframe.WithMultiIndex([]string{"b", "c"}, []int{3, 2, 1}, []string{"a", "b", "c"}))
func WithMultiIndex(names []string, levels ...any) Option {
	return func(o *options) {
		lv := make([][]value.Value, len(levels))
		for i, l := range levels {
			vals, ok, err := value.SliceFromAny(l)
			if err == nil && !ok {
				err = fmt.Errorf("%w: level of type %T", ErrUnsupportedValue, l)
			}
			if err != nil {
				o.err = err
				return
			}
			lv[i] = vals
		}
		o.index, o.err = index.NewMulti(lv, names)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &colframe.BasicMetricsCollector{}
//	t, _ := colframe.NewTable(cols, colframe.WithMetricsCollector(metrics))
//	// ... use t ...
//	stats := metrics.GetStats()
//	fmt.Printf("SetItems: %d, Avg latency: %dns\n", stats.SetItemCount, stats.SetItemAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := colframe.NewJSONLogger(slog.LevelDebug)
//	t, _ := colframe.NewTable(cols, colframe.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithStrictKeys makes a list of strings that names neither existing columns
// nor index labels fail with a *KeyLookupError. By default such a list
// creates the missing columns.
func WithStrictKeys() Option {
	return func(o *options) {
		o.strictKeys = true
	}
}

// WithAllocator sets the Arrow allocator used for column buffers.
func WithAllocator(mem memory.Allocator) Option {
	return func(o *options) {
		if mem == nil {
			mem = memory.DefaultAllocator
		}
		o.mem = mem
	}
}

// WithResourceController bounds the bytes of new column buffers staged by a
// single mutation. A mutation that would exceed it fails with ErrMemoryLimit
// and leaves the target unchanged.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

func (o *options) selectorOptions() selector.Options {
	return selector.Options{Strict: o.strictKeys}
}

func applyOptions(optFns []Option) *options {
	o := &options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		mem:              memory.DefaultAllocator,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(o)
		}
	}
	return o
}
