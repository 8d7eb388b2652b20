package colframe

import (
	"io"
	"log/slog"
	"os"

	"github.com/hupe1980/colframe/align"
)

// Logger wraps slog.Logger with colframe-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithTarget adds the name of the mutated table or series.
func (l *Logger) WithTarget(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("target", name),
	}
}

// LogSetItem logs a SetItem call.
func (l *Logger) LogSetItem(selector string, rows int, err error) {
	if err != nil {
		l.Error("setitem failed",
			"selector", selector,
			"error", err,
		)
	} else {
		l.Debug("setitem completed",
			"selector", selector,
			"rows", rows,
		)
	}
}

// LogReplace logs a Replace call.
func (l *Logger) LogReplace(replaced int, err error) {
	if err != nil {
		l.Error("replace failed",
			"error", err,
		)
	} else {
		l.Debug("replace completed",
			"replaced", replaced,
		)
	}
}

// LogAlignment logs a label alignment. An alignment that matched no label
// writes only nulls and is reported as a warning.
func (l *Logger) LogAlignment(plan align.Plan) {
	if plan.Disjoint() {
		l.Warn("aligned value shares no labels with target, writing nulls",
			"targets", len(plan.Positions),
		)
		return
	}
	l.Debug("aligned value",
		"targets", len(plan.Positions),
		"matched", plan.Matched,
		"missing", plan.Missing(),
	)
}
