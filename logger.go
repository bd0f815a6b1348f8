package asmref

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with asmref-specific context.
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
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithImage adds an image name field to the logger.
func (l *Logger) WithImage(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("image", name),
	}
}

// WithRow adds an AssemblyRef row field to the logger.
func (l *Logger) WithRow(row uint32) *Logger {
	return &Logger{
		Logger: l.Logger.With("row", row),
	}
}

// LogOpen logs the outcome of loading an image.
func (l *Logger) LogOpen(ctx context.Context, name string, size int64, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed",
			"image", name,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "open completed",
			"image", name,
			"size", size,
			"elapsed", elapsed,
		)
	}
}

// LogSession logs the creation of a session.
func (l *Logger) LogSession(ctx context.Context, kind string, rows, anchor uint32) {
	if anchor != 0 {
		l.DebugContext(ctx, "projected session",
			"kind", kind,
			"rows", rows,
			"anchor", anchor,
		)
	} else {
		l.DebugContext(ctx, "session",
			"kind", kind,
			"rows", rows,
		)
	}
}

// LogOpenAll logs a parallel load.
func (l *Logger) LogOpenAll(ctx context.Context, count int, err error) {
	if err != nil {
		l.WarnContext(ctx, "open all failed",
			"count", count,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "open all completed",
			"count", count,
		)
	}
}

// LogClose logs the release of an image.
func (l *Logger) LogClose(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "close failed",
			"image", name,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "image closed",
			"image", name,
		)
	}
}
