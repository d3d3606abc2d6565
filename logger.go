package fmmap

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with mapping-specific context.
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
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.Level(1000), // Unreachable level
		})),
	}
}

// WithPath adds the backing path to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("path", path),
	}
}

// WithBackend adds the backend kind to the logger.
func (l *Logger) WithBackend(b Backend) *Logger {
	return &Logger{
		Logger: l.Logger.With("backend", b.String()),
	}
}

// LogOpen logs opening or creating a mapping.
func (l *Logger) LogOpen(ctx context.Context, path, mode string, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed",
			"path", path,
			"mode", mode,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "mapping opened",
			"path", path,
			"mode", mode,
			"size", size,
		)
	}
}

// LogTruncate logs a resize.
func (l *Logger) LogTruncate(ctx context.Context, path string, from, to int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "truncate failed",
			"path", path,
			"from", from,
			"to", to,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "truncate completed",
			"path", path,
			"from", from,
			"to", to,
		)
	}
}

// LogRemapDisabled logs a mapping that could not be re-established and was
// replaced by an empty one.
func (l *Logger) LogRemapDisabled(ctx context.Context, path string, err error) {
	l.WarnContext(ctx, "mapping disabled after failed remap",
		"path", path,
		"error", err,
	)
}

// LogLeak logs a facade collected without Close. Its mapping stays in place
// until the process exits.
func (l *Logger) LogLeak(ctx context.Context, path string, size int, removed bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "mapping leaked, handle cleanup failed",
			"path", path,
			"size", size,
			"removed", removed,
			"error", err,
		)
	} else {
		l.WarnContext(ctx, "mapping leaked, call Close",
			"path", path,
			"size", size,
			"removed", removed,
		)
	}
}

// LogFreeze logs a mutable to read-only transition.
func (l *Logger) LogFreeze(ctx context.Context, path string, exec bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "freeze failed",
			"path", path,
			"exec", exec,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "mapping frozen",
			"path", path,
			"exec", exec,
		)
	}
}

// LogRemove logs removal of a backing file.
func (l *Logger) LogRemove(ctx context.Context, path string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "remove failed",
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "backing file removed",
			"path", path,
		)
	}
}

// LogClose logs closing a mapping. size is the final length requested from
// close-with-truncate, or -1.
func (l *Logger) LogClose(ctx context.Context, path string, size int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "close failed",
			"path", path,
			"size", size,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "mapping closed",
			"path", path,
			"size", size,
		)
	}
}
