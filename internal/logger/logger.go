// Package logger provides the common logging surface for tapfix.
// It wraps log/slog behind a small interface so commands and the server
// can inject their own handlers in tests.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

type slogLogger struct {
	l *slog.Logger
}

// New creates a Logger backed by the given slog handler.
func New(handler slog.Handler) Logger {
	return &slogLogger{l: slog.New(handler)}
}

// Default creates a Logger writing plain text to stderr at info level.
func Default() Logger {
	return New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// JSON creates a Logger with a JSON handler, used by the serve command.
func JSON(w io.Writer, level slog.Level) Logger {
	return New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Pretty creates a Logger with colored single-line output for CLI use.
func Pretty(w io.Writer, level slog.Level) Logger {
	return New(NewPrettyHandler(w, level))
}

type loggerKey struct{}

// WithContext stores the logger in the context.
func WithContext(ctx context.Context, log Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, log)
}

// FromContext retrieves the logger from the context, falling back to
// Default when none was stored.
func FromContext(ctx context.Context) Logger {
	if log, ok := ctx.Value(loggerKey{}).(Logger); ok {
		return log
	}
	return Default()
}

func (s *slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

func (s *slogLogger) With(args ...any) Logger {
	return &slogLogger{l: s.l.With(args...)}
}

// ParseLevel converts a config or flag value to a slog.Level.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
