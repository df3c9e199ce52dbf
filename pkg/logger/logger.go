package logger

import (
	"log/slog"
	"os"
)

// Logger wraps slog for consistent structured logging across the application
type Logger struct {
	*slog.Logger
}

// New creates a new JSON logger writing to stdout
func New() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})),
	}
}

// NewWithLevel creates a new logger with the specified minimum level
func NewWithLevel(level slog.Level) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})),
	}
}

// ForComponent returns a logger tagged with the originating component name,
// e.g. "authCache" or "reportCache", so cache and queue failures can be
// traced back to the facade that produced them.
func (l *Logger) ForComponent(name string) *Logger {
	return &Logger{
		Logger: l.With("component", name),
	}
}

// WithField returns a logger with a pre-set field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{
		Logger: l.With(key, value),
	}
}

// WithFields returns a logger with multiple pre-set fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{
		Logger: l.With(args...),
	}
}
