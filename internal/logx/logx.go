// Package logx provides the leveled logger used across the ingestion and
// analytics pipeline.
package logx

import (
	"fmt"
	"log/slog"
	"os"
)

// Logger wraps slog with printf-style helpers.
type Logger struct {
	logger *slog.Logger
}

// Log is the global logger instance. SetLevel adjusts its verbosity.
var Log = New(slog.LevelInfo)

// New builds a Logger writing text-formatted records to stdout at the given level.
func New(level slog.Level) *Logger {
	return &Logger{
		logger: slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})),
	}
}

// SetLevel replaces the global logger's minimum level.
func SetLevel(level slog.Level) {
	Log = New(level)
}

// ParseLevel maps the config verbosity strings (debug, info, warn, error) to a slog.Level.
func ParseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) Infof(format string, args ...any) {
	l.logger.Info(sprintf(format, args...))
}

func (l *Logger) Warnf(format string, args ...any) {
	l.logger.Warn(sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...any) {
	l.logger.Error(sprintf(format, args...))
}

func (l *Logger) Debugf(format string, args ...any) {
	l.logger.Debug(sprintf(format, args...))
}

// With returns a Logger with additional structured fields attached to every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{logger: l.logger.With(args...)}
}

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
