// Package logger provides the package-level structured logger used across
// the pipeline, plus zap-backed context helpers for per-session logging.
package logger

import (
	"log/slog"
	"os"
)

var logger *slog.Logger

// Init sets up JSON logging to stderr. Verbose lowers the level to debug;
// the default only surfaces warnings and errors so capture/detect output
// on stdout stays machine-readable.
func Init(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// Debug logs a debug message. Safe before Init; messages are dropped.
func Debug(msg string, args ...any) {
	if logger != nil {
		logger.Debug(msg, args...)
	}
}

// Info logs an info message.
func Info(msg string, args ...any) {
	if logger != nil {
		logger.Info(msg, args...)
	}
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	if logger != nil {
		logger.Warn(msg, args...)
	}
}

// Error logs an error message.
func Error(msg string, args ...any) {
	if logger != nil {
		logger.Error(msg, args...)
	}
}
