package log

import (
	"log/slog"
	"sync/atomic"
)

var defaultLogger atomic.Pointer[Logger]

// SetDefaultLogger sets the process-wide default logger and routes the
// standard slog package through it.
func SetDefaultLogger(logger *Logger) {
	defaultLogger.Store(logger)
	slog.SetDefault(logger.Logger)
}

// DefaultLogger returns the process-wide default logger, installing
// Default() on first use.
func DefaultLogger() *Logger {
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	if l := Default(); defaultLogger.CompareAndSwap(nil, l) {
		slog.SetDefault(l.Logger)
	}
	return defaultLogger.Load()
}
