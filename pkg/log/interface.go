// Package log provides structured logging for pm25scope.
//
// Components log through the small Logger interface below rather than a
// concrete backend. Production code gets a log/slog implementation from
// GetLogger; tests swap in TestLogger to capture and inspect JSON lines.
//
// Example usage:
//
//	logger := log.GetLogger().With(log.ComponentKey, "cleaning")
//	logger.Info("outliers flagged",
//	    log.OperationKey, log.OperationDetect,
//	    log.RowsKey, 1200,
//	    log.OutliersKey, 37,
//	)
package log

import (
	"context"
)

// Logger is a structured logger compatible with log/slog's calling style:
// a message followed by alternating key/value pairs.
type Logger interface {
	// Debug logs detailed diagnostic information.
	Debug(msg string, fields ...any)

	// Info logs operational information.
	Info(msg string, fields ...any)

	// Warn logs a recoverable anomaly.
	Warn(msg string, fields ...any)

	// Error logs a failure. Pass the error under ErrAttrKey so the handler
	// can attach its stack trace.
	Error(msg string, fields ...any)

	// With returns a Logger that adds fields to every record.
	With(fields ...any) Logger

	// Enabled reports whether level would be emitted.
	Enabled(ctx context.Context, level Level) bool
}

// Level mirrors slog.Level values.
type Level int

const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
