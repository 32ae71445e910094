// Package logger builds the structured loggers used by the engine and its
// hosts.
package logger

import (
	"io"
	"log/slog"
	"strings"
)

// VerboseEnv is the environment switch that makes the engine's trace lines
// visible. Its value is ignored; presence is enough.
const VerboseEnv = "TUNER_VERBOSE"

// New creates a JSON logger with the specified level and output.
func New(level string, output io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(output, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
}

// NewText creates a text-formatted logger (useful for development).
func NewText(level string, output io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError + 1,
	}))
}

// FromEnv returns a text logger writing to output: at debug level when
// VerboseEnv is set, at warn level otherwise.
func FromEnv(lookup func(string) (string, bool), output io.Writer) *slog.Logger {
	if _, ok := lookup(VerboseEnv); ok {
		return NewText("debug", output)
	}

	return NewText("warn", output)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
