// Package logging configures the process-wide structured logger.
//
// Logs are JSON on stderr. The level comes from the explicit argument, or
// LOG_LEVEL when that is empty, and defaults to info. Debug loggers carry
// source locations.
package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
)

// EnvLogLevel is consulted when no explicit level is given
const EnvLogLevel = "LOG_LEVEL"

// ParseLevel maps a level name to a slog.Level. Unknown or empty names
// yield info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// NewStructuredLogger returns a JSON logger tagged with module and version.
func NewStructuredLogger(module, version, level string) *slog.Logger {
	return newLogger(os.Stderr, module, version, level)
}

func newLogger(w io.Writer, module, version, level string) *slog.Logger {
	if level == "" {
		level = os.Getenv(EnvLogLevel)
	}
	lvl := ParseLevel(level)

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl <= slog.LevelDebug,
	})
	return slog.New(handler).With("module", module, "version", version)
}

// SetDefaultStructuredLogger installs a structured logger as the slog and
// log package default and returns it.
func SetDefaultStructuredLogger(module, version, level string) *slog.Logger {
	logger := NewStructuredLogger(module, version, level)
	slog.SetDefault(logger)
	return logger
}

// NewLogLogger adapts the default slog handler to a *log.Logger for
// libraries that only accept the standard logger (net/http ErrorLog).
func NewLogLogger(level slog.Level) *log.Logger {
	return slog.NewLogLogger(slog.Default().Handler(), level)
}
