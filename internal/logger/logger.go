// Package logger configures structured logging with log/slog.
// Every binary calls Init once; packages receive *slog.Logger through
// their constructors and never touch the global directly.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Init creates a JSON logger for the given service and installs it as
// the slog default so stray slog.Info calls stay structured too.
func Init(service string, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})

	log := slog.New(handler).With(
		slog.String("service", service),
	)

	slog.SetDefault(log)

	return log
}

// ParseLevel maps a config string to a slog.Level. Unknown values fall
// back to info so a typo in config never silences logging.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
