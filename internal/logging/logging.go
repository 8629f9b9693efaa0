// Package logging configures the structured logger used throughout
// gpst-client.
package logging

import (
	"log/slog"
	"os"
)

// LevelTrace sits below slog.LevelDebug, modeling the source's PRG_TRACE
// severity (log/slog has no built-in level below Debug).
const LevelTrace = slog.LevelDebug - 4

// New builds a JSON-handler *slog.Logger at the named level
// ("trace", "debug", "info", "warn", "error"; unrecognised names fall
// back to "info").
func New(levelName string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(levelName),
	})
	return slog.New(handler)
}

func parseLevel(name string) slog.Level {
	switch name {
	case "trace":
		return LevelTrace
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
