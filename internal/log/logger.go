// Package log configures structured logging for the ledger binaries and
// carries the shared field vocabulary.
package log

import (
	"log/slog"
	"os"
)

// New builds a text slog logger at the given level. Unknown levels fall back
// to info.
func New(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
}

func ParseLevel(level string) slog.Level {
	switch level {
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

// SetDefault installs the logger process-wide so library code that logs via
// slog.Default picks it up.
func SetDefault(logger *slog.Logger) {
	slog.SetDefault(logger)
}
