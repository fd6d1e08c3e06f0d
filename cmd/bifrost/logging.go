package main

import (
	"log/slog"
	"os"
	"strings"
)

// setupLogger mirrors cmd/semstreams/logging.go: JSON/text handler
// selection by format, level parsed from the --log-level/LOG_LEVEL value,
// and AddSource only at debug level to avoid the overhead at steady state.
func setupLogger(level string, jsonLogs bool) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: logLevel == slog.LevelDebug,
	}

	var handler slog.Handler
	if jsonLogs {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler).With("service", "bifrost", "version", Version)
}
