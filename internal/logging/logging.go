// Package logging configures the process-wide slog default.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup installs the default slog handler. level is one of debug, info,
// warn, error (default info); format is "text" or "json" (default text).
func Setup(level, format string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// Component returns a logger tagged for a subsystem.
func Component(name string) *slog.Logger {
	return slog.Default().With("component", name)
}
