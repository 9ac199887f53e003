package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Init sets the default slog logger. When stdoutIsData is true, analyses are
// streamed to stdout, so logs go to stderr as JSON to stay machine-readable.
// Otherwise logs use the text handler on stderr.
func Init(stdoutIsData bool, level slog.Level) {
	slog.SetDefault(slog.New(NewHandler(os.Stderr, stdoutIsData, level)))
}

// NewHandler returns a JSON or text handler writing to w.
func NewHandler(w io.Writer, json bool, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// ParseLevel converts a string ("debug", "info", "warn", "error") to slog.Level.
// Unknown strings default to LevelInfo.
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
