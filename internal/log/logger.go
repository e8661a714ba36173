package log

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ParseLevel converts a --log-level value into an slog.Level.
// Only "debug" and "info" are accepted.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q: use debug or info", s)
	}
}

// NewLogger creates a text logger writing to w at the given level.
// All output passes through a SecureHandler.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewSecureHandler(h))
}

// NewJSONLogger is like NewLogger but emits one JSON object per record.
func NewJSONLogger(w io.Writer, level slog.Level) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewSecureHandler(h))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
