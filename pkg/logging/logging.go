// Package logging provides a slog.Logger factory used by all cgs apps.
//
// Log format is controlled by the LOG_FORMAT environment variable:
//
//	LOG_FORMAT=json    structured JSON, suitable for log aggregators
//	LOG_FORMAT=text    human-readable key=value pairs
//
// When LOG_FORMAT is unset the caller's fallback format is used: the CLI
// prefers text, the mock server prefers JSON.
//
// Log level is controlled by LOG_LEVEL (debug, info, warn, error; default info).
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format names a slog handler flavour.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// New returns a logger writing to w, configured from environment variables.
func New(w io.Writer, fallback Format) *slog.Logger {
	level := parseLevel(os.Getenv("LOG_LEVEL"))
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch parseFormat(os.Getenv("LOG_FORMAT"), fallback) {
	case FormatText:
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}

// Discard returns a logger that drops every record. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseFormat(s string, fallback Format) Format {
	switch strings.ToLower(s) {
	case "text", "console":
		return FormatText
	case "json":
		return FormatJSON
	default:
		return fallback
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
