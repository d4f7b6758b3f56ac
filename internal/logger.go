package internal

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger builds the process logger. Production emits JSON for the log
// pipeline; everything else gets the human-readable text handler.
func NewLogger(w io.Writer, env string, level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		slog.Default().Warn("unknown log level, using info", slog.String("value", level))
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	if env == "prod" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		opts.AddSource = lvl == slog.LevelDebug
		h = slog.NewTextHandler(w, opts)
	}

	return slog.New(h).With(slog.String("env", env))
}
