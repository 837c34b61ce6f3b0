package cli

import (
	"io"
	"log/slog"
)

// newLogger returns the diagnostic logger. Unknown levels fall back to warn.
func newLogger(level string, w io.Writer) *slog.Logger {
	lvl := slog.LevelWarn
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			lvl = slog.LevelWarn
		}
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
