package logging

import (
	"io"
	"log/slog"
	"os"
)

// Logger is the process-wide logger. It discards everything until
// Initialize runs so packages can log unconditionally.
var Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))

func Initialize(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	Logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
