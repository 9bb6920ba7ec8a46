package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// newLogger builds the process logger. Verbosity maps 0 to warn, 1 to
// info, 2 to debug and 3 or more to debug with source locations. With a
// debug log path, records go to that file at debug level instead of w.
func newLogger(verbosity int, debugLog string, w io.Writer) (*slog.Logger, func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelWarn}
	switch {
	case verbosity >= 3:
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	case verbosity == 2:
		opts.Level = slog.LevelDebug
	case verbosity == 1:
		opts.Level = slog.LevelInfo
	}

	closeFn := func() {}
	if debugLog != "" {
		f, err := os.OpenFile(debugLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening debug log %s: %w", debugLog, err)
		}
		w = f
		opts.Level = slog.LevelDebug
		closeFn = func() { _ = f.Close() }
	}

	return slog.New(slog.NewTextHandler(w, opts)), closeFn, nil
}
