// Package logger provides structured logging for purgebot using Go's slog
// package with configurable level, format, and an optional file sink.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// New creates a slog Logger with the given level and output format. When
// filePath is non-empty, log output is duplicated to that file. The returned
// closer is nil when no file sink is open.
func New(levelStr string, jsonOutput bool, filePath string) (*slog.Logger, io.Closer, error) {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var out io.Writer = os.Stdout
	var closer io.Closer
	if filePath != "" {
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, f)
		closer = f
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler), closer, nil
}
