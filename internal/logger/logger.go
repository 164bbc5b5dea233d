// ABOUTME: Structured logging configuration using log/slog.
// ABOUTME: Builds the default logger from level/format settings, optionally writing to a file.

package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Options controls how the default logger is built.
// Level: debug, info, warn, error (default: warn for the CLI)
// Format: text, json (default: text)
// File: when set, logs are appended there instead of stderr so the TUI
// display is not corrupted.
type Options struct {
	Level  string
	Format string
	File   string
}

// Init configures the default slog logger. The returned closer releases the
// log file, if one was opened; it is safe to call on a nil-file setup.
func Init(opts Options) (io.Closer, error) {
	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0700); err != nil {
			return closer, err
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return closer, err
		}
		out = f
		closer = f
	}

	slog.SetDefault(New(out, opts))
	return closer, nil
}

// New builds a logger writing to w with the given options.
func New(w io.Writer, opts Options) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{
		Level: parseLevel(opts.Level),
	}

	var handler slog.Handler
	if strings.ToLower(opts.Format) == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(handler)
}

// parseLevel converts a string log level to slog.Level.
// Unset means warn: a CLI should stay quiet unless asked.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
