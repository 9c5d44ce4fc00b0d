package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// New returns a JSON logger writing to w. Debug enables DEBUG level records.
func New(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// Setup installs the default JSON logger. When logFile is set, records are written
// to stdout and appended to that file. The returned func closes the file.
func Setup(debug bool, logFile string) (func() error, error) {
	if logFile == "" {
		slog.SetDefault(New(os.Stdout, debug))
		return func() error { return nil }, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", logFile, err)
	}
	slog.SetDefault(New(io.MultiWriter(os.Stdout, f), debug))
	return f.Close, nil
}
