package main

import (
	"io"
	"log/slog"
	"os"
)

const logFile = "launcher.log"

// setupLogger configures the process logger writing to launcher.log and
// stderr. Failure to open the log file degrades to stderr only.
func setupLogger() *slog.Logger {
	var writer io.Writer = os.Stderr
	if f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644); err == nil {
		writer = io.MultiWriter(os.Stderr, f)
	}
	logger := slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	return logger
}
