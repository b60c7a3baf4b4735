// Package logger installs the process-wide slog handler. Verbosity comes from
// config, not from the environment directly, so one flag governs the whole
// pipeline.
package logger

import (
	"log/slog"
	"os"
)

// Init installs a text handler as the slog default. Debug enables debug-level
// records for the whole process.
func Init(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})))
}

func Info(msg string, args ...any) {
	slog.Info(msg, args...)
}

func Error(msg string, args ...any) {
	slog.Error(msg, args...)
}

func Debug(msg string, args ...any) {
	slog.Debug(msg, args...)
}

func Warn(msg string, args ...any) {
	slog.Warn(msg, args...)
}
