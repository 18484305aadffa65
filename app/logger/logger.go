// Package logger configures the process-wide slog logger with a
// level-colored console handler, replacing the default text handler so
// warnings and per-event failures stand out in terminal output.
package logger

import (
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
)

// Setup installs the console handler as the slog default and returns the
// logger for injection into components that take one explicitly.
func Setup(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	color := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())

	logger := slog.New(newConsoleHandler(os.Stderr, level, color))
	slog.SetDefault(logger)

	return logger
}
