package main

import (
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
)

// getenv wraps os.Getenv so tests can stub the environment lookup.
var getenv = os.Getenv

// setupLogger installs the process-wide slog default based on the verbosity
// flags. The config file can refine level and format later; flags win for
// one-off runs. On a non-TTY stderr (cron, systemd), output is JSON so log
// collectors get structured lines without extra configuration.
func setupLogger() {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}

	if flagQuiet {
		level = slog.LevelWarn
	}

	slog.SetDefault(slog.New(newHandler(level, "")))
}

// configureLogger re-applies logging settings once the config file is loaded.
// Flags still take precedence over the file for level selection.
func configureLogger(fileLevel, fileFormat string) {
	level := parseLevel(fileLevel)
	if flagVerbose {
		level = slog.LevelDebug
	}

	if flagQuiet {
		level = slog.LevelWarn
	}

	slog.SetDefault(slog.New(newHandler(level, fileFormat)))
}

func newHandler(level slog.Level, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}

	useText := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())

	switch format {
	case "text":
		useText = true
	case "json":
		useText = false
	}

	if useText {
		return slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.NewJSONHandler(os.Stderr, opts)
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
