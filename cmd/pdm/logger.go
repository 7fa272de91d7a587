package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jonny/pdm-service/internal/config"
)

// buildLogger constructs a slog.Logger based on config. File outputs are
// rotated; the returned func closes them.
func buildLogger(cfg config.LoggingConfig) (*slog.Logger, func()) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var (
		out     io.Writer
		closeFn = func() {}
	)
	switch cfg.Output {
	case "", "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	default:
		rotator := &lumberjack.Logger{
			Filename:   cfg.Output,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		out = rotator
		closeFn = func() { _ = rotator.Close() }
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(out, opts)), closeFn
	}
	return slog.New(slog.NewJSONHandler(out, opts)), closeFn
}
