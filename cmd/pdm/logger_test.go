package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonny/pdm-service/internal/config"
)

func TestBuildLogger_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		logger, closeFn := buildLogger(config.LoggingConfig{Level: tt.level, Format: "json", Output: "stdout"})
		if !logger.Enabled(context.Background(), tt.want) {
			t.Errorf("level %q: %v not enabled", tt.level, tt.want)
		}
		if tt.want > slog.LevelDebug && logger.Enabled(context.Background(), tt.want-1) {
			t.Errorf("level %q: lower level enabled", tt.level)
		}
		closeFn()
	}
}

func TestBuildLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pdm.log")
	logger, closeFn := buildLogger(config.LoggingConfig{
		Level:     "info",
		Format:    "text",
		Output:    path,
		MaxSizeMB: 1,
	})
	logger.Info("prediction stored", "id", 7)
	closeFn()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "msg=\"prediction stored\" id=7") {
		t.Errorf("log file = %q", data)
	}
}
