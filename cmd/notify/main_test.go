package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/diagnosis/homepro-bookings/pkg/config"
	"github.com/diagnosis/homepro-bookings/pkg/logger"
)

func TestStart_RequiresNATS(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "notify.log")
	t.Setenv("LOG_FILE", logFile)
	t.Setenv("NATS_URL", "")
	t.Cleanup(func() { logger.Setup(config.LogConfig{}) })

	if code := start(); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "NATS_URL is required") {
		t.Fatalf("expected missing NATS_URL in log file, got %q", data)
	}
}
