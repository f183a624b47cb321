package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_TextAndJSON(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "info", "text").Info("hello", "k", "v")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Fatalf("expected text output, got %q", buf.String())
	}

	buf.Reset()
	New(&buf, "info", "json").Info("hello", "k", "v")
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected json output: %v", err)
	}
	if rec["k"] != "v" {
		t.Fatalf("expected k=v, got %v", rec)
	}
}

func TestWithContext_AttachesRequestAndUser(t *testing.T) {
	var buf bytes.Buffer
	prev := defaultLogger
	defaultLogger = New(&buf, "debug", "json")
	defer func() { defaultLogger = prev }()

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, UserIDKey, "user-1")
	ErrorContext(ctx, "boom", "op", "test")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec["request_id"] != "req-1" || rec["user_id"] != "user-1" || rec["op"] != "test" {
		t.Fatalf("missing context attributes: %v", rec)
	}
}
