package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, "warn", "json"))

	logger.Info("dropped")
	logger.Warn("kept", "records", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["msg"] != "kept" {
		t.Errorf("msg = %v, want kept", entry["msg"])
	}
	if entry["records"] != float64(3) {
		t.Errorf("records = %v, want 3", entry["records"])
	}
}

func TestNewHandler_Text(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewHandler(&buf, "info", "text")).Info("hello", "k", "v")

	if !strings.Contains(buf.String(), "msg=hello") || !strings.Contains(buf.String(), "k=v") {
		t.Errorf("unexpected text output: %q", buf.String())
	}
}

func TestFromContext_RequestID(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	slog.SetDefault(slog.New(NewHandler(&buf, "info", "text")))

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-123")
	WithFields(ctx, "session", "s1").Info("opened")

	out := buf.String()
	if !strings.Contains(out, "request_id=req-123") {
		t.Errorf("missing request_id: %q", out)
	}
	if !strings.Contains(out, "session=s1") {
		t.Errorf("missing field: %q", out)
	}

	buf.Reset()
	FromContext(context.Background()).Info("plain")
	if strings.Contains(buf.String(), "request_id") {
		t.Errorf("unexpected request_id: %q", buf.String())
	}
}

func TestFromContext_Client(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	slog.SetDefault(slog.New(NewHandler(&buf, "info", "text")))

	ctx := WithClient(context.Background(), Client{IP: "203.0.113.7", UserAgent: "curl"})
	FromContext(ctx).Info("sent")

	out := buf.String()
	if !strings.Contains(out, "client_ip=203.0.113.7") || !strings.Contains(out, "user_agent=curl") {
		t.Errorf("missing client fields: %q", out)
	}
	if got := ClientFromContext(ctx); got.IP != "203.0.113.7" {
		t.Errorf("ClientFromContext().IP = %q, want 203.0.113.7", got.IP)
	}

	buf.Reset()
	FromContext(WithClient(context.Background(), Client{})).Info("anonymous")
	if strings.Contains(buf.String(), "client_ip") {
		t.Errorf("unexpected client_ip: %q", buf.String())
	}
}

func TestSetup_File(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	path := filepath.Join(t.TempDir(), "logs", "priceview.log")
	closer := Setup(Options{Level: "info", Format: "json", File: path, MaxSizeMB: 1})

	slog.Info("written to file")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("log file missing entry: %q", data)
	}
}

func TestSetup_NoFile(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	closer := Setup(Options{Level: "debug"})
	if closer == nil {
		t.Fatal("Setup() returned nil closer")
	}
	if err := closer.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestSetup_Output(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	Setup(Options{Level: "warn", Output: &buf})

	slog.Info("dropped")
	slog.Warn("kept")
	if strings.Contains(buf.String(), "dropped") || !strings.Contains(buf.String(), "msg=kept") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}
