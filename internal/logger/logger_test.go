package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rcliao/babylog/internal/config"
)

func TestProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, config.Production, "")

	l.Debug("hidden")
	l.Info("record added", "category", "feeding")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if entry["category"] != "feeding" {
		t.Errorf("expected category attr, got %v", entry["category"])
	}
}

func TestDevelopmentWritesDebugText(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, config.Development, "")

	l.Debug("timer started")
	if !strings.Contains(buf.String(), "msg=\"timer started\"") {
		t.Errorf("expected debug text line, got %q", buf.String())
	}
}

func TestLevelOverride(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, config.Production, "warn")

	l.Info("quiet")
	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered, got %q", buf.String())
	}
	l.Warn("loud")
	if buf.Len() == 0 {
		t.Error("expected warn to be written")
	}
}
