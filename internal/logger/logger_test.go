package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", DebugLevel},
		{"INFO", InfoLevel},
		{"warn", WarnLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"fatal", FatalLevel},
		{"verbose", InfoLevel},
		{"", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNewLogger_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(LogConfig{Level: "warn", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	log.Info("hidden %d", 1)
	log.Warn("shown %d", 2)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 log line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("Log line is not JSON: %v", err)
	}
	if entry["message"] != "shown 2" {
		t.Errorf("Unexpected message: %v", entry["message"])
	}
	if entry["level"] != "warn" {
		t.Errorf("Unexpected level: %v", entry["level"])
	}
}

func TestLogger_SetLevelAndWith(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(LogConfig{Level: "error", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	log.SetLevel(DebugLevel)
	log.With("request_id", "abc").Debug("debug message")

	out := buf.String()
	if !strings.Contains(out, `"request_id":"abc"`) {
		t.Errorf("Expected request_id field in output, got %q", out)
	}
	if !strings.Contains(out, "debug message") {
		t.Errorf("Expected debug message after SetLevel, got %q", out)
	}
}

func TestNewLogger_InvalidSettings(t *testing.T) {
	if _, err := NewLogger(LogConfig{Output: "syslog"}); err == nil {
		t.Error("Expected error for invalid output")
	}
	if _, err := NewLogger(LogConfig{Format: "xml", Writer: &bytes.Buffer{}}); err == nil {
		t.Error("Expected error for invalid format")
	}
}

func TestNoOpLogger(t *testing.T) {
	log := NewNoOpLogger()
	log.Info("nothing")
	log.Fatal("does not exit")
	log.With("k", "v").Error("still nothing")
}
