package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithConfig(Config{Level: WARN, Output: &buf})

	l.Debug("not shown")
	l.Info("not shown either")
	l.Warn("shown")
	l.Error("also shown")

	out := buf.String()
	if strings.Contains(out, "not shown") {
		t.Errorf("messages below WARN should be suppressed, got: %s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "also shown") {
		t.Errorf("WARN/ERROR messages missing from output: %s", out)
	}
}

func TestContextFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithConfig(Config{Level: DEBUG, Output: &buf})

	l.WithField("component", "launcher").Info("starting", "pid", 42)

	out := buf.String()
	if !strings.Contains(out, "component=launcher") {
		t.Errorf("expected context field in output: %s", out)
	}
	if !strings.Contains(out, "pid=42") {
		t.Errorf("expected call field in output: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    LogLevel
		wantErr bool
	}{
		{"debug", DEBUG, false},
		{"INFO", INFO, false},
		{"warning", WARN, false},
		{"error", ERROR, false},
		{"verbose", INFO, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
