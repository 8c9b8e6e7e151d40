package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo, "json")
	logger.Debug("hidden")
	logger.Info("Draw completed", "game_id", "g1")

	line := strings.TrimSpace(buf.String())
	if strings.Contains(line, "hidden") {
		t.Error("debug line written at info level")
	}

	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, line)
	}
	if record["game_id"] != "g1" {
		t.Errorf("game_id = %v, want g1", record["game_id"])
	}
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, slog.LevelDebug, "text").Debug("Reminder tick", "sent", 2)
	if !strings.Contains(buf.String(), "Reminder tick") {
		t.Errorf("unexpected output %q", buf.String())
	}
}
