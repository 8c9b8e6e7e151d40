package config

import (
	"strings"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("SANTA_JWT_SECRET", "test-secret")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %s, want :8080", cfg.Addr)
	}
	if cfg.ReminderInterval != 60*time.Second {
		t.Errorf("ReminderInterval = %s, want 60s", cfg.ReminderInterval)
	}
	if cfg.DrawMaxAttempts != 100 {
		t.Errorf("DrawMaxAttempts = %d, want 100", cfg.DrawMaxAttempts)
	}
	if cfg.Language() != "ru" {
		t.Errorf("Language = %s, want ru", cfg.Language())
	}
	if cfg.Location().String() != "Europe/Moscow" {
		t.Errorf("Location = %s, want Europe/Moscow", cfg.Location())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing secret",
			env:     map[string]string{},
			wantErr: "SANTA_JWT_SECRET",
		},
		{
			name:    "bad language",
			env:     map[string]string{"SANTA_JWT_SECRET": "s", "SANTA_DEFAULT_LANGUAGE": "de"},
			wantErr: "SANTA_DEFAULT_LANGUAGE",
		},
		{
			name:    "bad location",
			env:     map[string]string{"SANTA_JWT_SECRET": "s", "SANTA_REMINDER_LOCATION": "Mars/Olympus"},
			wantErr: "SANTA_REMINDER_LOCATION",
		},
		{
			name:    "non-positive attempts",
			env:     map[string]string{"SANTA_JWT_SECRET": "s", "SANTA_DRAW_MAX_ATTEMPTS": "0"},
			wantErr: "SANTA_DRAW_MAX_ATTEMPTS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SANTA_JWT_SECRET", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Parse()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %s", err, tt.wantErr)
			}
		})
	}
}
