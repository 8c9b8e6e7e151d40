package render

import (
	"strings"
	"testing"
	"time"

	"github.com/mmynk/secretsanta/internal/models"
)

func TestCatalogsComplete(t *testing.T) {
	for key := range ru {
		if _, ok := en[key]; !ok {
			t.Errorf("key %s missing from en catalog", key)
		}
	}
	for key := range en {
		if _, ok := ru[key]; !ok {
			t.Errorf("key %s missing from ru catalog", key)
		}
	}
}

func TestText(t *testing.T) {
	r, err := New(models.LanguagePrimary)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	tests := []struct {
		name string
		lang models.Language
		key  Key
		args []any
		want []string
	}{
		{
			name: "english reminder",
			lang: models.LanguageSecondary,
			key:  ReminderOneDay,
			args: []any{"Holiday", "25.12.2026"},
			want: []string{"Urgent Reminder", "Holiday", "tomorrow", "25.12.2026"},
		},
		{
			name: "russian reminder",
			lang: models.LanguagePrimary,
			key:  ReminderThreeDays,
			args: []any{"Праздник", "25.12.2026"},
			want: []string{"Напоминание", "Праздник", "3 дня"},
		},
		{
			name: "unknown language falls back",
			lang: models.Language("de"),
			key:  Welcome,
			want: []string{"Добро пожаловать"},
		},
		{
			name: "rating notice",
			lang: models.LanguageSecondary,
			key:  RatingNotice,
			args: []any{Stars(5), 5, "Holiday"},
			want: []string{"⭐⭐⭐⭐⭐", "(5/5)", "Holiday"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Text(tt.lang, tt.key, tt.args...)
			for _, fragment := range tt.want {
				if !strings.Contains(got, fragment) {
					t.Errorf("Text() = %q, missing %q", got, fragment)
				}
			}
		})
	}
}

func TestReminderKey(t *testing.T) {
	if ReminderKey(models.ReminderOneDay) != ReminderOneDay {
		t.Error("one-day reminder mapped to wrong key")
	}
	if ReminderKey(models.ReminderThreeDays) != ReminderThreeDays {
		t.Error("three-day reminder mapped to wrong key")
	}
}

func TestDate(t *testing.T) {
	got := Date(time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC))
	if got != "25.12.2026" {
		t.Errorf("Date() = %s, want 25.12.2026", got)
	}
}
