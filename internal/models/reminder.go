package models

import "time"

// ReminderType identifies how far ahead of the event a reminder fires.
type ReminderType string

const (
	ReminderThreeDays ReminderType = "three_days_before"
	ReminderOneDay    ReminderType = "one_day_before"
)

// DaysBefore returns the lead time in days.
func (t ReminderType) DaysBefore() int {
	switch t {
	case ReminderThreeDays:
		return 3
	case ReminderOneDay:
		return 1
	default:
		return 0
	}
}

// ReminderTypes lists types in the order the scheduler processes them.
var ReminderTypes = []ReminderType{ReminderThreeDays, ReminderOneDay}

// ReminderRecord is the de-duplication sentinel for (game, user, type).
// Its existence alone blocks re-sending. Sent is set once the claimant has
// finished with it, whether the reminder was delivered, muted, or failed.
type ReminderRecord struct {
	ID          string
	GameID      string
	UserID      string
	Type        ReminderType
	Sent        bool
	ScheduledAt time.Time
}

// ReminderCandidate is a participant due a reminder.
type ReminderCandidate struct {
	GameID           string
	GameName         string
	EventDate        time.Time
	UserID           string
	Language         Language
	RemindersEnabled bool
}
