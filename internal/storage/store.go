// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/secretsanta/internal/models"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a unique key or conditional write fails.
	ErrConflict = errors.New("conflict")
)

// UserStore persists users and their settings.
type UserStore interface {
	// CreateUser inserts the user together with its default settings.
	// Returns ErrConflict if the user already exists.
	CreateUser(ctx context.Context, user *models.User, settings *models.UserSettings) error

	// GetUser returns ErrNotFound for unknown ids.
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// GetUserSettings returns ErrNotFound when the user has no settings row.
	GetUserSettings(ctx context.Context, userID string) (*models.UserSettings, error)

	// UpdateLanguage upserts the language preference.
	UpdateLanguage(ctx context.Context, userID string, lang models.Language) error

	// UpdateRemindersEnabled upserts the reminders flag.
	UpdateRemindersEnabled(ctx context.Context, userID string, enabled bool) error
}

// GameStore persists games and memberships.
type GameStore interface {
	// CreateGame inserts the game and its organizer as the first participant atomically.
	CreateGame(ctx context.Context, game *models.Game) error

	GetGame(ctx context.Context, gameID string) (*models.Game, error)

	// AddParticipant inserts a membership. Returns ErrConflict if the user already joined.
	AddParticipant(ctx context.Context, participant *models.Participant) error

	GetParticipant(ctx context.Context, gameID, userID string) (*models.Participant, error)

	// ListParticipants returns the game's members in join order.
	ListParticipants(ctx context.Context, gameID string) ([]models.ParticipantDetail, error)

	// FindGiver returns the participant whose assignment is receiverID.
	FindGiver(ctx context.Context, gameID, receiverID string) (*models.Participant, error)

	// ListJoinableGames returns active, undrawn games with at least one participant that userID has not joined.
	ListJoinableGames(ctx context.Context, userID string) ([]models.GameSummary, error)

	// ListUserGames returns every game userID participates in, ordered by event date.
	ListUserGames(ctx context.Context, userID string) ([]models.GameSummary, error)

	// ListCounterpartGames returns games where userID is a giver or a receiver.
	ListCounterpartGames(ctx context.Context, userID string) ([]models.CounterpartGame, error)
}

// AssignmentStore persists draw results.
type AssignmentStore interface {
	// AssignAll writes giver -> receiver for every participant in one transaction.
	// It returns ErrConflict if any participant is already assigned or if the
	// participant set differs from the keys of assignments.
	AssignAll(ctx context.Context, gameID string, assignments map[string]string) error

	// ResetAssignments clears every assignment in the game and returns the number of rows changed.
	ResetAssignments(ctx context.Context, gameID string) (int64, error)
}

// MessageStore persists anonymous messages.
type MessageStore interface {
	CreateMessage(ctx context.Context, msg *models.AnonymousMessage) error

	// ListUnreadAndMarkRead returns userID's unread messages, most recent first,
	// and marks exactly those messages read in the same transaction.
	ListUnreadAndMarkRead(ctx context.Context, userID string) ([]models.AnonymousMessage, error)
}

// GiftStore persists gift confirmations.
type GiftStore interface {
	// MarkGiftSent upserts sent=true without touching the received or rating columns.
	MarkGiftSent(ctx context.Context, gameID, userID string, at time.Time) error

	// MarkGiftReceived upserts received=true without touching the sent or rating columns.
	MarkGiftReceived(ctx context.Context, gameID, userID string, at time.Time) error

	// SetRating updates an existing confirmation. Returns ErrNotFound when no row exists.
	SetRating(ctx context.Context, gameID, userID string, rating int, feedback *string) error

	GetGiftConfirmation(ctx context.Context, gameID, userID string) (*models.GiftConfirmation, error)

	// ListGiftStatus reports every participant; missing confirmations read as false.
	ListGiftStatus(ctx context.Context, gameID string) ([]models.GiftStatus, error)
}

// ReminderStore persists reminder sentinels.
type ReminderStore interface {
	// ListReminderCandidates returns participants of active games on eventDate
	// that have no sentinel of the given type.
	ListReminderCandidates(ctx context.Context, eventDate time.Time, reminderType models.ReminderType) ([]models.ReminderCandidate, error)

	// ClaimReminder inserts the sentinel with sent=false. It returns false if the
	// sentinel already existed, in which case the caller must not deliver.
	ClaimReminder(ctx context.Context, record *models.ReminderRecord) (bool, error)

	// MarkReminderSent flips the sentinel's sent flag.
	MarkReminderSent(ctx context.Context, gameID, userID string, reminderType models.ReminderType) error

	ListReminders(ctx context.Context, gameID string) ([]models.ReminderRecord, error)
}

// Store aggregates every persistence concern.
// This abstraction allows swapping storage backends without changing the service layer.
type Store interface {
	UserStore
	GameStore
	AssignmentStore
	MessageStore
	GiftStore
	ReminderStore

	// Close releases any resources held by the store.
	Close() error
}
