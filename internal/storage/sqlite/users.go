package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/secretsanta/internal/models"
	"github.com/mmynk/secretsanta/internal/storage"
)

// CreateUser inserts a new user and its settings row in one transaction.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User, settings *models.UserSettings) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (id, display_name, wishes, registered_at)
			VALUES (?, ?, ?, ?)
		`, user.ID, user.DisplayName, user.Wishes, toMillis(user.RegisteredAt))
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO user_settings (user_id, language, timezone, reminders_enabled)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(user_id) DO NOTHING
		`, settings.UserID, string(settings.Language), settings.Timezone, settings.RemindersEnabled)
		if err != nil {
			return fmt.Errorf("failed to create user settings: %w", err)
		}
		return nil
	})
}

// GetUser retrieves a user by ID.
func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	query := `
		SELECT id, display_name, wishes, registered_at
		FROM users
		WHERE id = ?
	`

	user := &models.User{}
	var registeredAt int64
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&user.ID,
		&user.DisplayName,
		&user.Wishes,
		&registeredAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.RegisteredAt = fromMillis(registeredAt)

	return user, nil
}

// GetUserSettings retrieves the settings row for a user.
func (s *SQLiteStore) GetUserSettings(ctx context.Context, userID string) (*models.UserSettings, error) {
	query := `
		SELECT user_id, language, timezone, reminders_enabled
		FROM user_settings
		WHERE user_id = ?
	`

	settings := &models.UserSettings{}
	var lang string
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&settings.UserID,
		&lang,
		&settings.Timezone,
		&settings.RemindersEnabled,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user settings: %w", err)
	}
	settings.Language = models.Language(lang)

	return settings, nil
}

// UpdateLanguage sets the language preference, creating the settings row if needed.
// It returns storage.ErrNotFound for an unregistered user.
func (s *SQLiteStore) UpdateLanguage(ctx context.Context, userID string, lang models.Language) error {
	query := `
		INSERT INTO user_settings (user_id, language, timezone, reminders_enabled)
		VALUES (?, ?, ?, 1)
		ON CONFLICT(user_id) DO UPDATE SET language = excluded.language
	`
	_, err := s.db.ExecContext(ctx, query, userID, string(lang), models.DefaultTimezone)
	if isForeignKeyViolation(err) {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update language: %w", err)
	}
	return nil
}

// UpdateRemindersEnabled sets the reminders flag, creating the settings row if needed.
// It returns storage.ErrNotFound for an unregistered user.
func (s *SQLiteStore) UpdateRemindersEnabled(ctx context.Context, userID string, enabled bool) error {
	query := `
		INSERT INTO user_settings (user_id, language, timezone, reminders_enabled)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET reminders_enabled = excluded.reminders_enabled
	`
	_, err := s.db.ExecContext(ctx, query, userID, string(models.LanguagePrimary), models.DefaultTimezone, enabled)
	if isForeignKeyViolation(err) {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update reminders flag: %w", err)
	}
	return nil
}
