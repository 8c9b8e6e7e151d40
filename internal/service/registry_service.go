package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/mmynk/secretsanta/internal/apperr"
	"github.com/mmynk/secretsanta/internal/models"
	"github.com/mmynk/secretsanta/internal/storage"
)

// Registry manages user identities and their settings.
type Registry struct {
	store       storage.UserStore
	defaultLang models.Language
	now         func() time.Time
}

// NewRegistry creates a Registry. New users get defaultLang.
func NewRegistry(store storage.UserStore, defaultLang models.Language, now func() time.Time) *Registry {
	return &Registry{store: store, defaultLang: defaultLang, now: now}
}

// IsRegistered reports whether userID has a user record.
func (r *Registry) IsRegistered(ctx context.Context, userID string) (bool, error) {
	_, err := r.store.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperr.Internal(err, "failed to load user %s", userID)
	}
	return true, nil
}

// Register creates the user record and default settings. A second registration
// is a StateError and leaves the stored record untouched.
func (r *Registry) Register(ctx context.Context, userID, displayName, wishes string) (*models.User, error) {
	slog.Info("Register request received", "user_id", userID)

	displayName = strings.TrimSpace(displayName)
	wishes = strings.TrimSpace(wishes)
	if userID == "" {
		return nil, apperr.Validation("user id is required").With(apperr.ReasonMissingValue)
	}
	if displayName == "" {
		return nil, apperr.Validation("display name is required").With(apperr.ReasonMissingValue)
	}
	if wishes == "" {
		return nil, apperr.Validation("wishes are required").With(apperr.ReasonMissingValue)
	}

	registered, err := r.IsRegistered(ctx, userID)
	if err != nil {
		return nil, err
	}
	if registered {
		return nil, apperr.State("user %s is already registered", userID).With(apperr.ReasonAlreadyRegistered)
	}

	user := &models.User{
		ID:           userID,
		DisplayName:  displayName,
		Wishes:       wishes,
		RegisteredAt: r.now().UTC(),
	}
	err = r.store.CreateUser(ctx, user, models.DefaultSettings(userID, r.defaultLang))
	if errors.Is(err, storage.ErrConflict) {
		return nil, apperr.State("user %s is already registered", userID).With(apperr.ReasonAlreadyRegistered)
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to register user %s", userID)
	}

	slog.Info("User registered", "user_id", userID)
	return user, nil
}

// GetUser returns a registered user.
func (r *Registry) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := r.store.GetUser(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, "user", userID)
	}
	return user, nil
}

// Settings returns the user's settings, or the defaults if none are stored.
func (r *Registry) Settings(ctx context.Context, userID string) (*models.UserSettings, error) {
	settings, err := r.store.GetUserSettings(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return models.DefaultSettings(userID, r.defaultLang), nil
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to load settings for %s", userID)
	}
	return settings, nil
}

// SetLanguage stores the language preference. Unknown codes are a ValidationError.
func (r *Registry) SetLanguage(ctx context.Context, userID, code string) (models.Language, error) {
	lang := models.Language(strings.ToLower(strings.TrimSpace(code)))
	if !lang.Valid() {
		return "", apperr.Validation("unsupported language %q", code).With(apperr.ReasonUnsupportedLanguage)
	}
	err := r.store.UpdateLanguage(ctx, userID, lang)
	if errors.Is(err, storage.ErrNotFound) {
		return "", apperr.State("user %s is not registered", userID).With(apperr.ReasonNotRegistered)
	}
	if err != nil {
		return "", apperr.Internal(err, "failed to set language for %s", userID)
	}
	slog.Info("Language updated", "user_id", userID, "language", lang)
	return lang, nil
}

// SetRemindersEnabled stores the reminders flag.
func (r *Registry) SetRemindersEnabled(ctx context.Context, userID string, enabled bool) error {
	err := r.store.UpdateRemindersEnabled(ctx, userID, enabled)
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.State("user %s is not registered", userID).With(apperr.ReasonNotRegistered)
	}
	if err != nil {
		return apperr.Internal(err, "failed to update reminders for %s", userID)
	}
	slog.Info("Reminders updated", "user_id", userID, "enabled", enabled)
	return nil
}

// ToggleReminders flips the reminders flag and returns the new value.
func (r *Registry) ToggleReminders(ctx context.Context, userID string) (bool, error) {
	settings, err := r.Settings(ctx, userID)
	if err != nil {
		return false, err
	}
	enabled := !settings.RemindersEnabled
	if err := r.SetRemindersEnabled(ctx, userID, enabled); err != nil {
		return false, err
	}
	return enabled, nil
}
