package models

import "time"

// User represents a registered participant identity.
type User struct {
	// ID is the identity supplied by the chat transport.
	ID string

	// DisplayName is the name shown to the user's Secret Santa.
	DisplayName string

	// Wishes is the free-form wish list text.
	Wishes string

	// RegisteredAt is when the user completed registration.
	RegisteredAt time.Time
}

// Language is a user's preferred notification language.
type Language string

const (
	// LanguagePrimary is the default catalog language (Russian).
	LanguagePrimary Language = "ru"
	// LanguageSecondary is the alternate catalog language (English).
	LanguageSecondary Language = "en"
)

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	return l == LanguagePrimary || l == LanguageSecondary
}

// DefaultTimezone is assigned to new users.
const DefaultTimezone = "Europe/Moscow"

// UserSettings holds per-user preferences, defaulted on registration.
type UserSettings struct {
	UserID           string
	Language         Language
	Timezone         string
	RemindersEnabled bool
}

// DefaultSettings returns the settings assigned at registration.
func DefaultSettings(userID string, lang Language) *UserSettings {
	if !lang.Valid() {
		lang = LanguagePrimary
	}
	return &UserSettings{
		UserID:           userID,
		Language:         lang,
		Timezone:         DefaultTimezone,
		RemindersEnabled: true,
	}
}
