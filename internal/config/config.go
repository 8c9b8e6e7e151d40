// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/mmynk/secretsanta/internal/models"
)

// Config is the process configuration.
type Config struct {
	Addr   string `env:"SANTA_ADDR"    envDefault:":8080"`
	DBPath string `env:"SANTA_DB_PATH" envDefault:"./data/santa.db"`

	JWTSecret string        `env:"SANTA_JWT_SECRET,required,notEmpty"`
	TokenTTL  time.Duration `env:"SANTA_TOKEN_TTL"  envDefault:"720h"`

	ReminderInterval time.Duration `env:"SANTA_REMINDER_INTERVAL" envDefault:"60s"`
	ReminderLocation string        `env:"SANTA_REMINDER_LOCATION" envDefault:"Europe/Moscow"`

	DrawMaxAttempts int `env:"SANTA_DRAW_MAX_ATTEMPTS" envDefault:"100"`

	NotifyWebhookURL string        `env:"SANTA_NOTIFY_WEBHOOK_URL"`
	NotifyTimeout    time.Duration `env:"SANTA_NOTIFY_TIMEOUT"     envDefault:"5s"`

	DefaultLanguage string `env:"SANTA_DEFAULT_LANGUAGE" envDefault:"ru"`

	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads a .env file from the working directory if present, then parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return Parse()
}

// Parse reads the configuration from the environment and validates it.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values the env tags cannot express.
func (c *Config) Validate() error {
	if c.ReminderInterval <= 0 {
		return fmt.Errorf("SANTA_REMINDER_INTERVAL must be positive, got %s", c.ReminderInterval)
	}
	if c.DrawMaxAttempts <= 0 {
		return fmt.Errorf("SANTA_DRAW_MAX_ATTEMPTS must be positive, got %d", c.DrawMaxAttempts)
	}
	if !models.Language(c.DefaultLanguage).Valid() {
		return fmt.Errorf("SANTA_DEFAULT_LANGUAGE must be %q or %q, got %q",
			models.LanguagePrimary, models.LanguageSecondary, c.DefaultLanguage)
	}
	if _, err := time.LoadLocation(c.ReminderLocation); err != nil {
		return fmt.Errorf("invalid SANTA_REMINDER_LOCATION: %w", err)
	}
	return nil
}

// Location returns the zone reminder dates are computed in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ReminderLocation)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Language returns the default language for new users.
func (c *Config) Language() models.Language {
	return models.Language(c.DefaultLanguage)
}
