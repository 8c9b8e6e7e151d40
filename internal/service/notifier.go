package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mmynk/secretsanta/internal/apperr"
	"github.com/mmynk/secretsanta/internal/models"
	"github.com/mmynk/secretsanta/internal/notify"
	"github.com/mmynk/secretsanta/internal/render"
	"github.com/mmynk/secretsanta/internal/storage"
)

// Notifier renders a catalog entry in the recipient's language and hands it to the gateway.
type Notifier struct {
	store       storage.UserStore
	gateway     notify.Gateway
	renderer    *render.Renderer
	defaultLang models.Language
}

// NewNotifier creates a Notifier.
func NewNotifier(store storage.UserStore, gateway notify.Gateway, renderer *render.Renderer, defaultLang models.Language) *Notifier {
	return &Notifier{
		store:       store,
		gateway:     gateway,
		renderer:    renderer,
		defaultLang: defaultLang,
	}
}

// Language returns the user's stored language, or the default when none is stored.
func (n *Notifier) Language(ctx context.Context, userID string) models.Language {
	settings, err := n.store.GetUserSettings(ctx, userID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Warn("Failed to load user settings, using default language", "user_id", userID, "error", err)
		}
		return n.defaultLang
	}
	if !settings.Language.Valid() {
		return n.defaultLang
	}
	return settings.Language
}

// Renderer returns the catalog used for notifications.
func (n *Notifier) Renderer() *render.Renderer {
	return n.renderer
}

// Notify renders key for userID and delivers it. Failures come back as apperr.KindDelivery.
func (n *Notifier) Notify(ctx context.Context, userID string, key render.Key, args ...any) error {
	return n.NotifyFunc(ctx, userID, func(lang models.Language) string {
		return n.renderer.Text(lang, key, args...)
	})
}

// NotifyFunc delivers the text produced by compose in userID's language.
func (n *Notifier) NotifyFunc(ctx context.Context, userID string, compose func(lang models.Language) string) error {
	text := compose(n.Language(ctx, userID))
	if err := n.gateway.Send(ctx, userID, text); err != nil {
		slog.Warn("Notification delivery failed", "user_id", userID, "error", err)
		return apperr.Delivery(userID, err)
	}
	return nil
}
