// Package service implements the game engine operations on top of a storage.Store.
//
// Operations that trigger notifications persist their state change first. If a
// delivery then fails, the operation returns its normal result together with an
// error of kind apperr.KindDelivery; callers should surface it as a warning.
package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/mmynk/secretsanta/internal/apperr"
	"github.com/mmynk/secretsanta/internal/draw"
	"github.com/mmynk/secretsanta/internal/keylock"
	"github.com/mmynk/secretsanta/internal/models"
	"github.com/mmynk/secretsanta/internal/notify"
	"github.com/mmynk/secretsanta/internal/render"
	"github.com/mmynk/secretsanta/internal/storage"
)

// DrawObserver is told the outcome of every draw attempt.
type DrawObserver interface {
	ObserveDraw(outcome string)
}

// Deps are the collaborators shared by every service.
type Deps struct {
	Store           storage.Store
	Gateway         notify.Gateway
	Renderer        *render.Renderer
	DefaultLanguage models.Language

	// DrawMaxAttempts defaults to draw.DefaultMaxAttempts.
	DrawMaxAttempts int
	// Rand defaults to the goroutine-safe math/rand/v2 top-level source.
	Rand draw.Shuffler
	// Now defaults to time.Now.
	Now func() time.Time

	DrawObserver DrawObserver
}

// Services bundles the engine components. Games and Assignments share one
// per-game lock so joins and draws on the same game never interleave.
type Services struct {
	Registry    *Registry
	Games       *GameService
	Assignments *AssignmentService
	Messages    *MessageService
	Gifts       *GiftService
	Notifier    *Notifier
}

// New wires every service from deps.
func New(deps Deps) *Services {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Rand == nil {
		deps.Rand = globalShuffler{}
	}
	if deps.DrawMaxAttempts <= 0 {
		deps.DrawMaxAttempts = draw.DefaultMaxAttempts
	}
	if !deps.DefaultLanguage.Valid() {
		deps.DefaultLanguage = models.LanguagePrimary
	}

	locks := &keylock.Map{}
	notifier := NewNotifier(deps.Store, deps.Gateway, deps.Renderer, deps.DefaultLanguage)

	return &Services{
		Registry:    NewRegistry(deps.Store, deps.DefaultLanguage, deps.Now),
		Games:       NewGameService(deps.Store, notifier, locks, deps.Now),
		Assignments: NewAssignmentService(deps.Store, notifier, locks, deps.Rand, deps.DrawMaxAttempts, deps.DrawObserver),
		Messages:    NewMessageService(deps.Store, notifier, deps.Now),
		Gifts:       NewGiftService(deps.Store, notifier, deps.Now),
		Notifier:    notifier,
	}
}

type globalShuffler struct{}

func (globalShuffler) Shuffle(n int, swap func(i, j int)) {
	rand.Shuffle(n, swap)
}

var notFoundReasons = map[string]apperr.Reason{
	"game": apperr.ReasonGameNotFound,
	"user": apperr.ReasonNotRegistered,
}

// lookupErr converts a storage read failure into the matching apperr kind.
func lookupErr(err error, what string, id string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound("%s %s not found", what, id).With(notFoundReasons[what])
	}
	return apperr.Internal(err, "failed to load %s %s", what, id)
}

// requireUser returns the registered user or a StateError telling them to register.
func requireUser(ctx context.Context, store storage.UserStore, userID string) (*models.User, error) {
	user, err := store.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.State("user %s is not registered", userID).With(apperr.ReasonNotRegistered)
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to load user %s", userID)
	}
	return user, nil
}
