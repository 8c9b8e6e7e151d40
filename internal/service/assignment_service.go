package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/mmynk/secretsanta/internal/apperr"
	"github.com/mmynk/secretsanta/internal/draw"
	"github.com/mmynk/secretsanta/internal/keylock"
	"github.com/mmynk/secretsanta/internal/models"
	"github.com/mmynk/secretsanta/internal/render"
	"github.com/mmynk/secretsanta/internal/storage"
)

// AssignmentService draws and resets giver -> receiver assignments.
type AssignmentService struct {
	store       storage.Store
	notifier    *Notifier
	locks       *keylock.Map
	maxAttempts int
	observer    DrawObserver

	rngMu sync.Mutex
	rng   draw.Shuffler
}

// NewAssignmentService creates an AssignmentService. observer may be nil.
func NewAssignmentService(store storage.Store, notifier *Notifier, locks *keylock.Map, rng draw.Shuffler, maxAttempts int, observer DrawObserver) *AssignmentService {
	return &AssignmentService{
		store:       store,
		notifier:    notifier,
		locks:       locks,
		rng:         rng,
		maxAttempts: maxAttempts,
		observer:    observer,
	}
}

// Draw assigns every participant a receiver other than themselves and notifies each giver.
// Only the organizer may draw, and only once until ResetDraw.
func (s *AssignmentService) Draw(ctx context.Context, gameID, requesterID string) ([]models.Assignment, error) {
	slog.Info("Draw request received", "game_id", gameID, "requester_id", requesterID)

	assignments, game, err := s.draw(ctx, gameID, requesterID)
	s.observe(err)
	if err != nil {
		slog.Warn("Draw failed", "game_id", gameID, "error", err)
		return nil, err
	}

	slog.Info("Draw completed", "game_id", gameID, "participants", len(assignments))

	var deliveryErrs []error
	for _, a := range assignments {
		receiver, err := s.store.GetUser(ctx, a.ReceiverID)
		if err != nil {
			deliveryErrs = append(deliveryErrs, apperr.Delivery(a.GiverID, err))
			continue
		}
		err = s.notifier.Notify(ctx, a.GiverID, render.DrawNotice,
			game.Name, receiver.DisplayName, receiver.Wishes, game.Budget, render.Date(game.EventDate))
		if err != nil {
			deliveryErrs = append(deliveryErrs, err)
		}
	}

	return assignments, errors.Join(deliveryErrs...)
}

func (s *AssignmentService) draw(ctx context.Context, gameID, requesterID string) ([]models.Assignment, *models.Game, error) {
	unlock := s.locks.Lock(gameID)
	defer unlock()

	game, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		return nil, nil, lookupErr(err, "game", gameID)
	}
	if game.OrganizerID != requesterID {
		return nil, nil, apperr.Permission("only the organizer can draw game %s", gameID).With(apperr.ReasonNotOrganizer)
	}

	participants, err := s.store.ListParticipants(ctx, gameID)
	if err != nil {
		return nil, nil, apperr.Internal(err, "failed to load participants of %s", gameID)
	}
	if len(participants) < draw.MinParticipants {
		return nil, nil, apperr.State("game %s needs at least %d participants, has %d",
			gameID, draw.MinParticipants, len(participants)).With(apperr.ReasonTooFewParticipants)
	}

	ids := make([]string, len(participants))
	names := make(map[string]string, len(participants))
	for i, p := range participants {
		if p.Drawn() {
			return nil, nil, apperr.State("game %s has already been drawn", gameID).With(apperr.ReasonAlreadyDrawn)
		}
		ids[i] = p.UserID
		names[p.UserID] = p.DisplayName
	}

	s.rngMu.Lock()
	pairs, err := draw.Derange(ids, s.rng, s.maxAttempts)
	s.rngMu.Unlock()

	var exhausted *draw.ExhaustedError
	if errors.As(err, &exhausted) {
		return nil, nil, apperr.DrawExhausted(exhausted.Attempts)
	}
	if err != nil {
		return nil, nil, apperr.Internal(err, "failed to draw game %s", gameID)
	}

	err = s.store.AssignAll(ctx, gameID, pairs)
	if errors.Is(err, storage.ErrConflict) {
		return nil, nil, apperr.State("game %s changed during the draw", gameID).With(apperr.ReasonDrawConflict)
	}
	if err != nil {
		return nil, nil, apperr.Internal(err, "failed to save draw for %s", gameID)
	}

	assignments := make([]models.Assignment, len(ids))
	for i, giver := range ids {
		receiver := pairs[giver]
		assignments[i] = models.Assignment{
			GiverID:      giver,
			ReceiverID:   receiver,
			ReceiverName: names[receiver],
		}
	}
	return assignments, game, nil
}

func (s *AssignmentService) observe(err error) {
	if s.observer == nil {
		return
	}
	if err != nil {
		s.observer.ObserveDraw(string(apperr.KindOf(err)))
		return
	}
	s.observer.ObserveDraw("ok")
}

// ResetDraw clears every assignment in the game so it can be drawn again.
func (s *AssignmentService) ResetDraw(ctx context.Context, gameID, requesterID string) (int64, error) {
	slog.Info("ResetDraw request received", "game_id", gameID, "requester_id", requesterID)

	unlock := s.locks.Lock(gameID)
	defer unlock()

	game, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		return 0, lookupErr(err, "game", gameID)
	}
	if game.OrganizerID != requesterID {
		return 0, apperr.Permission("only the organizer can reset game %s", gameID).With(apperr.ReasonNotOrganizer)
	}

	cleared, err := s.store.ResetAssignments(ctx, gameID)
	if err != nil {
		return 0, apperr.Internal(err, "failed to reset game %s", gameID)
	}

	slog.Info("Draw reset", "game_id", gameID, "cleared", cleared)
	return cleared, nil
}
