package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/mmynk/secretsanta/internal/apperr"
	"github.com/mmynk/secretsanta/internal/keylock"
	"github.com/mmynk/secretsanta/internal/models"
	"github.com/mmynk/secretsanta/internal/render"
	"github.com/mmynk/secretsanta/internal/storage"
)

// eventDateLayouts are the accepted input formats for an event date.
var eventDateLayouts = []string{render.DisplayDateLayout, models.DateLayout}

// ParseEventDate parses "dd.mm.yyyy" or "yyyy-mm-dd" into a UTC calendar date.
func ParseEventDate(input string) (time.Time, error) {
	input = strings.TrimSpace(input)
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, input); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperr.Validation("invalid date %q, expected DD.MM.YYYY or YYYY-MM-DD", input).With(apperr.ReasonBadDate)
}

// GameService manages games and memberships.
type GameService struct {
	store    storage.Store
	notifier *Notifier
	locks    *keylock.Map
	now      func() time.Time
}

// NewGameService creates a GameService. locks must be shared with the AssignmentService.
func NewGameService(store storage.Store, notifier *Notifier, locks *keylock.Map, now func() time.Time) *GameService {
	return &GameService{store: store, notifier: notifier, locks: locks, now: now}
}

// CreateGame creates a game with organizerID as its first participant.
func (s *GameService) CreateGame(ctx context.Context, organizerID, name, budget, eventDate string) (*models.Game, error) {
	slog.Info("CreateGame request received", "organizer_id", organizerID, "name", name)

	name = strings.TrimSpace(name)
	budget = strings.TrimSpace(budget)
	if name == "" {
		return nil, apperr.Validation("game name is required").With(apperr.ReasonMissingValue)
	}
	if budget == "" {
		return nil, apperr.Validation("budget is required").With(apperr.ReasonMissingValue)
	}
	date, err := ParseEventDate(eventDate)
	if err != nil {
		return nil, err
	}

	if _, err := requireUser(ctx, s.store, organizerID); err != nil {
		return nil, err
	}

	game := &models.Game{
		Name:        name,
		OrganizerID: organizerID,
		Budget:      budget,
		EventDate:   date,
		Status:      models.GameActive,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.CreateGame(ctx, game); err != nil {
		slog.Error("CreateGame failed", "error", err)
		return nil, apperr.Internal(err, "failed to create game")
	}

	slog.Info("Game created", "game_id", game.ID, "organizer_id", organizerID)
	return game, nil
}

// GetGame returns a game by id.
func (s *GameService) GetGame(ctx context.Context, gameID string) (*models.Game, error) {
	game, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		return nil, lookupErr(err, "game", gameID)
	}
	return game, nil
}

// JoinGame adds userID to the game and notifies the organizer.
// Joining a game that has already been drawn is a StateError.
func (s *GameService) JoinGame(ctx context.Context, gameID, userID string) (*models.Participant, error) {
	slog.Info("JoinGame request received", "game_id", gameID, "user_id", userID)

	user, err := requireUser(ctx, s.store, userID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(gameID)
	defer unlock()

	game, err := s.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.Status != models.GameActive {
		return nil, apperr.State("game %s is not active", gameID).With(apperr.ReasonGameClosed)
	}

	participants, err := s.store.ListParticipants(ctx, gameID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load participants of %s", gameID)
	}
	for _, p := range participants {
		if p.UserID == userID {
			return nil, apperr.State("user %s already joined game %s", userID, gameID).With(apperr.ReasonAlreadyJoined)
		}
		if p.Drawn() {
			return nil, apperr.State("game %s has already been drawn", gameID).With(apperr.ReasonAlreadyDrawn)
		}
	}

	participant := &models.Participant{GameID: gameID, UserID: userID}
	err = s.store.AddParticipant(ctx, participant)
	if errors.Is(err, storage.ErrConflict) {
		return nil, apperr.State("user %s already joined game %s", userID, gameID).With(apperr.ReasonAlreadyJoined)
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to join game %s", gameID)
	}

	slog.Info("Participant joined", "game_id", gameID, "user_id", userID)

	if err := s.notifier.Notify(ctx, game.OrganizerID, render.JoinNotice, user.DisplayName, game.Name); err != nil {
		return participant, err
	}
	return participant, nil
}

// ListJoinableGames returns active, undrawn games userID has not joined.
func (s *GameService) ListJoinableGames(ctx context.Context, userID string) ([]models.GameSummary, error) {
	games, err := s.store.ListJoinableGames(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list joinable games")
	}
	return games, nil
}

// ListUserGames returns every game userID participates in with its count and drawn flag.
func (s *GameService) ListUserGames(ctx context.Context, userID string) ([]models.GameSummary, error) {
	games, err := s.store.ListUserGames(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list games for %s", userID)
	}
	return games, nil
}

// IsParticipant reports whether userID belongs to gameID.
func (s *GameService) IsParticipant(ctx context.Context, gameID, userID string) (bool, error) {
	_, err := s.store.GetParticipant(ctx, gameID, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperr.Internal(err, "failed to load participant")
	}
	return true, nil
}
