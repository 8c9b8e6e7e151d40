package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/mmynk/secretsanta/internal/apperr"
	"github.com/mmynk/secretsanta/internal/models"
	"github.com/mmynk/secretsanta/internal/render"
	"github.com/mmynk/secretsanta/internal/storage"
)

// GiftService tracks gift sending, receipt, and rating.
type GiftService struct {
	store    storage.Store
	notifier *Notifier
	now      func() time.Time
}

// NewGiftService creates a GiftService.
func NewGiftService(store storage.Store, notifier *Notifier, now func() time.Time) *GiftService {
	return &GiftService{store: store, notifier: notifier, now: now}
}

func (s *GiftService) participant(ctx context.Context, gameID, userID string) (*models.Game, *models.Participant, error) {
	game, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		return nil, nil, lookupErr(err, "game", gameID)
	}
	p, err := s.store.GetParticipant(ctx, gameID, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, apperr.NotFound("user %s is not a participant of game %s", userID, gameID).With(apperr.ReasonNotParticipant)
	}
	if err != nil {
		return nil, nil, apperr.Internal(err, "failed to load participant")
	}
	return game, p, nil
}

// ConfirmSent records that userID sent their gift and notifies the receiver.
func (s *GiftService) ConfirmSent(ctx context.Context, gameID, userID string) error {
	slog.Info("ConfirmSent request received", "game_id", gameID, "user_id", userID)

	game, p, err := s.participant(ctx, gameID, userID)
	if err != nil {
		return err
	}
	if !p.Drawn() {
		return apperr.State("game %s has not been drawn yet", gameID).With(apperr.ReasonNotDrawn)
	}

	if err := s.store.MarkGiftSent(ctx, gameID, userID, s.now().UTC()); err != nil {
		return apperr.Internal(err, "failed to confirm gift sent")
	}
	slog.Info("Gift sent confirmed", "game_id", gameID, "user_id", userID)

	return s.notifier.Notify(ctx, p.AssignedTo, render.GiftSentNotice, game.Name)
}

// ConfirmReceived records that userID received their gift. Rating is a separate step.
func (s *GiftService) ConfirmReceived(ctx context.Context, gameID, userID string) error {
	slog.Info("ConfirmReceived request received", "game_id", gameID, "user_id", userID)

	if _, _, err := s.participant(ctx, gameID, userID); err != nil {
		return err
	}

	if err := s.store.MarkGiftReceived(ctx, gameID, userID, s.now().UTC()); err != nil {
		return apperr.Internal(err, "failed to confirm gift received")
	}
	slog.Info("Gift received confirmed", "game_id", gameID, "user_id", userID)
	return nil
}

// SubmitRating stores a 1..5 score and optional feedback for a received gift,
// then notifies the giver.
func (s *GiftService) SubmitRating(ctx context.Context, gameID, userID string, score int, feedback *string) error {
	slog.Info("SubmitRating request received", "game_id", gameID, "user_id", userID, "score", score)

	if score < models.MinRating || score > models.MaxRating {
		return apperr.Validation("rating must be between %d and %d", models.MinRating, models.MaxRating).With(apperr.ReasonBadRating)
	}
	if feedback != nil {
		trimmed := strings.TrimSpace(*feedback)
		if trimmed == "" {
			feedback = nil
		} else {
			feedback = &trimmed
		}
	}

	if err := s.CanRate(ctx, gameID, userID); err != nil {
		return err
	}
	game, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		return lookupErr(err, "game", gameID)
	}

	err = s.store.SetRating(ctx, gameID, userID, score, feedback)
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.State("confirm receipt before rating the gift in game %s", gameID).With(apperr.ReasonNothingToRate)
	}
	if err != nil {
		return apperr.Internal(err, "failed to save rating")
	}
	slog.Info("Rating saved", "game_id", gameID, "user_id", userID, "score", score)

	giver, err := s.store.FindGiver(ctx, gameID, userID)
	if errors.Is(err, storage.ErrNotFound) {
		// The draw was reset after receipt; there is nobody to tell.
		return nil
	}
	if err != nil {
		return apperr.Delivery("giver of "+userID, err)
	}

	return s.notifier.NotifyFunc(ctx, giver.UserID, func(lang models.Language) string {
		r := s.notifier.Renderer()
		text := r.Text(lang, render.RatingNotice, render.Stars(score), score, game.Name)
		if feedback != nil {
			text += "\n" + r.Text(lang, render.RatingFeedbackLine, *feedback)
		}
		return text
	})
}

// CanRate reports a StateError unless userID has confirmed receipt in gameID.
func (s *GiftService) CanRate(ctx context.Context, gameID, userID string) error {
	if _, _, err := s.participant(ctx, gameID, userID); err != nil {
		return err
	}
	gc, err := s.store.GetGiftConfirmation(ctx, gameID, userID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return apperr.Internal(err, "failed to load gift confirmation")
	}
	if gc == nil || !gc.Received {
		return apperr.State("confirm receipt before rating the gift in game %s", gameID).With(apperr.ReasonNothingToRate)
	}
	return nil
}

// Status reports sent/received for every participant of gameID.
func (s *GiftService) Status(ctx context.Context, gameID string) ([]models.GiftStatus, error) {
	if _, err := s.store.GetGame(ctx, gameID); err != nil {
		return nil, lookupErr(err, "game", gameID)
	}
	statuses, err := s.store.ListGiftStatus(ctx, gameID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load gift status for %s", gameID)
	}
	return statuses, nil
}
