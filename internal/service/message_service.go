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

// MessageService routes anonymous messages between matched participants.
type MessageService struct {
	store    storage.Store
	notifier *Notifier
	now      func() time.Time
}

// NewMessageService creates a MessageService.
func NewMessageService(store storage.Store, notifier *Notifier, now func() time.Time) *MessageService {
	return &MessageService{store: store, notifier: notifier, now: now}
}

// ResolveCounterpart returns userID's receiver if they are a giver in gameID,
// otherwise the giver whose receiver is userID.
func (s *MessageService) ResolveCounterpart(ctx context.Context, gameID, userID string) (string, error) {
	return s.Counterpart(ctx, gameID, userID, models.CounterpartAny)
}

// Counterpart resolves the user on the given side of userID's match.
func (s *MessageService) Counterpart(ctx context.Context, gameID, userID string, role models.CounterpartRole) (string, error) {
	if role != models.CounterpartSanta {
		p, err := s.store.GetParticipant(ctx, gameID, userID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return "", apperr.Internal(err, "failed to load participant")
		}
		if err == nil && p.Drawn() {
			return p.AssignedTo, nil
		}
		if role == models.CounterpartReceiver {
			return "", apperr.NotFound("user %s has no receiver in game %s", userID, gameID).With(apperr.ReasonNoCounterpart)
		}
	}

	giver, err := s.store.FindGiver(ctx, gameID, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return "", apperr.NotFound("no counterpart for user %s in game %s", userID, gameID).With(apperr.ReasonNoCounterpart)
	}
	if err != nil {
		return "", apperr.Internal(err, "failed to resolve counterpart")
	}
	return giver.UserID, nil
}

// SendMessage stores an anonymous message for the sender's counterpart and tries to deliver it.
// A delivery failure leaves the message stored and unread.
func (s *MessageService) SendMessage(ctx context.Context, gameID, fromUserID, text string) (*models.AnonymousMessage, error) {
	return s.SendMessageTo(ctx, gameID, fromUserID, models.CounterpartAny, text)
}

// SendMessageTo is SendMessage addressed to one side of the sender's match.
func (s *MessageService) SendMessageTo(ctx context.Context, gameID, fromUserID string, role models.CounterpartRole, text string) (*models.AnonymousMessage, error) {
	slog.Info("SendMessage request received", "game_id", gameID, "user_id", fromUserID, "role", role)

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("message text is required").With(apperr.ReasonMissingValue)
	}

	to, err := s.Counterpart(ctx, gameID, fromUserID, role)
	if err != nil {
		return nil, err
	}
	game, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		return nil, lookupErr(err, "game", gameID)
	}

	msg := &models.AnonymousMessage{
		GameID:     gameID,
		FromUserID: fromUserID,
		ToUserID:   to,
		Text:       text,
		SentAt:     s.now().UTC(),
		GameName:   game.Name,
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, apperr.Internal(err, "failed to store message")
	}

	slog.Info("Message stored", "game_id", gameID, "message_id", msg.ID)

	if err := s.notifier.Notify(ctx, to, render.MessageNotice, game.Name, text); err != nil {
		return msg, err
	}
	return msg, nil
}

// ListUnread returns userID's unread messages, newest first, and marks them read.
func (s *MessageService) ListUnread(ctx context.Context, userID string) ([]models.AnonymousMessage, error) {
	msgs, err := s.store.ListUnreadAndMarkRead(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list messages for %s", userID)
	}
	return msgs, nil
}

// ListCounterpartGames returns the games where userID can send an anonymous message.
func (s *MessageService) ListCounterpartGames(ctx context.Context, userID string) ([]models.CounterpartGame, error) {
	games, err := s.store.ListCounterpartGames(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list counterpart games for %s", userID)
	}
	return games, nil
}
