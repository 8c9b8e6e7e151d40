package service

import (
	"context"
	"testing"
	"time"

	"github.com/mmynk/secretsanta/internal/apperr"
	"github.com/mmynk/secretsanta/internal/models"
)

func drawnGame(t *testing.T, env *testEnv) (gameID string, pairs map[string]string) {
	t.Helper()
	game := env.game(t, "org", "u1", "u2")
	assignments, err := env.svc.Assignments.Draw(context.Background(), game.ID, "org")
	if err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	pairs = make(map[string]string, len(assignments))
	for _, a := range assignments {
		pairs[a.GiverID] = a.ReceiverID
	}
	env.gateway.reset()
	return game.ID, pairs
}

func TestResolveCounterpart(t *testing.T) {
	ctx := context.Background()

	t.Run("symmetric for a matched pair", func(t *testing.T) {
		env := newTestEnv(t)
		gameID, pairs := drawnGame(t, env)

		for giver, receiver := range pairs {
			got, err := env.svc.Messages.ResolveCounterpart(ctx, gameID, giver)
			if err != nil {
				t.Fatalf("ResolveCounterpart(%s) failed: %v", giver, err)
			}
			if got != receiver {
				t.Errorf("giver %s resolved to %s, want %s", giver, got, receiver)
			}

			got, err = env.svc.Messages.Counterpart(ctx, gameID, giver, models.CounterpartReceiver)
			if err != nil || got != receiver {
				t.Errorf("giver %s -> receiver = %s, %v; want %s", giver, got, err, receiver)
			}
			got, err = env.svc.Messages.Counterpart(ctx, gameID, receiver, models.CounterpartSanta)
			if err != nil || got != giver {
				t.Errorf("receiver %s -> santa = %s, %v; want %s", receiver, got, err, giver)
			}
		}
	})

	t.Run("not drawn is not found", func(t *testing.T) {
		env := newTestEnv(t)
		game := env.game(t, "org", "u1", "u2")
		_, err := env.svc.Messages.ResolveCounterpart(ctx, game.ID, "u1")
		if !apperr.Is(err, apperr.KindNotFound) {
			t.Errorf("expected NotFoundError, got %v", err)
		}
	})

	t.Run("outsider is not found", func(t *testing.T) {
		env := newTestEnv(t)
		gameID, _ := drawnGame(t, env)
		_, err := env.svc.Messages.ResolveCounterpart(ctx, gameID, "stranger")
		if !apperr.Is(err, apperr.KindNotFound) {
			t.Errorf("expected NotFoundError, got %v", err)
		}
	})
}

func TestSendMessage(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	gameID, pairs := drawnGame(t, env)
	receiver := pairs["org"]

	t.Run("giver to receiver and back", func(t *testing.T) {
		if _, err := env.svc.Messages.SendMessage(ctx, gameID, "org", "What size are you?"); err != nil {
			t.Fatalf("SendMessage failed: %v", err)
		}
		notes := env.gateway.to(receiver)
		if len(notes) != 1 {
			t.Fatalf("receiver got %d notifications", len(notes))
		}
		containsAll(t, notes[0], "Holiday", "What size are you?")

		msg, err := env.svc.Messages.SendMessageTo(ctx, gameID, receiver, models.CounterpartSanta, "Medium, thanks")
		if err != nil {
			t.Fatalf("reply failed: %v", err)
		}
		if msg.ToUserID != "org" {
			t.Errorf("reply routed to %s, want org", msg.ToUserID)
		}
		notes = env.gateway.to("org")
		if len(notes) != 1 {
			t.Fatalf("org got %d notifications", len(notes))
		}
		containsAll(t, notes[0], "Medium, thanks")
	})

	t.Run("empty text is a validation error", func(t *testing.T) {
		_, err := env.svc.Messages.SendMessage(ctx, gameID, "org", "   ")
		if !apperr.Is(err, apperr.KindValidation) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})

	t.Run("delivery failure keeps message unread", func(t *testing.T) {
		env.svc.Messages.ListUnread(ctx, receiver)
		env.gateway.fail(receiver)

		msg, err := env.svc.Messages.SendMessage(ctx, gameID, "org", "Still there?")
		if !apperr.Is(err, apperr.KindDelivery) {
			t.Fatalf("expected DeliveryError, got %v", err)
		}
		if msg == nil || msg.ID == "" {
			t.Fatal("expected stored message")
		}

		unread, err := env.svc.Messages.ListUnread(ctx, receiver)
		if err != nil {
			t.Fatalf("ListUnread failed: %v", err)
		}
		if len(unread) != 1 || unread[0].Text != "Still there?" {
			t.Errorf("unexpected unread messages %+v", unread)
		}
	})
}

func TestListUnread(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	gameID, _ := drawnGame(t, env)
	receiver, _ := env.svc.Messages.ResolveCounterpart(ctx, gameID, "org")

	for _, text := range []string{"one", "two", "three"} {
		if _, err := env.svc.Messages.SendMessage(ctx, gameID, "org", text); err != nil {
			t.Fatalf("SendMessage failed: %v", err)
		}
		env.now = env.now.Add(time.Minute)
	}

	msgs, err := env.svc.Messages.ListUnread(ctx, receiver)
	if err != nil {
		t.Fatalf("ListUnread failed: %v", err)
	}
	if len(msgs) != 3 || msgs[0].Text != "three" || msgs[2].Text != "one" {
		t.Fatalf("expected newest first, got %+v", msgs)
	}
	for _, m := range msgs {
		if !m.IsRead {
			t.Errorf("message %s not marked read", m.ID)
		}
	}

	again, _ := env.svc.Messages.ListUnread(ctx, receiver)
	if len(again) != 0 {
		t.Errorf("messages returned twice: %+v", again)
	}
}

func TestListCounterpartGames(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	gameID, _ := drawnGame(t, env)

	games, err := env.svc.Messages.ListCounterpartGames(ctx, "u1")
	if err != nil {
		t.Fatalf("ListCounterpartGames failed: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("expected giver and receiver entries, got %+v", games)
	}
	for _, g := range games {
		if g.GameID != gameID {
			t.Errorf("unexpected game %s", g.GameID)
		}
	}
}
