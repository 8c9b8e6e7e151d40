package service

import (
	"context"
	"testing"
	"time"

	"github.com/mmynk/secretsanta/internal/apperr"
	"github.com/mmynk/secretsanta/internal/models"
)

func TestGiftLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	gameID, pairs := drawnGame(t, env)
	receiver := pairs["org"]

	t.Run("status before any confirmation", func(t *testing.T) {
		statuses, err := env.svc.Gifts.Status(ctx, gameID)
		if err != nil {
			t.Fatalf("Status failed: %v", err)
		}
		if len(statuses) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(statuses))
		}
		for _, st := range statuses {
			if st.Sent || st.Received {
				t.Errorf("unexpected status %+v", st)
			}
		}
	})

	t.Run("confirm sent notifies receiver", func(t *testing.T) {
		if err := env.svc.Gifts.ConfirmSent(ctx, gameID, "org"); err != nil {
			t.Fatalf("ConfirmSent failed: %v", err)
		}
		notes := env.gateway.to(receiver)
		if len(notes) != 1 {
			t.Fatalf("receiver got %d notifications", len(notes))
		}
		containsAll(t, notes[0], "Holiday")
	})

	t.Run("rating before receipt is a state error", func(t *testing.T) {
		err := env.svc.Gifts.SubmitRating(ctx, gameID, receiver, 4, nil)
		if !apperr.Is(err, apperr.KindState) {
			t.Errorf("expected StateError, got %v", err)
		}
	})

	t.Run("rating out of range", func(t *testing.T) {
		for _, score := range []int{0, 6, -1} {
			err := env.svc.Gifts.SubmitRating(ctx, gameID, receiver, score, nil)
			if !apperr.Is(err, apperr.KindValidation) {
				t.Errorf("score %d: expected ValidationError, got %v", score, err)
			}
		}
	})

	t.Run("rating without feedback", func(t *testing.T) {
		if err := env.svc.Gifts.ConfirmReceived(ctx, gameID, receiver); err != nil {
			t.Fatalf("ConfirmReceived failed: %v", err)
		}
		env.gateway.reset()

		if err := env.svc.Gifts.SubmitRating(ctx, gameID, receiver, 3, nil); err != nil {
			t.Fatalf("SubmitRating failed: %v", err)
		}
		gc, err := env.store.GetGiftConfirmation(ctx, gameID, receiver)
		if err != nil {
			t.Fatalf("GetGiftConfirmation failed: %v", err)
		}
		if gc.Rating != 3 || gc.Feedback != nil {
			t.Errorf("unexpected confirmation %+v", gc)
		}
		notes := env.gateway.to("org")
		if len(notes) != 1 {
			t.Fatalf("giver got %d notifications", len(notes))
		}
		containsAll(t, notes[0], "⭐⭐⭐", "(3/5)")
	})

	t.Run("non participant is not found", func(t *testing.T) {
		err := env.svc.Gifts.ConfirmReceived(ctx, gameID, "stranger")
		if !apperr.Is(err, apperr.KindNotFound) {
			t.Errorf("expected NotFoundError, got %v", err)
		}
	})

	t.Run("status reflects confirmations", func(t *testing.T) {
		statuses, _ := env.svc.Gifts.Status(ctx, gameID)
		for _, st := range statuses {
			wantSent := st.UserID == "org"
			wantReceived := st.UserID == receiver
			if st.Sent != wantSent || st.Received != wantReceived {
				t.Errorf("status %+v, want sent=%v received=%v", st, wantSent, wantReceived)
			}
		}
	})
}

func TestConfirmSentBeforeDraw(t *testing.T) {
	env := newTestEnv(t)
	game := env.game(t, "org", "u1", "u2")

	err := env.svc.Gifts.ConfirmSent(context.Background(), game.ID, "u1")
	if !apperr.Is(err, apperr.KindState) {
		t.Errorf("expected StateError, got %v", err)
	}
}

// TestHolidayScenario walks one game from creation to rating.
func TestHolidayScenario(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.register(t, "O", "Olga")
	env.register(t, "U1", "Ivan")
	env.register(t, "U2", "Maria")

	eventDate := env.now.AddDate(0, 0, 5).Format("02.01.2006")
	game, err := env.svc.Games.CreateGame(ctx, "O", "Holiday", "20-30", eventDate)
	if err != nil {
		t.Fatalf("CreateGame failed: %v", err)
	}
	for _, u := range []string{"U1", "U2"} {
		if _, err := env.svc.Games.JoinGame(ctx, game.ID, u); err != nil {
			t.Fatalf("JoinGame(%s) failed: %v", u, err)
		}
	}

	assignments, err := env.svc.Assignments.Draw(ctx, game.ID, "O")
	if err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if len(assignments) != 3 {
		t.Fatalf("expected 3 assignments, got %d", len(assignments))
	}
	receivers := map[string]bool{}
	pairs := map[string]string{}
	for _, a := range assignments {
		if a.GiverID == a.ReceiverID {
			t.Fatalf("self assignment for %s", a.GiverID)
		}
		receivers[a.ReceiverID] = true
		pairs[a.GiverID] = a.ReceiverID
	}
	if len(receivers) != 3 {
		t.Fatalf("receivers not distinct: %+v", assignments)
	}

	// U1's recipient, and that recipient's giver.
	recipient := pairs["U1"]
	giver := ""
	for g, r := range pairs {
		if r == recipient {
			giver = g
		}
	}

	if err := env.svc.Gifts.ConfirmSent(ctx, game.ID, giver); err != nil {
		t.Fatalf("ConfirmSent failed: %v", err)
	}
	env.now = env.now.Add(48 * time.Hour)
	if err := env.svc.Gifts.ConfirmReceived(ctx, game.ID, recipient); err != nil {
		t.Fatalf("ConfirmReceived failed: %v", err)
	}

	env.gateway.reset()
	feedback := "Loved it"
	if err := env.svc.Gifts.SubmitRating(ctx, game.ID, recipient, 5, &feedback); err != nil {
		t.Fatalf("SubmitRating failed: %v", err)
	}

	notes := env.gateway.to(giver)
	if len(notes) != 1 {
		t.Fatalf("giver got %d notifications, want 1", len(notes))
	}
	containsAll(t, notes[0], "5", "Loved it")

	gc, err := env.store.GetGiftConfirmation(ctx, game.ID, recipient)
	if err != nil {
		t.Fatalf("GetGiftConfirmation failed: %v", err)
	}
	if gc.Rating != models.MaxRating || gc.Feedback == nil || *gc.Feedback != "Loved it" {
		t.Errorf("unexpected confirmation %+v", gc)
	}
}
