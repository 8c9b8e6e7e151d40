package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/mmynk/secretsanta/internal/apperr"
	"github.com/mmynk/secretsanta/internal/draw"
)

// stuckShuffler leaves every slice in place, so no attempt is ever accepted.
type stuckShuffler struct{}

func (stuckShuffler) Shuffle(n int, swap func(i, j int)) {}

func assignmentsOf(t *testing.T, env *testEnv, gameID string) map[string]string {
	t.Helper()
	participants, err := env.store.ListParticipants(context.Background(), gameID)
	if err != nil {
		t.Fatalf("ListParticipants failed: %v", err)
	}
	out := make(map[string]string, len(participants))
	for _, p := range participants {
		out[p.UserID] = p.AssignedTo
	}
	return out
}

func TestDraw(t *testing.T) {
	ctx := context.Background()

	t.Run("fewer than three participants", func(t *testing.T) {
		env := newTestEnv(t)
		game := env.game(t, "org", "u1")

		_, err := env.svc.Assignments.Draw(ctx, game.ID, "org")
		if !apperr.Is(err, apperr.KindState) {
			t.Fatalf("expected StateError, got %v", err)
		}
		for user, to := range assignmentsOf(t, env, game.ID) {
			if to != "" {
				t.Errorf("%s assigned after failed draw", user)
			}
		}
	})

	t.Run("non-organizer is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		game := env.game(t, "org", "u1", "u2")

		_, err := env.svc.Assignments.Draw(ctx, game.ID, "u1")
		if !apperr.Is(err, apperr.KindPermission) {
			t.Errorf("expected PermissionError, got %v", err)
		}
	})

	t.Run("derangement over participants", func(t *testing.T) {
		for n := 3; n <= 8; n++ {
			env := newTestEnv(t)
			members := make([]string, n-1)
			for i := range members {
				members[i] = fmt.Sprintf("u%d", i)
			}
			game := env.game(t, "org", members...)
			env.gateway.reset()

			assignments, err := env.svc.Assignments.Draw(ctx, game.ID, "org")
			if err != nil {
				t.Fatalf("n=%d: Draw failed: %v", n, err)
			}
			if len(assignments) != n {
				t.Fatalf("n=%d: got %d assignments", n, len(assignments))
			}

			stored := assignmentsOf(t, env, game.ID)
			ids := make([]string, 0, n)
			for user := range stored {
				ids = append(ids, user)
			}
			if err := draw.Validate(ids, stored); err != nil {
				t.Errorf("n=%d: stored assignment invalid: %v", n, err)
			}

			for _, a := range assignments {
				notes := env.gateway.to(a.GiverID)
				if len(notes) != 1 {
					t.Errorf("giver %s got %d notifications", a.GiverID, len(notes))
					continue
				}
				containsAll(t, notes[0], "Holiday", a.ReceiverName, a.ReceiverName+" wants socks", "20-30", "25.12.2026")
			}
		}
	})

	t.Run("second draw fails until reset", func(t *testing.T) {
		env := newTestEnv(t)
		game := env.game(t, "org", "u1", "u2")

		if _, err := env.svc.Assignments.Draw(ctx, game.ID, "org"); err != nil {
			t.Fatalf("first Draw failed: %v", err)
		}
		before := assignmentsOf(t, env, game.ID)

		if _, err := env.svc.Assignments.Draw(ctx, game.ID, "org"); !apperr.Is(err, apperr.KindState) {
			t.Fatalf("expected StateError on second draw, got %v", err)
		}

		if _, err := env.svc.Assignments.ResetDraw(ctx, game.ID, "u1"); !apperr.Is(err, apperr.KindPermission) {
			t.Fatalf("expected PermissionError on reset by participant, got %v", err)
		}
		after := assignmentsOf(t, env, game.ID)
		for user, to := range before {
			if after[user] != to {
				t.Errorf("assignment of %s changed by rejected reset", user)
			}
		}

		cleared, err := env.svc.Assignments.ResetDraw(ctx, game.ID, "org")
		if err != nil {
			t.Fatalf("ResetDraw failed: %v", err)
		}
		if cleared != 3 {
			t.Errorf("cleared %d, want 3", cleared)
		}

		if _, err := env.svc.Assignments.Draw(ctx, game.ID, "org"); err != nil {
			t.Fatalf("Draw after reset failed: %v", err)
		}
	})

	t.Run("exhausted attempts leave nothing assigned", func(t *testing.T) {
		env := newTestEnvWithRand(t, stuckShuffler{})
		game := env.game(t, "org", "u1", "u2")

		_, err := env.svc.Assignments.Draw(ctx, game.ID, "org")
		if !apperr.Is(err, apperr.KindDrawExhausted) {
			t.Fatalf("expected DrawExhaustedError, got %v", err)
		}
		for user, to := range assignmentsOf(t, env, game.ID) {
			if to != "" {
				t.Errorf("%s assigned after exhausted draw", user)
			}
		}
	})

	t.Run("concurrent draws assign once", func(t *testing.T) {
		env := newTestEnv(t)
		game := env.game(t, "org", "u1", "u2", "u3")

		var wg sync.WaitGroup
		var mu sync.Mutex
		succeeded, rejected := 0, 0
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := env.svc.Assignments.Draw(ctx, game.ID, "org")
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					succeeded++
				case apperr.Is(err, apperr.KindState):
					rejected++
				default:
					t.Errorf("unexpected error %v", err)
				}
			}()
		}
		wg.Wait()

		if succeeded != 1 || rejected != 7 {
			t.Errorf("succeeded=%d rejected=%d, want 1/7", succeeded, rejected)
		}
	})

	t.Run("giver delivery failure keeps the draw", func(t *testing.T) {
		env := newTestEnv(t)
		game := env.game(t, "org", "u1", "u2")
		env.gateway.fail("u1")

		assignments, err := env.svc.Assignments.Draw(ctx, game.ID, "org")
		if !apperr.Is(err, apperr.KindDelivery) {
			t.Fatalf("expected DeliveryError, got %v", err)
		}
		if len(assignments) != 3 {
			t.Errorf("expected assignments despite delivery failure, got %d", len(assignments))
		}
		if assignmentsOf(t, env, game.ID)["u1"] == "" {
			t.Error("draw rolled back after delivery failure")
		}
	})
}
