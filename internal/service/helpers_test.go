package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mmynk/secretsanta/internal/draw"
	"github.com/mmynk/secretsanta/internal/models"
	"github.com/mmynk/secretsanta/internal/render"
	"github.com/mmynk/secretsanta/internal/storage/sqlite"
)

type delivery struct {
	UserID string
	Text   string
}

// recordingGateway stores every delivery and fails for users listed in failFor.
type recordingGateway struct {
	mu         sync.Mutex
	deliveries []delivery
	failFor    map[string]bool
}

func newRecordingGateway() *recordingGateway {
	return &recordingGateway{failFor: map[string]bool{}}
}

func (g *recordingGateway) Send(ctx context.Context, userID, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failFor[userID] {
		return errors.New("chat unreachable")
	}
	g.deliveries = append(g.deliveries, delivery{UserID: userID, Text: text})
	return nil
}

func (g *recordingGateway) fail(userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failFor[userID] = true
}

func (g *recordingGateway) to(userID string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []string
	for _, d := range g.deliveries {
		if d.UserID == userID {
			out = append(out, d.Text)
		}
	}
	return out
}

func (g *recordingGateway) reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deliveries = nil
}

type testEnv struct {
	svc     *Services
	store   *sqlite.SQLiteStore
	gateway *recordingGateway
	now     time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithRand(t, rand.New(rand.NewPCG(7, 11)))
}

func newTestEnvWithRand(t *testing.T, rng draw.Shuffler) *testEnv {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
		os.Remove(tmpFile.Name())
	})

	renderer, err := render.New(models.LanguagePrimary)
	if err != nil {
		t.Fatalf("failed to build renderer: %v", err)
	}

	env := &testEnv{
		store:   store,
		gateway: newRecordingGateway(),
		now:     time.Date(2026, 12, 20, 12, 0, 0, 0, time.UTC),
	}
	env.svc = New(Deps{
		Store:           store,
		Gateway:         env.gateway,
		Renderer:        renderer,
		DefaultLanguage: models.LanguagePrimary,
		Rand:            rng,
		Now:             func() time.Time { return env.now },
	})
	return env
}

func (e *testEnv) register(t *testing.T, userID, name string) {
	t.Helper()
	if _, err := e.svc.Registry.Register(context.Background(), userID, name, name+" wants socks"); err != nil {
		t.Fatalf("Register(%s) failed: %v", userID, err)
	}
	// English keeps assertions readable.
	if _, err := e.svc.Registry.SetLanguage(context.Background(), userID, "en"); err != nil {
		t.Fatalf("SetLanguage(%s) failed: %v", userID, err)
	}
}

// game registers organizer and members, creates a game, and joins everyone.
func (e *testEnv) game(t *testing.T, organizer string, members ...string) *models.Game {
	t.Helper()
	ctx := context.Background()
	e.register(t, organizer, strings.ToUpper(organizer))
	game, err := e.svc.Games.CreateGame(ctx, organizer, "Holiday", "20-30", "25.12.2026")
	if err != nil {
		t.Fatalf("CreateGame failed: %v", err)
	}
	for _, m := range members {
		e.register(t, m, strings.ToUpper(m))
		if _, err := e.svc.Games.JoinGame(ctx, game.ID, m); err != nil {
			t.Fatalf("JoinGame(%s) failed: %v", m, err)
		}
	}
	return game
}

func containsAll(t *testing.T, text string, fragments ...string) {
	t.Helper()
	for _, f := range fragments {
		if !strings.Contains(text, f) {
			t.Errorf("%q does not contain %q", text, f)
		}
	}
}
