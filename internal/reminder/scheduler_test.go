package reminder

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mmynk/secretsanta/internal/models"
	"github.com/mmynk/secretsanta/internal/render"
	"github.com/mmynk/secretsanta/internal/service"
	"github.com/mmynk/secretsanta/internal/storage/sqlite"
)

type captureGateway struct {
	mu      sync.Mutex
	texts   map[string][]string
	failFor map[string]bool
}

func newCaptureGateway() *captureGateway {
	return &captureGateway{texts: map[string][]string{}, failFor: map[string]bool{}}
}

func (g *captureGateway) Send(ctx context.Context, userID, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failFor[userID] {
		return errors.New("unreachable")
	}
	g.texts[userID] = append(g.texts[userID], text)
	return nil
}

func (g *captureGateway) total() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, texts := range g.texts {
		n += len(texts)
	}
	return n
}

type tickObserver struct {
	mu        sync.Mutex
	reminders int
	ticks     int
}

func (o *tickObserver) ObserveReminder(reminderType string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reminders++
}

func (o *tickObserver) ObserveTick(d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ticks++
}

type fixture struct {
	store     *sqlite.SQLiteStore
	svc       *service.Services
	gateway   *captureGateway
	renderer  *render.Renderer
	scheduler *Scheduler
	observer  *tickObserver
	game      *models.Game
}

var moscow = time.FixedZone("MSK", 3*60*60)

// setupFixture creates a three-person game on 25.12.2026.
func setupFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

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

	gateway := newCaptureGateway()
	svc := service.New(service.Deps{
		Store:    store,
		Gateway:  newCaptureGateway(),
		Renderer: renderer,
	})

	for _, u := range []string{"org", "alice", "bob"} {
		if _, err := svc.Registry.Register(ctx, u, strings.ToUpper(u), "socks"); err != nil {
			t.Fatalf("Register(%s) failed: %v", u, err)
		}
	}
	if _, err := svc.Registry.SetLanguage(ctx, "alice", "en"); err != nil {
		t.Fatalf("SetLanguage failed: %v", err)
	}
	game, err := svc.Games.CreateGame(ctx, "org", "Holiday", "20-30", "25.12.2026")
	if err != nil {
		t.Fatalf("CreateGame failed: %v", err)
	}
	for _, u := range []string{"alice", "bob"} {
		if _, err := svc.Games.JoinGame(ctx, game.ID, u); err != nil {
			t.Fatalf("JoinGame(%s) failed: %v", u, err)
		}
	}

	observer := &tickObserver{}
	return &fixture{
		store:     store,
		svc:       svc,
		gateway:   gateway,
		renderer:  renderer,
		scheduler: NewScheduler(store, gateway, renderer, moscow, time.Minute, WithObserver(observer)),
		observer:  observer,
		game:      game,
	}
}

// wantAllSent checks that every sentinel of the fixture game was finished.
func wantAllSent(t *testing.T, f *fixture) {
	t.Helper()
	records, err := f.store.ListReminders(context.Background(), f.game.ID)
	if err != nil {
		t.Fatalf("ListReminders failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	for _, r := range records {
		if !r.Sent {
			t.Errorf("record for %s not marked sent", r.UserID)
		}
	}
}

func TestTick(t *testing.T) {
	ctx := context.Background()

	t.Run("three days before is sent once", func(t *testing.T) {
		f := setupFixture(t)
		now := time.Date(2026, 12, 22, 10, 0, 0, 0, moscow)

		report, err := f.scheduler.Tick(ctx, now)
		if err != nil {
			t.Fatalf("Tick failed: %v", err)
		}
		if report.Claimed != 3 || report.Delivered != 3 {
			t.Errorf("report = %+v, want 3 claimed and delivered", report)
		}

		report, err = f.scheduler.Tick(ctx, now.Add(time.Hour))
		if err != nil {
			t.Fatalf("second Tick failed: %v", err)
		}
		if report.Claimed != 0 {
			t.Errorf("second report = %+v, want nothing claimed", report)
		}
		if got := f.gateway.total(); got != 3 {
			t.Errorf("deliveries = %d, want 3", got)
		}

		records, err := f.store.ListReminders(ctx, f.game.ID)
		if err != nil {
			t.Fatalf("ListReminders failed: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("records = %d, want 3", len(records))
		}
		for _, r := range records {
			if r.Type != models.ReminderThreeDays || !r.Sent {
				t.Errorf("record = %+v", r)
			}
		}

		alice := f.gateway.texts["alice"]
		if len(alice) != 1 || !strings.Contains(alice[0], "Holiday") || !strings.Contains(alice[0], "25.12.2026") {
			t.Errorf("alice got %q", alice)
		}
		if f.observer.ticks != 2 || f.observer.reminders != 3 {
			t.Errorf("observer = %d ticks, %d reminders", f.observer.ticks, f.observer.reminders)
		}
	})

	t.Run("one day before is a separate sentinel", func(t *testing.T) {
		f := setupFixture(t)
		if _, err := f.scheduler.Tick(ctx, time.Date(2026, 12, 22, 10, 0, 0, 0, moscow)); err != nil {
			t.Fatalf("Tick failed: %v", err)
		}
		report, err := f.scheduler.Tick(ctx, time.Date(2026, 12, 24, 10, 0, 0, 0, moscow))
		if err != nil {
			t.Fatalf("Tick failed: %v", err)
		}
		if report.Delivered != 3 {
			t.Errorf("report = %+v, want 3 delivered", report)
		}
		if got := len(f.gateway.texts["bob"]); got != 2 {
			t.Errorf("bob got %d reminders, want 2", got)
		}
	})

	t.Run("today is computed in the configured location", func(t *testing.T) {
		f := setupFixture(t)
		// 22:30 UTC on the 21st is already the 22nd in Moscow.
		report, err := f.scheduler.Tick(ctx, time.Date(2026, 12, 21, 22, 30, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("Tick failed: %v", err)
		}
		if report.Claimed != 3 {
			t.Errorf("report = %+v, want 3 claimed", report)
		}
	})

	t.Run("nothing due", func(t *testing.T) {
		f := setupFixture(t)
		report, err := f.scheduler.Tick(ctx, time.Date(2026, 12, 20, 10, 0, 0, 0, moscow))
		if err != nil {
			t.Fatalf("Tick failed: %v", err)
		}
		if report != (Report{}) {
			t.Errorf("report = %+v, want empty", report)
		}
	})

	t.Run("muted user gets a sentinel but no message", func(t *testing.T) {
		f := setupFixture(t)
		if err := f.svc.Registry.SetRemindersEnabled(ctx, "bob", false); err != nil {
			t.Fatalf("SetRemindersEnabled failed: %v", err)
		}

		report, err := f.scheduler.Tick(ctx, time.Date(2026, 12, 22, 10, 0, 0, 0, moscow))
		if err != nil {
			t.Fatalf("Tick failed: %v", err)
		}
		if report.Claimed != 3 || report.Muted != 1 || report.Delivered != 2 {
			t.Errorf("report = %+v", report)
		}
		if len(f.gateway.texts["bob"]) != 0 {
			t.Errorf("bob got %q", f.gateway.texts["bob"])
		}
		wantAllSent(t, f)
	})

	t.Run("failed delivery is not retried", func(t *testing.T) {
		f := setupFixture(t)
		f.gateway.failFor["alice"] = true
		now := time.Date(2026, 12, 22, 10, 0, 0, 0, moscow)

		report, err := f.scheduler.Tick(ctx, now)
		if err != nil {
			t.Fatalf("Tick failed: %v", err)
		}
		if report.Failed != 1 || report.Delivered != 2 {
			t.Errorf("report = %+v", report)
		}

		f.gateway.failFor["alice"] = false
		report, err = f.scheduler.Tick(ctx, now)
		if err != nil {
			t.Fatalf("Tick failed: %v", err)
		}
		if report.Claimed != 0 || len(f.gateway.texts["alice"]) != 0 {
			t.Errorf("report = %+v, alice got %q", report, f.gateway.texts["alice"])
		}

		wantAllSent(t, f)
	})

	t.Run("concurrent ticks deliver once", func(t *testing.T) {
		f := setupFixture(t)
		now := time.Date(2026, 12, 22, 10, 0, 0, 0, moscow)

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := f.scheduler.Tick(ctx, now); err != nil {
					t.Errorf("Tick failed: %v", err)
				}
			}()
		}
		wg.Wait()

		if got := f.gateway.total(); got != 3 {
			t.Errorf("deliveries = %d, want 3", got)
		}
	})
}

func TestRunStopsOnCancel(t *testing.T) {
	f := setupFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	scheduler := NewScheduler(f.store, f.gateway, f.renderer, moscow, time.Minute,
		WithClock(func() time.Time { return time.Date(2026, 12, 22, 10, 0, 0, 0, moscow) }))

	done := make(chan error, 1)
	go func() { done <- scheduler.Run(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for f.gateway.total() < 3 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	if got := f.gateway.total(); got != 3 {
		t.Errorf("deliveries = %d, want 3", got)
	}
}
