// Package reminder sends the three-days-before and one-day-before event reminders.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mmynk/secretsanta/internal/models"
	"github.com/mmynk/secretsanta/internal/notify"
	"github.com/mmynk/secretsanta/internal/render"
	"github.com/mmynk/secretsanta/internal/storage"
)

// Observer receives per-reminder outcomes and tick durations.
type Observer interface {
	ObserveReminder(reminderType string, err error)
	ObserveTick(d time.Duration)
}

// Report counts what one tick did.
type Report struct {
	// Claimed is the number of sentinels written by this tick.
	Claimed int
	// Delivered is the number of reminders handed to the gateway successfully.
	Delivered int
	// Muted is the number of claimed reminders not delivered because the user disabled them.
	Muted int
	// Failed is the number of deliveries that returned an error.
	Failed int
}

// Scheduler polls for due reminders on a fixed interval.
type Scheduler struct {
	store    storage.ReminderStore
	gateway  notify.Gateway
	renderer *render.Renderer
	location *time.Location
	interval time.Duration
	observer Observer
	now      func() time.Time

	// mu serializes ticks so an overrunning tick never overlaps the next one.
	mu sync.Mutex
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithObserver reports outcomes to o.
func WithObserver(o Observer) Option {
	return func(s *Scheduler) { s.observer = o }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// NewScheduler creates a Scheduler. "Today" is evaluated in loc.
func NewScheduler(store storage.ReminderStore, gateway notify.Gateway, renderer *render.Renderer, loc *time.Location, interval time.Duration, opts ...Option) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	s := &Scheduler{
		store:    store,
		gateway:  gateway,
		renderer: renderer,
		location: loc,
		interval: interval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run ticks immediately and then every interval until ctx is cancelled.
// Tick errors are logged and do not stop the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	slog.Info("Reminder scheduler started", "interval", s.interval, "location", s.location.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.Tick(ctx, s.now()); err != nil && ctx.Err() == nil {
			slog.Error("Reminder tick failed", "error", err)
		}

		select {
		case <-ctx.Done():
			slog.Info("Reminder scheduler stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Tick sends every reminder due at now. Running it twice for the same day sends nothing the second time.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	defer func() {
		if s.observer != nil {
			s.observer.ObserveTick(time.Since(start))
		}
	}()

	local := now.In(s.location)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)

	var report Report
	var errs []error
	for _, reminderType := range models.ReminderTypes {
		target := today.AddDate(0, 0, reminderType.DaysBefore())
		if err := s.process(ctx, reminderType, target, now, &report); err != nil {
			errs = append(errs, err)
		}
	}

	if report.Claimed > 0 {
		slog.Info("Reminder tick finished",
			"claimed", report.Claimed,
			"delivered", report.Delivered,
			"muted", report.Muted,
			"failed", report.Failed)
	}
	return report, errors.Join(errs...)
}

func (s *Scheduler) process(ctx context.Context, reminderType models.ReminderType, target, now time.Time, report *Report) error {
	candidates, err := s.store.ListReminderCandidates(ctx, target, reminderType)
	if err != nil {
		return fmt.Errorf("failed to list %s candidates: %w", reminderType, err)
	}

	for _, c := range candidates {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		claimed, err := s.store.ClaimReminder(ctx, &models.ReminderRecord{
			GameID:      c.GameID,
			UserID:      c.UserID,
			Type:        reminderType,
			ScheduledAt: now.UTC(),
		})
		if err != nil {
			return fmt.Errorf("failed to claim %s reminder for %s in %s: %w", reminderType, c.UserID, c.GameID, err)
		}
		if !claimed {
			continue
		}
		report.Claimed++

		s.deliver(ctx, reminderType, c, report)

		// The sentinel is finished whatever the delivery did; it is never retried.
		if err := s.store.MarkReminderSent(ctx, c.GameID, c.UserID, reminderType); err != nil {
			return fmt.Errorf("failed to mark %s reminder sent for %s in %s: %w", reminderType, c.UserID, c.GameID, err)
		}
	}
	return nil
}

// deliver sends one claimed reminder unless the user muted reminders.
func (s *Scheduler) deliver(ctx context.Context, reminderType models.ReminderType, c models.ReminderCandidate, report *Report) {
	if !c.RemindersEnabled {
		report.Muted++
		return
	}

	text := s.renderer.Text(c.Language, render.ReminderKey(reminderType), c.GameName, render.Date(c.EventDate))
	sendErr := s.gateway.Send(ctx, c.UserID, text)
	if s.observer != nil {
		s.observer.ObserveReminder(string(reminderType), sendErr)
	}
	if sendErr != nil {
		report.Failed++
		slog.Warn("Reminder delivery failed",
			"game_id", c.GameID,
			"user_id", c.UserID,
			"type", reminderType,
			"error", sendErr)
		return
	}
	report.Delivered++
}
