// Package notify delivers rendered text to users.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrEmptyRecipient is returned when a notification has no user id.
var ErrEmptyRecipient = errors.New("notification recipient is empty")

// Gateway delivers one rendered message to one user. Delivery is best effort:
// a returned error never undoes state the caller already persisted.
type Gateway interface {
	Send(ctx context.Context, userID, text string) error
}

// LogGateway writes notifications to the structured log instead of delivering them.
type LogGateway struct {
	logger *slog.Logger
}

// NewLogGateway creates a LogGateway. A nil logger uses slog.Default.
func NewLogGateway(logger *slog.Logger) *LogGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogGateway{logger: logger}
}

func (g *LogGateway) Send(ctx context.Context, userID, text string) error {
	if userID == "" {
		return ErrEmptyRecipient
	}
	g.logger.InfoContext(ctx, "Notification", "user_id", userID, "text", text)
	return nil
}

type timeoutGateway struct {
	next    Gateway
	timeout time.Duration
}

// WithTimeout bounds every Send on next by timeout. A non-positive timeout returns next unchanged.
func WithTimeout(next Gateway, timeout time.Duration) Gateway {
	if timeout <= 0 {
		return next
	}
	return &timeoutGateway{next: next, timeout: timeout}
}

func (g *timeoutGateway) Send(ctx context.Context, userID, text string) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.next.Send(ctx, userID, text); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("notification to %s timed out after %s: %w", userID, g.timeout, err)
		}
		return err
	}
	return nil
}

// Observer is told the outcome of every delivery attempt.
type Observer interface {
	ObserveDelivery(err error)
}

type observedGateway struct {
	next     Gateway
	observer Observer
}

// WithObserver reports each Send result on next to observer.
func WithObserver(next Gateway, observer Observer) Gateway {
	if observer == nil {
		return next
	}
	return &observedGateway{next: next, observer: observer}
}

func (g *observedGateway) Send(ctx context.Context, userID, text string) error {
	err := g.next.Send(ctx, userID, text)
	g.observer.ObserveDelivery(err)
	return err
}
