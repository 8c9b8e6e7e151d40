package models

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// GiftConfirmation tracks one user's sent/received/rating state in a game.
type GiftConfirmation struct {
	ID         string
	GameID     string
	UserID     string
	Sent       bool
	Received   bool
	SentAt     *time.Time
	ReceivedAt *time.Time

	// Rating is 0 when not rated, otherwise MinRating..MaxRating.
	Rating   int
	Feedback *string
}

// GiftStatus is one row of the per-game status aggregate.
type GiftStatus struct {
	UserID      string
	DisplayName string
	Sent        bool
	Received    bool
}
