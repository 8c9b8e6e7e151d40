package models

import "time"

// AnonymousMessage is a message between matched participants. The recipient never sees FromUserID.
type AnonymousMessage struct {
	ID         string
	GameID     string
	FromUserID string
	ToUserID   string
	Text       string
	IsRead     bool
	SentAt     time.Time

	// GameName is populated on listing.
	GameName string
}

// CounterpartRole selects which side of a user's match a message goes to.
type CounterpartRole string

const (
	// CounterpartAny prefers the user's receiver and falls back to their giver.
	CounterpartAny CounterpartRole = ""
	// CounterpartReceiver is the person the user gives a gift to.
	CounterpartReceiver CounterpartRole = "receiver"
	// CounterpartSanta is the person giving the user a gift.
	CounterpartSanta CounterpartRole = "santa"
)
