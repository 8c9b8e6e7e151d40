package models

import "time"

// GameStatus is the lifecycle status of a game.
type GameStatus string

const (
	GameActive GameStatus = "active"
	GameClosed GameStatus = "closed"
)

// DateLayout is the storage format for event dates.
const DateLayout = "2006-01-02"

// Game represents one gift exchange.
type Game struct {
	// ID is the unique identifier for the game (UUID format).
	ID string

	// Name is the display name (e.g., "Office Party").
	Name string

	// OrganizerID is the user who created the game and may draw or reset it.
	OrganizerID string

	// Budget is free text such as "20-30".
	Budget string

	// EventDate is the exchange date, at UTC midnight.
	EventDate time.Time

	Status    GameStatus
	CreatedAt time.Time
}

// Participant is a (game, user) membership. AssignedTo is empty until a draw succeeds
// and never equals UserID.
type Participant struct {
	ID         string
	GameID     string
	UserID     string
	AssignedTo string
}

// Drawn reports whether this participant has a receiver.
func (p *Participant) Drawn() bool {
	return p.AssignedTo != ""
}

// ParticipantDetail is a participant joined with the user's public profile.
type ParticipantDetail struct {
	Participant
	DisplayName string
	Wishes      string
}

// GameSummary is a game listing row.
type GameSummary struct {
	Game
	ParticipantCount int
	Drawn            bool
}

// CounterpartGame is a game where a user has a resolvable message counterpart.
type CounterpartGame struct {
	GameID   string
	GameName string
	// IsGiver is true when the counterpart is the user's receiver.
	IsGiver bool
}

// Role returns which counterpart this entry addresses.
func (c CounterpartGame) Role() CounterpartRole {
	if c.IsGiver {
		return CounterpartReceiver
	}
	return CounterpartSanta
}

// Assignment is one giver -> receiver pair produced by a draw.
type Assignment struct {
	GiverID      string
	ReceiverID   string
	ReceiverName string
}
