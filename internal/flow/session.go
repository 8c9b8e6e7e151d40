// Package flow runs the multi-step conversations a user goes through:
// registration, game creation, joining, anonymous messages, and rating.
package flow

import (
	"sync"
	"time"

	"github.com/mmynk/secretsanta/internal/models"
	"github.com/mmynk/secretsanta/internal/render"
)

// Kind names a flow.
type Kind string

const (
	KindRegistration     Kind = "registration"
	KindGameCreation     Kind = "game_creation"
	KindGameJoin         Kind = "game_join"
	KindAnonymousMessage Kind = "anonymous_message"
	KindRating           Kind = "rating"
)

// State is the input a session is waiting for.
type State string

const (
	AwaitingName          State = "awaiting_name"
	AwaitingWishes        State = "awaiting_wishes"
	AwaitingBudget        State = "awaiting_budget"
	AwaitingDate          State = "awaiting_date"
	AwaitingSelection     State = "awaiting_selection"
	AwaitingGameSelection State = "awaiting_game_selection"
	AwaitingText          State = "awaiting_text"
	AwaitingScore         State = "awaiting_score"
	AwaitingFeedback      State = "awaiting_feedback"
)

// Option is one choice offered to the user. The label is rendered from
// LabelKey and LabelArgs, or is Label verbatim when LabelKey is empty.
type Option struct {
	Value     string
	Label     string
	LabelKey  render.Key
	LabelArgs []any

	gameID string
	role   models.CounterpartRole
}

// Fields are the values collected so far.
type Fields struct {
	Name    string
	Wishes  string
	Budget  string
	GameID  string
	Role    models.CounterpartRole
	Score   int
	Options []Option
}

// Session is one user's in-progress flow.
type Session struct {
	UserID    string
	Kind      Kind
	State     State
	Fields    Fields
	StartedAt time.Time
}

// SessionStore keeps at most one session per user in memory.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionStore creates an empty SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Get returns a copy of userID's session.
func (s *SessionStore) Get(userID string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return Session{}, false
	}
	return *sess, true
}

// Put stores sess, replacing any session the user already had.
func (s *SessionStore) Put(sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.UserID] = &sess
}

// Delete discards userID's session and reports whether one existed.
func (s *SessionStore) Delete(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[userID]
	delete(s.sessions, userID)
	return ok
}

// Len returns the number of open sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
