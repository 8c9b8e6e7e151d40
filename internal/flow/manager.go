package flow

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/mmynk/secretsanta/internal/apperr"
	"github.com/mmynk/secretsanta/internal/keylock"
	"github.com/mmynk/secretsanta/internal/models"
	"github.com/mmynk/secretsanta/internal/render"
	"github.com/mmynk/secretsanta/internal/service"
)

// ErrNoSession is returned by Input and Skip when the user has no active flow.
var ErrNoSession error = apperr.State("no active flow")

// Result is what a flow step asks the transport to show next.
type Result struct {
	Prompt  render.Key
	Args    []any
	Options []Option

	// Done is set when the flow finished and the session was discarded.
	Done bool

	// Value is the entity created on completion, if any.
	Value any

	// Warning is a delivery failure that happened after the step was persisted.
	Warning error
}

// SessionObserver is told the open session count after every change.
type SessionObserver interface {
	SetActiveSessions(n int)
}

// Manager drives every user's flow session. Steps for one user run one at a time.
type Manager struct {
	svc      *service.Services
	sessions *SessionStore
	locks    keylock.Map
	observer SessionObserver
	now      func() time.Time
}

// NewManager creates a Manager. observer may be nil.
func NewManager(svc *service.Services, sessions *SessionStore, observer SessionObserver, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{svc: svc, sessions: sessions, observer: observer, now: now}
}

// Active returns the user's current session.
func (m *Manager) Active(userID string) (Session, bool) {
	return m.sessions.Get(userID)
}

func (m *Manager) put(sess Session) {
	m.sessions.Put(sess)
	m.observe()
}

func (m *Manager) drop(userID string) bool {
	ok := m.sessions.Delete(userID)
	m.observe()
	return ok
}

func (m *Manager) observe() {
	if m.observer != nil {
		m.observer.SetActiveSessions(m.sessions.Len())
	}
}

// start replaces any existing session with a new one.
func (m *Manager) start(userID string, kind Kind, state State, fields Fields) {
	if prev, ok := m.sessions.Get(userID); ok {
		slog.Info("Flow replaced", "user_id", userID, "previous", prev.Kind, "next", kind)
	}
	m.put(Session{
		UserID:    userID,
		Kind:      kind,
		State:     state,
		Fields:    fields,
		StartedAt: m.now(),
	})
}

// StartRegistration begins registration. Already registered users get a StateError.
func (m *Manager) StartRegistration(ctx context.Context, userID string) (Result, error) {
	unlock := m.locks.Lock(userID)
	defer unlock()

	registered, err := m.svc.Registry.IsRegistered(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	if registered {
		return Result{}, apperr.State("user %s is already registered", userID).With(apperr.ReasonAlreadyRegistered)
	}

	m.start(userID, KindRegistration, AwaitingName, Fields{})
	return Result{Prompt: render.AskName}, nil
}

// StartGameCreation begins game creation for a registered user.
func (m *Manager) StartGameCreation(ctx context.Context, userID string) (Result, error) {
	unlock := m.locks.Lock(userID)
	defer unlock()

	if err := m.requireRegistered(ctx, userID); err != nil {
		return Result{}, err
	}

	m.start(userID, KindGameCreation, AwaitingName, Fields{})
	return Result{Prompt: render.AskGameName}, nil
}

// StartGameJoin snapshots the joinable games as options. With none available
// no session is opened.
func (m *Manager) StartGameJoin(ctx context.Context, userID string) (Result, error) {
	unlock := m.locks.Lock(userID)
	defer unlock()

	if err := m.requireRegistered(ctx, userID); err != nil {
		return Result{}, err
	}

	games, err := m.svc.Games.ListJoinableGames(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	if len(games) == 0 {
		return Result{Prompt: render.NoJoinableGames, Done: true}, nil
	}

	options := make([]Option, len(games))
	for i, g := range games {
		options[i] = Option{
			Value:     g.ID,
			LabelKey:  render.JoinOption,
			LabelArgs: []any{g.Name, render.Date(g.EventDate), g.ParticipantCount},
			gameID:    g.ID,
		}
	}

	m.start(userID, KindGameJoin, AwaitingSelection, Fields{Options: options})
	return Result{Prompt: render.ChooseJoinGame, Options: options}, nil
}

// StartMessage offers the games where the user has a counterpart, once per side of the match.
func (m *Manager) StartMessage(ctx context.Context, userID string) (Result, error) {
	unlock := m.locks.Lock(userID)
	defer unlock()

	games, err := m.svc.Messages.ListCounterpartGames(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	if len(games) == 0 {
		return Result{Prompt: render.NoCounterparts, Done: true}, nil
	}

	options := make([]Option, len(games))
	for i, g := range games {
		key := render.CounterpartSanta
		if g.IsGiver {
			key = render.CounterpartReceiver
		}
		options[i] = Option{
			Value:     g.GameID + ":" + string(g.Role()),
			LabelKey:  key,
			LabelArgs: []any{g.GameName},
			gameID:    g.GameID,
			role:      g.Role(),
		}
	}

	m.start(userID, KindAnonymousMessage, AwaitingGameSelection, Fields{Options: options})
	return Result{Prompt: render.ChooseMessageGame, Options: options}, nil
}

// StartRating begins rating the gift userID received in gameID.
func (m *Manager) StartRating(ctx context.Context, userID, gameID string) (Result, error) {
	unlock := m.locks.Lock(userID)
	defer unlock()

	if err := m.svc.Gifts.CanRate(ctx, gameID, userID); err != nil {
		return Result{}, err
	}

	m.start(userID, KindRating, AwaitingScore, Fields{GameID: gameID})
	return Result{Prompt: render.AskRating, Options: scoreOptions()}, nil
}

func scoreOptions() []Option {
	options := make([]Option, 0, models.MaxRating-models.MinRating+1)
	for score := models.MinRating; score <= models.MaxRating; score++ {
		options = append(options, Option{Value: strconv.Itoa(score), Label: render.Stars(score)})
	}
	return options
}

// Cancel discards the user's session. It reports false if there was none.
func (m *Manager) Cancel(userID string) bool {
	unlock := m.locks.Lock(userID)
	defer unlock()

	ok := m.drop(userID)
	if ok {
		slog.Info("Flow cancelled", "user_id", userID)
	}
	return ok
}

// Reprompt returns the prompt for the user's current state.
func (m *Manager) Reprompt(userID string) (Result, bool) {
	sess, ok := m.sessions.Get(userID)
	if !ok {
		return Result{}, false
	}
	return promptFor(sess), true
}

func promptFor(sess Session) Result {
	switch sess.State {
	case AwaitingName:
		if sess.Kind == KindGameCreation {
			return Result{Prompt: render.AskGameName}
		}
		return Result{Prompt: render.AskName}
	case AwaitingWishes:
		return Result{Prompt: render.AskWishes, Args: []any{sess.Fields.Name}}
	case AwaitingBudget:
		return Result{Prompt: render.AskBudget}
	case AwaitingDate:
		return Result{Prompt: render.AskDate}
	case AwaitingSelection:
		return Result{Prompt: render.ChooseJoinGame, Options: sess.Fields.Options}
	case AwaitingGameSelection:
		return Result{Prompt: render.ChooseMessageGame, Options: sess.Fields.Options}
	case AwaitingText:
		return Result{Prompt: render.AskMessageText}
	case AwaitingScore:
		return Result{Prompt: render.AskRating, Options: scoreOptions()}
	case AwaitingFeedback:
		return Result{Prompt: render.AskFeedback}
	default:
		return Result{Prompt: render.NoActiveFlow}
	}
}

// Input feeds free text to the user's current step. Validation errors and
// unknown selections keep the session in place; any other error ends it.
func (m *Manager) Input(ctx context.Context, userID, text string) (Result, error) {
	unlock := m.locks.Lock(userID)
	defer unlock()

	sess, ok := m.sessions.Get(userID)
	if !ok {
		return Result{}, ErrNoSession
	}

	res, next, err := m.step(ctx, sess, text)
	return m.finish(sess, res, next, err)
}

// Skip answers the optional feedback step without text.
func (m *Manager) Skip(ctx context.Context, userID string) (Result, error) {
	unlock := m.locks.Lock(userID)
	defer unlock()

	sess, ok := m.sessions.Get(userID)
	if !ok {
		return Result{}, ErrNoSession
	}
	if sess.State != AwaitingFeedback {
		return Result{}, apperr.Validation("nothing to skip at this step").With(apperr.ReasonNothingToSkip)
	}

	res, err := m.submitRating(ctx, sess, nil)
	return m.finish(sess, res, nil, err)
}

// finish stores next, or drops the session when the step completed or failed terminally.
func (m *Manager) finish(sess Session, res Result, next *Session, err error) (Result, error) {
	if err != nil {
		if keepsSession(err) {
			return Result{}, err
		}
		m.drop(sess.UserID)
		return Result{Done: true}, err
	}
	if res.Done {
		m.drop(sess.UserID)
		slog.Info("Flow completed", "user_id", sess.UserID, "kind", sess.Kind)
		return res, nil
	}
	if next != nil {
		m.put(*next)
	}
	return res, nil
}

func keepsSession(err error) bool {
	kind := apperr.KindOf(err)
	return kind == apperr.KindValidation || kind == apperr.KindNotFound
}

// step computes the result of one input. next is the updated session when the flow continues.
func (m *Manager) step(ctx context.Context, sess Session, text string) (Result, *Session, error) {
	text = strings.TrimSpace(text)

	switch sess.State {
	case AwaitingName:
		if text == "" {
			return Result{}, nil, apperr.Validation("a name is required").With(apperr.ReasonMissingValue)
		}
		sess.Fields.Name = text
		if sess.Kind == KindGameCreation {
			sess.State = AwaitingBudget
			return Result{Prompt: render.AskBudget}, &sess, nil
		}
		sess.State = AwaitingWishes
		return Result{Prompt: render.AskWishes, Args: []any{text}}, &sess, nil

	case AwaitingWishes:
		sess.Fields.Wishes = text
		user, err := m.svc.Registry.Register(ctx, sess.UserID, sess.Fields.Name, sess.Fields.Wishes)
		if err != nil {
			return Result{}, nil, err
		}
		return Result{Prompt: render.Registered, Done: true, Value: user}, nil, nil

	case AwaitingBudget:
		if text == "" {
			return Result{}, nil, apperr.Validation("a budget is required").With(apperr.ReasonMissingValue)
		}
		sess.Fields.Budget = text
		sess.State = AwaitingDate
		return Result{Prompt: render.AskDate}, &sess, nil

	case AwaitingDate:
		// Name and budget passed the same checks earlier, so a validation error here is the date.
		game, err := m.svc.Games.CreateGame(ctx, sess.UserID, sess.Fields.Name, sess.Fields.Budget, text)
		if err != nil {
			return Result{}, nil, err
		}
		return Result{Prompt: render.GameCreated, Args: []any{game.Name, game.ID}, Done: true, Value: game}, nil, nil

	case AwaitingSelection:
		opt, err := pick(sess.Fields.Options, text)
		if err != nil {
			return Result{}, nil, err
		}
		game, err := m.svc.Games.GetGame(ctx, opt.gameID)
		if err != nil {
			return Result{}, nil, err
		}
		p, err := m.svc.Games.JoinGame(ctx, opt.gameID, sess.UserID)
		if err != nil && !apperr.Is(err, apperr.KindDelivery) {
			return Result{}, nil, err
		}
		return Result{Prompt: render.Joined, Args: []any{game.Name}, Done: true, Value: p, Warning: err}, nil, nil

	case AwaitingGameSelection:
		opt, err := pick(sess.Fields.Options, text)
		if err != nil {
			return Result{}, nil, err
		}
		sess.Fields.GameID = opt.gameID
		sess.Fields.Role = opt.role
		sess.State = AwaitingText
		return Result{Prompt: render.AskMessageText}, &sess, nil

	case AwaitingText:
		if text == "" {
			return Result{}, nil, apperr.Validation("message text is required").With(apperr.ReasonMissingValue)
		}
		msg, err := m.svc.Messages.SendMessageTo(ctx, sess.Fields.GameID, sess.UserID, sess.Fields.Role, text)
		if apperr.Is(err, apperr.KindNotFound) {
			// The draw was reset after the game was picked; retyping cannot help.
			return Result{}, nil, apperr.State("game %s no longer has a %s counterpart for %s",
				sess.Fields.GameID, sess.Fields.Role, sess.UserID).With(apperr.ReasonOf(err))
		}
		if err != nil && !apperr.Is(err, apperr.KindDelivery) {
			return Result{}, nil, err
		}
		return Result{Prompt: render.MessageSent, Done: true, Value: msg, Warning: err}, nil, nil

	case AwaitingScore:
		score, err := strconv.Atoi(text)
		if err != nil || score < models.MinRating || score > models.MaxRating {
			return Result{}, nil, apperr.Validation("rating must be a number from %d to %d", models.MinRating, models.MaxRating).With(apperr.ReasonBadRating)
		}
		sess.Fields.Score = score
		sess.State = AwaitingFeedback
		return Result{Prompt: render.AskFeedback}, &sess, nil

	case AwaitingFeedback:
		if text == "" {
			return Result{}, nil, apperr.Validation("feedback is empty, send skip to continue without it").With(apperr.ReasonEmptyFeedback)
		}
		res, err := m.submitRating(ctx, sess, &text)
		return res, nil, err
	}

	return Result{}, nil, apperr.Internal(nil, "session in unknown state %s", sess.State)
}

func (m *Manager) submitRating(ctx context.Context, sess Session, feedback *string) (Result, error) {
	err := m.svc.Gifts.SubmitRating(ctx, sess.Fields.GameID, sess.UserID, sess.Fields.Score, feedback)
	if err != nil && !apperr.Is(err, apperr.KindDelivery) {
		return Result{}, err
	}
	return Result{
		Prompt:  render.RatingSaved,
		Args:    []any{render.Stars(sess.Fields.Score)},
		Done:    true,
		Warning: err,
	}, nil
}

// pick matches text against an option value or its 1-based position.
func pick(options []Option, text string) (Option, error) {
	for _, opt := range options {
		if opt.Value == text {
			return opt, nil
		}
	}
	if n, err := strconv.Atoi(text); err == nil && n >= 1 && n <= len(options) {
		return options[n-1], nil
	}
	return Option{}, apperr.NotFound("%q is not one of the offered options", text).With(apperr.ReasonUnknownOption)
}

func (m *Manager) requireRegistered(ctx context.Context, userID string) error {
	registered, err := m.svc.Registry.IsRegistered(ctx, userID)
	if err != nil {
		return err
	}
	if !registered {
		return apperr.State("register before playing").With(apperr.ReasonNotRegistered)
	}
	return nil
}
