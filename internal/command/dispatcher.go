// Package command maps chat commands and free text onto engine operations
// and renders the replies in the caller's language.
package command

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/mmynk/secretsanta/internal/apperr"
	"github.com/mmynk/secretsanta/internal/flow"
	"github.com/mmynk/secretsanta/internal/models"
	"github.com/mmynk/secretsanta/internal/render"
	"github.com/mmynk/secretsanta/internal/service"
)

// Command names accepted by Handle.
const (
	Start               = "start"
	Help                = "help"
	Register            = "register"
	CreateGame          = "create-game"
	JoinGame            = "join-game"
	ListMyGames         = "list-my-games"
	Draw                = "draw"
	ResetDraw           = "reset-draw"
	SendMessage         = "send-message"
	ListMessages        = "list-messages"
	ConfirmGiftSent     = "confirm-gift-sent"
	ConfirmGiftReceived = "confirm-gift-received"
	GiftStatus          = "gift-status"
	RateGift            = "rate-gift"
	ReminderSettings    = "reminder-settings"
	SetLanguage         = "set-language"
	Cancel              = "cancel"
	Skip                = "skip"
)

// aliases accepts underscore spellings and short names.
var aliases = map[string]string{
	"create_game":           CreateGame,
	"creategame":            CreateGame,
	"join_game":             JoinGame,
	"join":                  JoinGame,
	"my_games":              ListMyGames,
	"mygames":               ListMyGames,
	"list_my_games":         ListMyGames,
	"reset_draw":            ResetDraw,
	"reset":                 ResetDraw,
	"message":               SendMessage,
	"send_message":          SendMessage,
	"messages":              ListMessages,
	"list_messages":         ListMessages,
	"gift_sent":             ConfirmGiftSent,
	"confirm_gift_sent":     ConfirmGiftSent,
	"gift_received":         ConfirmGiftReceived,
	"confirm_gift_received": ConfirmGiftReceived,
	"gift_status":           GiftStatus,
	"rate":                  RateGift,
	"rate_gift":             RateGift,
	"reminders":             ReminderSettings,
	"reminder_settings":     ReminderSettings,
	"language":              SetLanguage,
	"lang":                  SetLanguage,
	"set_language":          SetLanguage,
}

var known = map[string]bool{
	Start: true, Help: true, Register: true, CreateGame: true, JoinGame: true,
	ListMyGames: true, Draw: true, ResetDraw: true, SendMessage: true,
	ListMessages: true, ConfirmGiftSent: true, ConfirmGiftReceived: true,
	GiftStatus: true, RateGift: true, ReminderSettings: true, SetLanguage: true,
	Cancel: true, Skip: true,
}

// Normalize strips a leading slash, lowercases, and resolves aliases.
func Normalize(command string) string {
	command = strings.ToLower(strings.TrimSpace(command))
	command = strings.TrimPrefix(command, "/")
	// Telegram style "/draw@santa_bot".
	if i := strings.IndexByte(command, '@'); i >= 0 {
		command = command[:i]
	}
	if canonical, ok := aliases[command]; ok {
		return canonical
	}
	return command
}

// Request is one inbound chat event. Command is empty for free text.
type Request struct {
	UserID  string
	Command string
	Args    []string
	Text    string
}

// ReplyOption is a selectable answer, e.g. a button.
type ReplyOption struct {
	Value string
	Label string
}

// Reply is what the transport shows back to the user.
type Reply struct {
	Text     string
	Options  []ReplyOption
	Warnings []string
	// Done reports that no flow is waiting for more input.
	Done bool
	// Outcome is "ok" or the lowercased error kind the command failed with.
	Outcome string
}

// Observer records the outcome of each handled command.
type Observer interface {
	ObserveCommand(command, outcome string)
}

// Dispatcher routes requests to the services and the flow manager.
type Dispatcher struct {
	svc      *service.Services
	flows    *flow.Manager
	renderer *render.Renderer
	observer Observer
}

// NewDispatcher creates a Dispatcher. observer may be nil.
func NewDispatcher(svc *service.Services, flows *flow.Manager, observer Observer) *Dispatcher {
	return &Dispatcher{
		svc:      svc,
		flows:    flows,
		renderer: svc.Notifier.Renderer(),
		observer: observer,
	}
}

// Handle executes one request. Errors from the engine are rendered into the
// reply; the returned error is only set for an invalid request.
func (d *Dispatcher) Handle(ctx context.Context, req Request) (Reply, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return Reply{}, apperr.Validation("user id is required")
	}

	command := Normalize(req.Command)
	name := command
	switch {
	case name == "":
		name = "text"
	case !known[name]:
		// Keeps the metric label set bounded.
		name = "unknown"
	}

	lang := d.svc.Notifier.Language(ctx, req.UserID)
	reply, err := d.route(ctx, req, command, &lang)
	if err != nil {
		reply = d.errorReply(req.UserID, lang, err)
	}
	reply.Outcome = Outcome(err)

	if d.observer != nil {
		d.observer.ObserveCommand(name, reply.Outcome)
	}
	return reply, nil
}

// Outcome labels err for logs and metrics.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return strings.ToLower(string(apperr.KindOf(err)))
}

func (d *Dispatcher) route(ctx context.Context, req Request, command string, lang *models.Language) (Reply, error) {
	userID := req.UserID

	switch command {
	case "":
		return d.input(ctx, userID, req.Text, *lang)

	case Start:
		return d.done(d.text(*lang, render.Welcome) + "\n\n" + d.text(*lang, render.Help)), nil

	case Help:
		return d.done(d.text(*lang, render.Help)), nil

	case Register:
		res, err := d.flows.StartRegistration(ctx, userID)
		return d.flowReply(*lang, res), err

	case CreateGame:
		res, err := d.flows.StartGameCreation(ctx, userID)
		return d.flowReply(*lang, res), err

	case JoinGame:
		res, err := d.flows.StartGameJoin(ctx, userID)
		if err != nil || res.Done {
			return d.flowReply(*lang, res), err
		}
		if len(req.Args) > 0 {
			return d.input(ctx, userID, req.Args[0], *lang)
		}
		return d.flowReply(*lang, res), nil

	case ListMyGames:
		return d.listMyGames(ctx, userID, *lang)

	case Draw:
		return d.draw(ctx, userID, req.Args, *lang)

	case ResetDraw:
		gameID, err := gameArg(req.Args)
		if err != nil {
			return Reply{}, err
		}
		if _, err := d.svc.Assignments.ResetDraw(ctx, gameID, userID); err != nil {
			return Reply{}, err
		}
		game, err := d.svc.Games.GetGame(ctx, gameID)
		if err != nil {
			return Reply{}, err
		}
		return d.done(d.text(*lang, render.ResetDone, game.Name)), nil

	case SendMessage:
		res, err := d.flows.StartMessage(ctx, userID)
		return d.flowReply(*lang, res), err

	case ListMessages:
		return d.listMessages(ctx, userID, *lang)

	case ConfirmGiftSent:
		gameID, err := gameArg(req.Args)
		if err != nil {
			return Reply{}, err
		}
		game, err := d.svc.Games.GetGame(ctx, gameID)
		if err != nil {
			return Reply{}, err
		}
		err = d.svc.Gifts.ConfirmSent(ctx, gameID, userID)
		if err != nil && !apperr.Is(err, apperr.KindDelivery) {
			return Reply{}, err
		}
		return d.withWarning(*lang, d.done(d.text(*lang, render.GiftSentConfirmed, game.Name)), err), nil

	case ConfirmGiftReceived:
		return d.confirmReceived(ctx, userID, req.Args, *lang)

	case GiftStatus:
		return d.giftStatus(ctx, req.Args, *lang)

	case RateGift:
		gameID, err := gameArg(req.Args)
		if err != nil {
			return Reply{}, err
		}
		res, err := d.flows.StartRating(ctx, userID, gameID)
		return d.flowReply(*lang, res), err

	case ReminderSettings:
		if err := d.requireRegistered(ctx, userID); err != nil {
			return Reply{}, err
		}
		enabled, err := d.svc.Registry.ToggleReminders(ctx, userID)
		if err != nil {
			return Reply{}, err
		}
		if enabled {
			return d.done(d.text(*lang, render.RemindersOn)), nil
		}
		return d.done(d.text(*lang, render.RemindersOff)), nil

	case SetLanguage:
		if len(req.Args) == 0 {
			return Reply{}, apperr.Validation("language is required: %s or %s", models.LanguagePrimary, models.LanguageSecondary).With(apperr.ReasonUnsupportedLanguage)
		}
		if err := d.requireRegistered(ctx, userID); err != nil {
			return Reply{}, err
		}
		newLang, err := d.svc.Registry.SetLanguage(ctx, userID, req.Args[0])
		if err != nil {
			return Reply{}, err
		}
		*lang = newLang
		return d.done(d.text(newLang, render.LanguageSet)), nil

	case Cancel:
		if d.flows.Cancel(userID) {
			return d.done(d.text(*lang, render.Cancelled)), nil
		}
		return d.done(d.text(*lang, render.NothingToCancel)), nil

	case Skip:
		res, err := d.flows.Skip(ctx, userID)
		return d.flowReply(*lang, res), err
	}

	return d.done(d.text(*lang, render.UnknownCommand, req.Command)), nil
}

func (d *Dispatcher) input(ctx context.Context, userID, text string, lang models.Language) (Reply, error) {
	if Normalize(text) == Skip {
		if sess, ok := d.flows.Active(userID); ok && sess.State == flow.AwaitingFeedback {
			res, err := d.flows.Skip(ctx, userID)
			return d.flowReply(lang, res), err
		}
	}
	res, err := d.flows.Input(ctx, userID, text)
	return d.flowReply(lang, res), err
}

func (d *Dispatcher) draw(ctx context.Context, userID string, args []string, lang models.Language) (Reply, error) {
	gameID, err := gameArg(args)
	if err != nil {
		return Reply{}, err
	}
	assignments, err := d.svc.Assignments.Draw(ctx, gameID, userID)
	if err != nil && !apperr.Is(err, apperr.KindDelivery) {
		return Reply{}, err
	}
	game, gameErr := d.svc.Games.GetGame(ctx, gameID)
	if gameErr != nil {
		return Reply{}, gameErr
	}
	return d.withWarning(lang, d.done(d.text(lang, render.DrawDone, game.Name, len(assignments))), err), nil
}

func (d *Dispatcher) confirmReceived(ctx context.Context, userID string, args []string, lang models.Language) (Reply, error) {
	gameID, err := gameArg(args)
	if err != nil {
		return Reply{}, err
	}
	game, err := d.svc.Games.GetGame(ctx, gameID)
	if err != nil {
		return Reply{}, err
	}
	if err := d.svc.Gifts.ConfirmReceived(ctx, gameID, userID); err != nil {
		return Reply{}, err
	}

	confirmed := d.text(lang, render.GiftReceivedConfirmed, game.Name)
	res, err := d.flows.StartRating(ctx, userID, gameID)
	if err != nil {
		// The confirmation is stored; the rating can still be started with rate-gift.
		slog.Warn("Failed to start rating flow", "game_id", gameID, "user_id", userID, "error", err)
		return d.done(confirmed), nil
	}

	reply := d.flowReply(lang, res)
	reply.Text = confirmed + "\n\n" + reply.Text
	return reply, nil
}

func (d *Dispatcher) listMyGames(ctx context.Context, userID string, lang models.Language) (Reply, error) {
	games, err := d.svc.Games.ListUserGames(ctx, userID)
	if err != nil {
		return Reply{}, err
	}
	if len(games) == 0 {
		return d.done(d.text(lang, render.MyGamesEmpty)), nil
	}

	var b strings.Builder
	b.WriteString(d.text(lang, render.MyGamesHeader))
	for _, g := range games {
		status := d.text(lang, render.StatusWaiting)
		if g.Drawn {
			status = d.text(lang, render.StatusDrawn)
		}
		role := d.text(lang, render.RoleParticipant)
		if g.OrganizerID == userID {
			role = d.text(lang, render.RoleOrganizer)
		}
		b.WriteString("\n")
		b.WriteString(d.text(lang, render.MyGameLine, g.Name, g.ID, g.Budget, render.Date(g.EventDate), g.ParticipantCount, status, role))
	}
	return d.done(b.String()), nil
}

// previewLimit caps each message body in the unread listing.
const previewLimit = 500

func (d *Dispatcher) listMessages(ctx context.Context, userID string, lang models.Language) (Reply, error) {
	messages, err := d.svc.Messages.ListUnread(ctx, userID)
	if err != nil {
		return Reply{}, err
	}
	if len(messages) == 0 {
		return d.done(d.text(lang, render.NoMessages)), nil
	}

	var b strings.Builder
	b.WriteString(d.text(lang, render.MessagesHeader, len(messages)))
	for _, m := range messages {
		b.WriteString("\n")
		b.WriteString(d.text(lang, render.MessageLine, m.GameName, m.SentAt.Format("02.01 15:04"), truncate(m.Text, previewLimit)))
	}
	return d.done(b.String()), nil
}

func (d *Dispatcher) giftStatus(ctx context.Context, args []string, lang models.Language) (Reply, error) {
	gameID, err := gameArg(args)
	if err != nil {
		return Reply{}, err
	}
	game, err := d.svc.Games.GetGame(ctx, gameID)
	if err != nil {
		return Reply{}, err
	}
	statuses, err := d.svc.Gifts.Status(ctx, gameID)
	if err != nil {
		return Reply{}, err
	}

	var b strings.Builder
	b.WriteString(d.text(lang, render.GiftStatusHeader, game.Name))
	for _, s := range statuses {
		b.WriteString("\n")
		b.WriteString(d.text(lang, render.GiftStatusLine, s.DisplayName, mark(s.Sent), mark(s.Received)))
	}
	return d.done(b.String()), nil
}

func mark(ok bool) string {
	if ok {
		return "✅"
	}
	return "❌"
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "…"
}

func (d *Dispatcher) requireRegistered(ctx context.Context, userID string) error {
	registered, err := d.svc.Registry.IsRegistered(ctx, userID)
	if err != nil {
		return err
	}
	if !registered {
		return apperr.State("register before changing settings").With(apperr.ReasonNotRegistered)
	}
	return nil
}

func gameArg(args []string) (string, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", apperr.Validation("game id is required").With(apperr.ReasonMissingGameID)
	}
	return strings.TrimSpace(args[0]), nil
}

func (d *Dispatcher) text(lang models.Language, key render.Key, args ...any) string {
	return d.renderer.Text(lang, key, args...)
}

func (d *Dispatcher) done(text string) Reply {
	return Reply{Text: text, Done: true}
}

func (d *Dispatcher) flowReply(lang models.Language, res flow.Result) Reply {
	if res.Prompt == "" {
		return Reply{}
	}
	reply := Reply{
		Text:    d.text(lang, res.Prompt, res.Args...),
		Options: d.options(lang, res.Options),
		Done:    res.Done,
	}
	return d.withWarning(lang, reply, res.Warning)
}

func (d *Dispatcher) options(lang models.Language, options []flow.Option) []ReplyOption {
	if len(options) == 0 {
		return nil
	}
	out := make([]ReplyOption, len(options))
	for i, opt := range options {
		label := opt.Label
		if opt.LabelKey != "" {
			label = d.text(lang, opt.LabelKey, opt.LabelArgs...)
		}
		out[i] = ReplyOption{Value: opt.Value, Label: label}
	}
	return out
}

func (d *Dispatcher) withWarning(lang models.Language, reply Reply, err error) Reply {
	if err != nil {
		slog.Warn("Command completed with delivery failures", "error", err)
		reply.Warnings = append(reply.Warnings, d.text(lang, render.DeliveryWarning))
	}
	return reply
}

// errorReply renders err. If the user is still inside a flow the current prompt is repeated.
// The error message itself stays in the logs.
func (d *Dispatcher) errorReply(userID string, lang models.Language, err error) Reply {
	if errors.Is(err, flow.ErrNoSession) {
		return d.done(d.text(lang, render.NoActiveFlow))
	}

	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		slog.Error("Command failed", "user_id", userID, "error", err)
	} else {
		slog.Debug("Command rejected", "user_id", userID, "kind", kind, "reason", apperr.ReasonOf(err), "error", err)
	}

	key := errorKey(err)
	reprompt, active := d.flows.Reprompt(userID)
	if !active {
		return d.done(d.text(lang, render.ErrorReply, d.text(lang, key)))
	}

	if sess, _ := d.flows.Active(userID); sess.State == flow.AwaitingDate && kind == apperr.KindValidation {
		key = render.ErrorBadDate
	}
	return Reply{
		Text:    d.text(lang, render.ErrorReply, d.text(lang, key)) + "\n\n" + d.text(lang, reprompt.Prompt, reprompt.Args...),
		Options: d.options(lang, reprompt.Options),
	}
}

var reasonKeys = map[apperr.Reason]render.Key{
	apperr.ReasonMissingValue:        render.ErrorMissingValue,
	apperr.ReasonBadDate:             render.ErrorBadDate,
	apperr.ReasonBadRating:           render.ErrorBadRating,
	apperr.ReasonEmptyFeedback:       render.ErrorEmptyFeedback,
	apperr.ReasonNothingToSkip:       render.ErrorNothingToSkip,
	apperr.ReasonUnsupportedLanguage: render.ErrorUnsupportedLanguage,
	apperr.ReasonMissingGameID:       render.ErrorMissingGameID,
	apperr.ReasonAlreadyRegistered:   render.ErrorAlreadyRegistered,
	apperr.ReasonNotRegistered:       render.ErrorNotRegistered,
	apperr.ReasonNotOrganizer:        render.ErrorNotOrganizer,
	apperr.ReasonTooFewParticipants:  render.ErrorTooFewParticipants,
	apperr.ReasonAlreadyDrawn:        render.ErrorAlreadyDrawn,
	apperr.ReasonNotDrawn:            render.ErrorNotDrawn,
	apperr.ReasonDrawConflict:        render.ErrorDrawConflict,
	apperr.ReasonAlreadyJoined:       render.ErrorAlreadyJoined,
	apperr.ReasonGameClosed:          render.ErrorGameClosed,
	apperr.ReasonNothingToRate:       render.ErrorNothingToRate,
	apperr.ReasonGameNotFound:        render.ErrorGameNotFound,
	apperr.ReasonNotParticipant:      render.ErrorNotParticipant,
	apperr.ReasonNoCounterpart:       render.ErrorNoCounterpart,
	apperr.ReasonUnknownOption:       render.ErrorUnknownOption,
}

var kindKeys = map[apperr.Kind]render.Key{
	apperr.KindValidation:    render.ErrorValidation,
	apperr.KindPermission:    render.ErrorPermission,
	apperr.KindState:         render.ErrorState,
	apperr.KindNotFound:      render.ErrorNotFound,
	apperr.KindDrawExhausted: render.ErrorDrawExhausted,
}

// errorKey picks the catalog entry for err: its reason first, then its kind.
func errorKey(err error) render.Key {
	if key, ok := reasonKeys[apperr.ReasonOf(err)]; ok {
		return key
	}
	if key, ok := kindKeys[apperr.KindOf(err)]; ok {
		return key
	}
	return render.ErrorInternal
}
