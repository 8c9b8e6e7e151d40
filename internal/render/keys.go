package render

import "github.com/mmynk/secretsanta/internal/models"

// Key identifies a catalog entry.
type Key string

// Notifications.
const (
	JoinNotice         Key = "notice.join"
	DrawNotice         Key = "notice.draw"
	MessageNotice      Key = "notice.message"
	GiftSentNotice     Key = "notice.gift_sent"
	RatingNotice       Key = "notice.rating"
	RatingFeedbackLine Key = "notice.rating_feedback"
	ReminderThreeDays  Key = "notice.reminder_three_days"
	ReminderOneDay     Key = "notice.reminder_one_day"
)

// Replies.
const (
	Welcome               Key = "reply.welcome"
	Help                  Key = "reply.help"
	AskName               Key = "reply.ask_name"
	AskWishes             Key = "reply.ask_wishes"
	Registered            Key = "reply.registered"
	AskGameName           Key = "reply.ask_game_name"
	AskBudget             Key = "reply.ask_budget"
	AskDate               Key = "reply.ask_date"
	GameCreated           Key = "reply.game_created"
	ChooseJoinGame        Key = "reply.choose_join_game"
	JoinOption            Key = "reply.join_option"
	NoJoinableGames       Key = "reply.no_joinable_games"
	Joined                Key = "reply.joined"
	MyGamesHeader         Key = "reply.my_games_header"
	MyGamesEmpty          Key = "reply.my_games_empty"
	MyGameLine            Key = "reply.my_game_line"
	StatusDrawn           Key = "reply.status_drawn"
	StatusWaiting         Key = "reply.status_waiting"
	RoleOrganizer         Key = "reply.role_organizer"
	RoleParticipant       Key = "reply.role_participant"
	DrawDone              Key = "reply.draw_done"
	ResetDone             Key = "reply.reset_done"
	ChooseMessageGame     Key = "reply.choose_message_game"
	NoCounterparts        Key = "reply.no_counterparts"
	CounterpartReceiver   Key = "reply.counterpart_receiver"
	CounterpartSanta      Key = "reply.counterpart_santa"
	AskMessageText        Key = "reply.ask_message_text"
	MessageSent           Key = "reply.message_sent"
	NoMessages            Key = "reply.no_messages"
	MessagesHeader        Key = "reply.messages_header"
	MessageLine           Key = "reply.message_line"
	GiftSentConfirmed     Key = "reply.gift_sent_confirmed"
	GiftReceivedConfirmed Key = "reply.gift_received_confirmed"
	AskRating             Key = "reply.ask_rating"
	AskFeedback           Key = "reply.ask_feedback"
	RatingSaved           Key = "reply.rating_saved"
	GiftStatusHeader      Key = "reply.gift_status_header"
	GiftStatusLine        Key = "reply.gift_status_line"
	RemindersOn           Key = "reply.reminders_on"
	RemindersOff          Key = "reply.reminders_off"
	LanguageSet           Key = "reply.language_set"
	Cancelled             Key = "reply.cancelled"
	NothingToCancel       Key = "reply.nothing_to_cancel"
	NoActiveFlow          Key = "reply.no_active_flow"
	UnknownCommand        Key = "reply.unknown_command"
	DeliveryWarning       Key = "reply.delivery_warning"
	ErrorReply            Key = "reply.error"
)

// Error replies, one per reason with a fallback per kind.
const (
	ErrorValidation    Key = "error.validation"
	ErrorPermission    Key = "error.permission"
	ErrorState         Key = "error.state"
	ErrorNotFound      Key = "error.not_found"
	ErrorDrawExhausted Key = "error.draw_exhausted"
	ErrorInternal      Key = "error.internal"

	ErrorMissingValue        Key = "error.missing_value"
	ErrorBadDate             Key = "error.bad_date"
	ErrorBadRating           Key = "error.bad_rating"
	ErrorEmptyFeedback       Key = "error.empty_feedback"
	ErrorNothingToSkip       Key = "error.nothing_to_skip"
	ErrorUnsupportedLanguage Key = "error.unsupported_language"
	ErrorMissingGameID       Key = "error.missing_game_id"
	ErrorAlreadyRegistered   Key = "error.already_registered"
	ErrorNotRegistered       Key = "error.not_registered"
	ErrorNotOrganizer        Key = "error.not_organizer"
	ErrorTooFewParticipants  Key = "error.too_few_participants"
	ErrorAlreadyDrawn        Key = "error.already_drawn"
	ErrorNotDrawn            Key = "error.not_drawn"
	ErrorDrawConflict        Key = "error.draw_conflict"
	ErrorAlreadyJoined       Key = "error.already_joined"
	ErrorGameClosed          Key = "error.game_closed"
	ErrorNothingToRate       Key = "error.nothing_to_rate"
	ErrorGameNotFound        Key = "error.game_not_found"
	ErrorNotParticipant      Key = "error.not_participant"
	ErrorNoCounterpart       Key = "error.no_counterpart"
	ErrorUnknownOption       Key = "error.unknown_option"
)

// ReminderKey returns the catalog entry for a reminder type.
func ReminderKey(t models.ReminderType) Key {
	if t == models.ReminderOneDay {
		return ReminderOneDay
	}
	return ReminderThreeDays
}
