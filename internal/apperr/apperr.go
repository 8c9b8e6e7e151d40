// Package apperr defines the error taxonomy shared by the gift exchange services.
package apperr

import (
	"errors"
	"fmt"

	"connectrpc.com/connect"
)

// Kind classifies an error by how the caller should react to it.
type Kind string

const (
	KindInternal      Kind = "INTERNAL"
	KindValidation    Kind = "VALIDATION"
	KindPermission    Kind = "PERMISSION"
	KindState         Kind = "STATE"
	KindNotFound      Kind = "NOT_FOUND"
	KindDrawExhausted Kind = "DRAW_EXHAUSTED"
	KindDelivery      Kind = "DELIVERY"
)

// ConnectCode maps a kind to a Connect status code.
func (k Kind) ConnectCode() connect.Code {
	switch k {
	case KindValidation:
		return connect.CodeInvalidArgument
	case KindPermission:
		return connect.CodePermissionDenied
	case KindState:
		return connect.CodeFailedPrecondition
	case KindNotFound:
		return connect.CodeNotFound
	case KindDrawExhausted:
		// Retrying the draw is safe.
		return connect.CodeAborted
	case KindDelivery:
		return connect.CodeUnavailable
	default:
		return connect.CodeInternal
	}
}

// Reason narrows a Kind down to the precondition or input that failed.
// Transports use it to pick a localized reply; Message stays for logs.
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonMissingValue        Reason = "missing_value"
	ReasonBadDate             Reason = "bad_date"
	ReasonBadRating           Reason = "bad_rating"
	ReasonEmptyFeedback       Reason = "empty_feedback"
	ReasonNothingToSkip       Reason = "nothing_to_skip"
	ReasonUnsupportedLanguage Reason = "unsupported_language"
	ReasonMissingGameID       Reason = "missing_game_id"
	ReasonAlreadyRegistered   Reason = "already_registered"
	ReasonNotRegistered       Reason = "not_registered"
	ReasonNotOrganizer        Reason = "not_organizer"
	ReasonTooFewParticipants  Reason = "too_few_participants"
	ReasonAlreadyDrawn        Reason = "already_drawn"
	ReasonNotDrawn            Reason = "not_drawn"
	ReasonDrawConflict        Reason = "draw_conflict"
	ReasonAlreadyJoined       Reason = "already_joined"
	ReasonGameClosed          Reason = "game_closed"
	ReasonNothingToRate       Reason = "nothing_to_rate"
	ReasonGameNotFound        Reason = "game_not_found"
	ReasonNotParticipant      Reason = "not_participant"
	ReasonNoCounterpart       Reason = "no_counterpart"
	ReasonUnknownOption       Reason = "unknown_option"
)

// Error is a classified error. Message is for logs and may contain ids.
type Error struct {
	Kind    Kind
	Reason  Reason
	Message string
	Err     error
}

// With sets the reason and returns e.
func (e *Error) With(reason Reason) *Error {
	e.Reason = reason
	return e
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation reports malformed input.
func Validation(format string, args ...any) *Error {
	return newError(KindValidation, format, args...)
}

// Permission reports an organizer-only operation attempted by someone else.
func Permission(format string, args ...any) *Error {
	return newError(KindPermission, format, args...)
}

// State reports a violated precondition.
func State(format string, args ...any) *Error {
	return newError(KindState, format, args...)
}

// NotFound reports an unknown game, user, or selection.
func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

// DrawExhausted reports that no derangement was found within the attempt cap.
func DrawExhausted(attempts int) *Error {
	return newError(KindDrawExhausted, "no valid assignment found after %d attempts", attempts)
}

// Delivery wraps a Notification Gateway failure for one recipient.
func Delivery(userID string, err error) *Error {
	return &Error{Kind: KindDelivery, Message: fmt.Sprintf("failed to notify user %s", userID), Err: err}
}

// Internal wraps an unexpected failure such as a storage error.
func Internal(err error, format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// ReasonOf returns the reason of the first *Error in err's chain.
func ReasonOf(err error) Reason {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Reason
	}
	return ReasonNone
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ToConnect converts err into a *connect.Error with the mapped code.
func ToConnect(err error) *connect.Error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}
	return connect.NewError(KindOf(err).ConnectCode(), err)
}
