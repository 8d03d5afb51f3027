// Package errors defines the typed failures reported by the scoring engine.
package errors

import (
	"errors"
	"net/http"
)

// Code is a machine-readable failure code.
type Code string

const (
	CodeInvalidInputRange      Code = "INVALID_INPUT_RANGE"
	CodeInvalidCheckoutAttempt Code = "INVALID_CHECKOUT_ATTEMPT"
	CodeNegativeScoreEdit      Code = "NEGATIVE_SCORE_EDIT_REJECTED"
	CodeHistoryUnderflow       Code = "HISTORY_UNDERFLOW"
	CodeFinishNotPending       Code = "FINISH_NOT_PENDING"
	CodeCheckoutNotPending     Code = "CHECKOUT_NOT_PENDING"
	CodeCheckoutPending        Code = "CHECKOUT_PENDING"
	CodeMatchNotInPlay         Code = "MATCH_NOT_IN_PLAY"
	CodeTurnInProgress         Code = "TURN_IN_PROGRESS"
	CodeInvalidEditTarget      Code = "INVALID_EDIT_TARGET"
	CodeEditOutcomeConflict    Code = "EDIT_OUTCOME_CONFLICT"
	CodeInvalidConfig          Code = "INVALID_CONFIG"
	CodeNotFound               Code = "NOT_FOUND"
)

// HTTPStatus maps a code onto the transport status used for it.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidInputRange, CodeInvalidCheckoutAttempt, CodeInvalidEditTarget, CodeInvalidConfig:
		return http.StatusBadRequest
	case CodeNegativeScoreEdit, CodeEditOutcomeConflict:
		return http.StatusUnprocessableEntity
	case CodeHistoryUnderflow, CodeFinishNotPending, CodeCheckoutNotPending,
		CodeCheckoutPending, CodeMatchNotInPlay, CodeTurnInProgress:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a recoverable engine failure. State is never mutated when one is returned.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target carries the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates an error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates an error with a code that wraps cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf extracts the code of the first *Error in err's chain.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}

// Sentinels for errors.Is comparisons.
var (
	ErrInvalidInputRange      = New(CodeInvalidInputRange, "score out of range")
	ErrInvalidCheckoutAttempt = New(CodeInvalidCheckoutAttempt, "invalid checkout confirmation")
	ErrNegativeScoreEdit      = New(CodeNegativeScoreEdit, "edit would drive score negative")
	ErrHistoryUnderflow       = New(CodeHistoryUnderflow, "nothing to undo")
	ErrFinishNotPending       = New(CodeFinishNotPending, "no finish awaiting confirmation")
	ErrCheckoutNotPending     = New(CodeCheckoutNotPending, "no checkout awaiting confirmation")
	ErrCheckoutPending        = New(CodeCheckoutPending, "checkout awaiting confirmation")
	ErrMatchNotInPlay         = New(CodeMatchNotInPlay, "match is not in play")
	ErrTurnInProgress         = New(CodeTurnInProgress, "darts pending in current turn")
	ErrInvalidEditTarget      = New(CodeInvalidEditTarget, "no such throw")
	ErrEditOutcomeConflict    = New(CodeEditOutcomeConflict, "edit would change the leg outcome")
	ErrInvalidConfig          = New(CodeInvalidConfig, "invalid match configuration")
	ErrNotFound               = New(CodeNotFound, "match not found")
)
