// Package apperr defines the typed error results returned by the dispatch core.
package apperr

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeNotFound              Code = "NOT_FOUND"
	CodeInvalidTransition     Code = "INVALID_TRANSITION"
	CodeInvalidAmount         Code = "INVALID_AMOUNT"
	CodeAdvisoryUnavailable   Code = "ADVISORY_UNAVAILABLE"
	CodeConflictingAssignment Code = "CONFLICTING_ASSIGNMENT"
	CodeValidation            Code = "VALIDATION_ERROR"
)

// Sentinels for errors.Is checks. Every *Error matches the sentinel of its code.
var (
	ErrNotFound              = &Error{Code: CodeNotFound, Message: "not found"}
	ErrInvalidTransition     = &Error{Code: CodeInvalidTransition, Message: "invalid transition"}
	ErrInvalidAmount         = &Error{Code: CodeInvalidAmount, Message: "invalid amount"}
	ErrAdvisoryUnavailable   = &Error{Code: CodeAdvisoryUnavailable, Message: "advisory unavailable"}
	ErrConflictingAssignment = &Error{Code: CodeConflictingAssignment, Message: "conflicting assignment"}
	ErrValidation            = &Error{Code: CodeValidation, Message: "validation failed"}
)

type Error struct {
	Code    Code           `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func New(code Code, message string, details map[string]any) *Error {
	return &Error{Code: code, Message: message, Details: details}
}

func NotFound(kind, id string) *Error {
	return New(CodeNotFound, kind+" not found", map[string]any{"kind": kind, "id": id})
}

func InvalidTransition(ticketID, from, event string) *Error {
	return New(CodeInvalidTransition, fmt.Sprintf("cannot %s ticket in status %s", event, from), map[string]any{
		"ticket_id": ticketID,
		"from":      from,
		"event":     event,
	})
}

func InvalidAmount(amount float64) *Error {
	return New(CodeInvalidAmount, "amount must be non-negative", map[string]any{"amount": amount})
}

func ConflictingAssignment(siteID, status string) *Error {
	return New(CodeConflictingAssignment, "site is not open for assignment", map[string]any{
		"site_id": siteID,
		"status":  status,
	})
}

func AdvisoryUnavailable(cause error) *Error {
	return &Error{Code: CodeAdvisoryUnavailable, Message: "advisory recommender unavailable", Cause: cause}
}

func Validation(message string) *Error {
	return New(CodeValidation, message, nil)
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
