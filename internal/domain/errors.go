package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownStatus is returned by the status parsers.
var ErrUnknownStatus = errors.New("unknown status")

// ErrorKind classifies a rejected action so the presentation layer can map
// it to a specific message and HTTP status.
type ErrorKind string

const (
	KindNotFound          ErrorKind = "not_found"
	KindNotAuthorized     ErrorKind = "not_authorized"
	KindInvalidState      ErrorKind = "invalid_state"
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindValidation        ErrorKind = "validation"
	KindConflict          ErrorKind = "conflict"
)

// Error is a typed domain error. It always names the entity and id it
// refers to, and for state errors the current vs. expected state, so
// callers never have to show a generic failure message.
type Error struct {
	Kind     ErrorKind
	Entity   string
	ID       string
	Current  string
	Expected string
	Detail   string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s %s", e.Kind, e.Entity, e.ID)
	if e.Current != "" || e.Expected != "" {
		msg += fmt.Sprintf(" (state %q, want %q)", e.Current, e.Expected)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// NotFound reports a missing entity.
func NotFound(entity, id string) error {
	return &Error{Kind: KindNotFound, Entity: entity, ID: id}
}

// NotAuthorized reports an actor lacking permission for the action.
func NotAuthorized(entity, id, detail string) error {
	return &Error{Kind: KindNotAuthorized, Entity: entity, ID: id, Detail: detail}
}

// InvalidState reports an entity not in a state permitting the action.
func InvalidState(entity, id, current, expected string) error {
	return &Error{Kind: KindInvalidState, Entity: entity, ID: id, Current: current, Expected: expected}
}

// InvalidTransition reports a lifecycle move the state machine forbids.
func InvalidTransition(taskID string, from, to TaskStatus) error {
	return &Error{Kind: KindInvalidTransition, Entity: "task", ID: taskID, Current: string(from), Expected: string(to)}
}

// Validation reports malformed input.
func Validation(detail string) error {
	return &Error{Kind: KindValidation, Entity: "request", Detail: detail}
}

// Conflict reports that a competing transaction won a race.
func Conflict(entity, id, detail string) error {
	return &Error{Kind: KindConflict, Entity: entity, ID: id, Detail: detail}
}

// KindOf extracts the kind of a domain error, or "" for foreign errors.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
