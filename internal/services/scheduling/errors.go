package scheduling

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure the engine can return. Handlers map
// kinds to HTTP statuses; the message is safe to show verbatim.
type ErrorKind string

const (
	ErrNotFound          ErrorKind = "not_found"
	ErrInvalidState      ErrorKind = "invalid_state"
	ErrInvalidRecurrence ErrorKind = "invalid_recurrence"
	ErrStoreFailure      ErrorKind = "store_failure"
)

type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func notFound(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func invalidState(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrInvalidState, Message: fmt.Sprintf(format, args...)}
}

func invalidRecurrence(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrInvalidRecurrence, Message: fmt.Sprintf(format, args...)}
}

func storeFailure(cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: ErrStoreFailure, Message: fmt.Sprintf(format, args...), cause: cause}
}

// KindOf extracts the engine error kind, defaulting unknown errors to
// store_failure so no raw persistence error leaks untyped.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrStoreFailure
}
