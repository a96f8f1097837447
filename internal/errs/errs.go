// Package errs defines the error kinds every operation reports. Handlers
// translate a kind into an HTTP status; services only construct them.
package errs

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindUnauthenticated   Kind = "unauthenticated"
	KindForbidden         Kind = "forbidden"
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindInvalidTransition Kind = "invalid_transition"
	KindTripUnavailable   Kind = "trip_unavailable"
	KindInvalidInput      Kind = "invalid_input"
	KindInternal          Kind = "internal"
)

// Error is a classified failure with a message safe to show callers.
type Error struct {
	Kind    Kind
	Message string
	// Reason narrows an unauthenticated failure for logs
	// (invalid_credential or unknown_subject). It never reaches clients.
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, and a reason when the target
// sets one, so callers can write errors.Is(err, errs.ErrForbidden).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Reason == "" || t.Reason == e.Reason
}

const (
	ReasonInvalidCredential = "invalid_credential"
	ReasonUnknownSubject    = "unknown_subject"
)

// Sentinels for errors.Is.
var (
	ErrUnauthenticated   = &Error{Kind: KindUnauthenticated, Message: "could not validate credentials"}
	ErrInvalidCredential = &Error{Kind: KindUnauthenticated, Reason: ReasonInvalidCredential, Message: "could not validate credentials"}
	ErrUnknownSubject    = &Error{Kind: KindUnauthenticated, Reason: ReasonUnknownSubject, Message: "could not validate credentials"}
	ErrForbidden         = &Error{Kind: KindForbidden, Message: "not authorized"}
	ErrNotFound          = &Error{Kind: KindNotFound, Message: "not found"}
	ErrConflict          = &Error{Kind: KindConflict, Message: "already exists"}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition, Message: "invalid status"}
	ErrTripUnavailable   = &Error{Kind: KindTripUnavailable, Message: "trip is not available"}
	ErrInvalidInput      = &Error{Kind: KindInvalidInput, Message: "invalid input"}
	ErrInternal          = &Error{Kind: KindInternal, Message: "internal server error"}
)

func Unauthenticated(msg string) error { return &Error{Kind: KindUnauthenticated, Message: msg} }

func InvalidCredential(err error) error {
	return &Error{Kind: KindUnauthenticated, Reason: ReasonInvalidCredential, Message: "could not validate credentials", Err: err}
}

func UnknownSubject(subject string) error {
	return &Error{Kind: KindUnauthenticated, Reason: ReasonUnknownSubject, Message: "could not validate credentials", Err: errors.New("no user for subject " + subject)}
}

func Forbidden(msg string) error         { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) error          { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) error          { return &Error{Kind: KindConflict, Message: msg} }
func InvalidTransition(msg string) error { return &Error{Kind: KindInvalidTransition, Message: msg} }
func TripUnavailable(msg string) error   { return &Error{Kind: KindTripUnavailable, Message: msg} }
func InvalidInput(msg string) error      { return &Error{Kind: KindInvalidInput, Message: msg} }

// Internal wraps an unexpected failure. The cause is kept for logging
// and hidden from the response.
func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Public returns the message a caller may see for err.
func Public(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	if e != nil && e.Message != "" {
		return e.Message
	}
	return ErrInternal.Message
}

// HTTPStatus maps a kind onto a response status.
func HTTPStatus(k Kind) int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindInvalidTransition, KindTripUnavailable, KindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
