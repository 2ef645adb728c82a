// Package apperr holds the typed errors every service returns. httpx.Wrap
// turns them into HTTP status codes and the response envelope.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindInvalidState
	KindRateLimited
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindInvalidState:
		return "invalid_state"
	case KindRateLimited:
		return "rate_limited"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a failure that is safe to show to the caller. Message is the
// human readable text, Reason a stable machine readable code.
type Error struct {
	Kind    Kind
	Reason  string
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind and reason, so copies made by
// WithStatus or WithCause still match their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Reason == e.Reason
}

// WithStatus overrides the default HTTP status of the kind.
func (e *Error) WithStatus(code int) *Error {
	cp := *e
	cp.Status = code
	return &cp
}

// WithCause keeps err for logs and errors.Is without changing the message.
func (e *Error) WithCause(err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}

func defaultStatus(k Kind) int {
	switch k {
	case KindValidation, KindInvalidState:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func New(k Kind, reason, msg string) *Error {
	return &Error{Kind: k, Reason: reason, Message: msg, Status: defaultStatus(k)}
}

func Validation(reason, msg string) *Error     { return New(KindValidation, reason, msg) }
func Authentication(reason, msg string) *Error { return New(KindAuthentication, reason, msg) }
func Authorization(reason, msg string) *Error  { return New(KindAuthorization, reason, msg) }
func NotFound(reason, msg string) *Error       { return New(KindNotFound, reason, msg) }
func InvalidState(reason, msg string) *Error   { return New(KindInvalidState, reason, msg) }
func RateLimited(reason, msg string) *Error    { return New(KindRateLimited, reason, msg) }
func Conflict(reason, msg string) *Error       { return New(KindConflict, reason, msg) }

// As returns the typed error inside err, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf reports KindInternal for anything that is not an *Error.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, k Kind) bool { return err != nil && KindOf(err) == k }

// StatusOf is the HTTP status for err, 500 when it is untyped.
func StatusOf(err error) int {
	if e, ok := As(err); ok {
		return e.Status
	}
	return http.StatusInternalServerError
}

func ReasonOf(err error) string {
	if e, ok := As(err); ok {
		return e.Reason
	}
	return "internal"
}
