// Package apperr defines the error taxonomy shared by services and handlers.
//
// Services return *Error values; the HTTP layer maps the Kind to a status
// code without inspecting messages:
//
//	if user == nil {
//	    return apperr.NotFound("User not found")
//	}
//
//	c.Fail(err) // → 404 {"status":404,"message":"User not found"}
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindExternalService
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindExternalService:
		return "external_service"
	default:
		return "internal"
	}
}

// HTTPStatus maps a Kind to its response code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Reason refines KindUnauthenticated.
type Reason string

const (
	ReasonMissing        Reason = "missing"
	ReasonInvalid        Reason = "invalid"
	ReasonExpired        Reason = "expired"
	ReasonMalformed      Reason = "malformed"
	ReasonUnknownSubject Reason = "unknown_subject"
)

// Error is a classified application error. Message is safe to show clients.
type Error struct {
	Kind    Kind
	Reason  Reason
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by Kind and, when set on target, Reason.
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

// Wrap attaches a cause to e and returns it.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }

// ValidationFields reports per-field failures.
func ValidationFields(msg string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

func Unauthenticated(reason Reason, msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Reason: reason, Message: msg}
}

func Forbidden(msg string) *Error { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) *Error  { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) *Error  { return &Error{Kind: KindConflict, Message: msg} }

func ExternalService(msg string, cause error) *Error {
	return &Error{Kind: KindExternalService, Message: msg, Err: cause}
}

func Internal(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: cause}
}

// As extracts the *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the Kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// ReasonOf returns the unauthenticated Reason carried by err, if any.
func ReasonOf(err error) Reason {
	if e, ok := As(err); ok {
		return e.Reason
	}
	return ""
}

// Sentinels for errors.Is comparisons.
var (
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrConflict        = &Error{Kind: KindConflict}
	ErrValidation      = &Error{Kind: KindValidation}
	ErrForbidden       = &Error{Kind: KindForbidden}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated}
	ErrExternalService = &Error{Kind: KindExternalService}
)
