package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error so handlers can map it to an HTTP status once,
// at the boundary, instead of building ad hoc error payloads per endpoint.
type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

// Sentinel values usable with errors.Is.
var (
	ErrInternal     = &Error{kind: KindInternal, msg: "internal error"}
	ErrBadRequest   = &Error{kind: KindBadRequest, msg: "bad request"}
	ErrUnauthorized = &Error{kind: KindUnauthorized, msg: "unauthorized"}
	ErrForbidden    = &Error{kind: KindForbidden, msg: "forbidden"}
	ErrNotFound     = &Error{kind: KindNotFound, msg: "not found"}
	ErrConflict     = &Error{kind: KindConflict, msg: "conflict"}
)

// Error is the single tagged error type shared by all layers.
type Error struct {
	kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Is matches any error of the same kind, so errors.Is(err, ErrNotFound)
// works regardless of the wrapped message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.kind == e.kind
}

func newf(kind Kind, format string, a ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, a...)}
}

func NewInternal(format string, a ...any) error     { return newf(KindInternal, format, a...) }
func NewBadRequest(format string, a ...any) error   { return newf(KindBadRequest, format, a...) }
func NewUnauthorized(format string, a ...any) error { return newf(KindUnauthorized, format, a...) }
func NewForbidden(format string, a ...any) error    { return newf(KindForbidden, format, a...) }
func NewNotFound(format string, a ...any) error     { return newf(KindNotFound, format, a...) }
func NewConflict(format string, a ...any) error     { return newf(KindConflict, format, a...) }

func IsNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }
func IsForbidden(err error) bool    { return errors.Is(err, ErrForbidden) }
func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }
func IsBadRequest(err error) bool   { return errors.Is(err, ErrBadRequest) }
func IsConflict(err error) bool     { return errors.Is(err, ErrConflict) }

// HTTPStatus maps an error to its HTTP status code. Unknown errors are
// treated as internal.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
