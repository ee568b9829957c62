package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicate    = errors.New("duplicate")    // 403
	ErrMissing      = errors.New("missing")      // 403 on scope routes, 401 on auth routes
	ErrUnauthorized = errors.New("unauthorized") // 401
	ErrBadRequest   = errors.New("bad request")  // 400
	ErrValidation   = errors.New("validation")   // 422
)

// Error is a domain failure with a message that is safe to show to the
// caller. Cause is kept for logs only.
type Error struct {
	Kind   error
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func newError(kind error, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...), Cause: cause}
}

func Duplicate(cause error, format string, args ...any) *Error {
	return newError(ErrDuplicate, cause, format, args...)
}

func Missing(cause error, format string, args ...any) *Error {
	return newError(ErrMissing, cause, format, args...)
}

func Unauthorized(cause error, format string, args ...any) *Error {
	return newError(ErrUnauthorized, cause, format, args...)
}

func BadRequest(format string, args ...any) *Error {
	return newError(ErrBadRequest, nil, format, args...)
}

func Validation(format string, args ...any) *Error {
	return newError(ErrValidation, nil, format, args...)
}

// Detail returns the public message of err, or fallback when err carries
// none.
func Detail(err error, fallback string) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Detail
	}
	return fallback
}
