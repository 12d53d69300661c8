// Package apperr defines the error categories surfaced to API callers.
package apperr

import (
	"errors"
	"net/http"
)

// Kind is the machine-stable category of a failure.
type Kind string

const (
	KindValidation           Kind = "validation_failed"
	KindUnauthenticated      Kind = "unauthenticated"
	KindAuthenticationFailed Kind = "authentication_failed"
	KindNotFound             Kind = "not_found"
	KindRateLimited          Kind = "rate_limited"
	KindInternal             Kind = "internal"
)

// Error carries a category, a user-facing detail and an optional cause.
type Error struct {
	Kind   Kind
	Detail string
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Detail + ": " + e.cause.Error()
	}
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(kind Kind, detail string, cause error) *Error {
	return &Error{Kind: kind, Detail: detail, cause: cause}
}

// Validation reports missing or malformed caller input.
func Validation(detail string) *Error {
	return newError(KindValidation, detail, nil)
}

// Unauthenticated reports an absent, unknown or expired credential.
func Unauthenticated(detail string) *Error {
	return newError(KindUnauthenticated, detail, nil)
}

// AuthenticationFailed reports an identity provider rejecting a credential.
func AuthenticationFailed(detail string, cause error) *Error {
	return newError(KindAuthenticationFailed, detail, cause)
}

// NotFound reports a referenced entity that does not exist.
func NotFound(detail string) *Error {
	return newError(KindNotFound, detail, nil)
}

// RateLimited reports a caller over its request budget.
func RateLimited(detail string) *Error {
	return newError(KindRateLimited, detail, nil)
}

// Internal wraps an infrastructure failure.
func Internal(detail string, cause error) *Error {
	return newError(KindInternal, detail, cause)
}

// KindOf returns the category of err. Uncategorised errors are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err belongs to kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a category to its response status.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated, KindAuthenticationFailed:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
