// Package apperr defines the error-kind vocabulary shared by the service
// layer, the worker pool, and the HTTP API, and the single place that maps a
// kind to a status code and response envelope.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is one of the error kinds named in the error-handling design.
type Kind string

const (
	KindNotFound                Kind = "not_found"
	KindValidation               Kind = "validation_error"
	KindUnauthorized             Kind = "unauthorized"
	KindForbidden                Kind = "forbidden"
	KindRateLimited              Kind = "rate_limited"
	KindContentGenerationFailed  Kind = "content_generation_failed"
	KindRepositoryError          Kind = "repository_error"
	KindBrokerUnavailable        Kind = "broker_unavailable"
	KindInternal                 Kind = "internal"
)

// Error is the typed error every layer above storage should return so the
// HTTP layer can translate it without inspecting driver-specific types.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.err }

// New builds an *Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an *Error of the given kind around a lower-level cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, err: cause}
}

// WithDetails attaches structured detail fields (e.g. offending field names).
func (e *Error) WithDetails(d map[string]any) *Error {
	e.Details = d
	return e
}

// NotFound is a convenience constructor for the common "missing entity" case.
func NotFound(entity string) *Error {
	return New(KindNotFound, entity+" not found")
}

// StatusCode maps a Kind to the HTTP status the API surface must return.
func (k Kind) StatusCode() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindContentGenerationFailed:
		return http.StatusServiceUnavailable
	case KindRepositoryError:
		return http.StatusInternalServerError
	case KindBrokerUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// As extracts an *Error from any error chain, defaulting to an internal kind.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &Error{Kind: KindInternal, Message: "internal error", err: err}
}
