// Package errors defines the storefront's error kinds and their HTTP status.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel kinds. Every AppError wraps exactly one of them.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrGone           = errors.New("gone")
	ErrServiceUnavail = errors.New("service unavailable")
	ErrUpstream       = errors.New("upstream request failed")
)

// kind.message is shown for a bare sentinel; empty means the error text
// itself is safe to show.
type kind struct {
	sentinel error
	code     string
	status   int
	message  string
}

var kinds = []kind{
	{ErrNotFound, "NOT_FOUND", http.StatusNotFound, "resource not found"},
	{ErrInvalidInput, "INVALID_INPUT", http.StatusBadRequest, ""},
	{ErrUnauthorized, "UNAUTHORIZED", http.StatusUnauthorized, "authentication required"},
	{ErrForbidden, "FORBIDDEN", http.StatusForbidden, "access denied"},
	{ErrConflict, "CONFLICT", http.StatusConflict, "conflicting change"},
	{ErrGone, "GONE", http.StatusGone, "resource no longer available"},
	{ErrServiceUnavail, "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, "service temporarily unavailable"},
	{ErrUpstream, "UPSTREAM_ERROR", http.StatusBadGateway, "marketplace backend request failed"},
}

// AppError is an error a handler can show to the user: Code and Message are
// rendered, Status picks the HTTP status and Err stays in the logs.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Code + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

func newError(sentinel error, message string) *AppError {
	for _, k := range kinds {
		if k.sentinel == sentinel {
			return &AppError{Code: k.code, Message: message, Status: k.status, Err: sentinel}
		}
	}
	panic("errors: unknown kind " + sentinel.Error())
}

// NotFound reports a missing resource, e.g. NotFound("car", "c1").
func NotFound(resource, id string) *AppError {
	return newError(ErrNotFound, fmt.Sprintf("%s with id %s not found", resource, id))
}

func InvalidInput(message string) *AppError { return newError(ErrInvalidInput, message) }

func Unauthorized(message string) *AppError { return newError(ErrUnauthorized, message) }

func Forbidden(message string) *AppError { return newError(ErrForbidden, message) }

func Conflict(message string) *AppError { return newError(ErrConflict, message) }

func Gone(message string) *AppError { return newError(ErrGone, message) }

// ServiceUnavailable is returned while the marketplace backend is shed,
// e.g. with its circuit breaker open.
func ServiceUnavailable(message string) *AppError {
	return newError(ErrServiceUnavail, message)
}

// Upstream reports a failed call to the marketplace backend. cause is kept
// for logging; only message reaches the user.
func Upstream(message string, cause error) *AppError {
	e := newError(ErrUpstream, message)
	if cause != nil {
		e.Err = fmt.Errorf("%w: %w", ErrUpstream, cause)
	}
	return e
}

// From returns the AppError in err's chain, or builds one from the first
// sentinel err wraps. Anything else is a 500 whose details stay hidden.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			msg := k.message
			if msg == "" {
				msg = err.Error()
			}
			return &AppError{Code: k.code, Message: msg, Status: k.status, Err: err}
		}
	}
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// HTTPStatus is the status From(err) would answer with.
func HTTPStatus(err error) int {
	return From(err).Status
}
