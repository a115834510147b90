// Copyright (c) 2026 CoPla. All rights reserved.

/*
Package apperr is the error vocabulary shared by CoPla services and handlers.

Services return an [*AppError] whenever the failure is something the caller
should see: a missing artist, a duplicate tag slug, a rejected password. Anything
else is treated as an internal fault by respond.Error and hidden from the client.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// # Codes

// Machine-readable codes carried in the "code" field of error envelopes.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeConflict           = "CONFLICT"
	CodeValidation         = "VALIDATION_ERROR"
	CodeRateLimited        = "RATE_LIMITED"
	CodeUnprocessable      = "UNPROCESSABLE"
	CodeInternal           = "INTERNAL_ERROR"
	CodeBadGateway         = "BAD_GATEWAY"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// AppError is a failure that may be shown to API clients.
//
// Cause stays server-side: respond.Error logs it and never serializes it.
type AppError struct {
	Code       string       `json:"code"`
	Message    string       `json:"error"`
	HTTPStatus int          `json:"-"`
	Cause      error        `json:"-"`
	Details    []FieldError `json:"details,omitempty"`

	// RetryAfter is the number of seconds a throttled client should wait.
	RetryAfter int `json:"-"`
}

// FieldError names one input field that failed validation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Cause }

// Is matches another [*AppError] by code, so sentinel values compare with errors.Is.
func (e *AppError) Is(target error) bool {
	other, ok := target.(*AppError)
	return ok && other.Code == e.Code
}

// WithCause attaches the underlying error for logging and returns e.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func newError(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// # 4xx

// NotFound reports a missing resource by name, e.g. NotFound("Artist").
func NotFound(resource string) *AppError {
	return NotFoundMessage(resource + " not found")
}

// NotFoundMessage reports a missing resource with a custom message.
func NotFoundMessage(msg string) *AppError {
	return newError(http.StatusNotFound, CodeNotFound, msg)
}

func Unauthorized(msg string) *AppError {
	return newError(http.StatusUnauthorized, CodeUnauthorized, msg)
}

func Forbidden(msg string) *AppError {
	return newError(http.StatusForbidden, CodeForbidden, msg)
}

// Conflict reports a uniqueness violation such as a taken username.
func Conflict(msg string) *AppError {
	return newError(http.StatusConflict, CodeConflict, msg)
}

// ValidationError reports rejected input, optionally per field.
func ValidationError(msg string, details ...FieldError) *AppError {
	err := newError(http.StatusBadRequest, CodeValidation, msg)
	err.Details = details
	return err
}

// RateLimited tells the client to back off for retryAfterSeconds.
func RateLimited(retryAfterSeconds int) *AppError {
	err := newError(http.StatusTooManyRequests, CodeRateLimited,
		fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds))
	err.RetryAfter = retryAfterSeconds
	return err
}

func Unprocessable(msg string) *AppError {
	return newError(http.StatusUnprocessableEntity, CodeUnprocessable, msg)
}

// # 5xx

// Internal hides cause behind a generic message.
func Internal(cause error) *AppError {
	return newError(http.StatusInternalServerError, CodeInternal, "An unexpected error occurred").WithCause(cause)
}

// BadGateway reports a failing upstream, such as the Bluesky PDS.
func BadGateway(msg string, cause error) *AppError {
	return newError(http.StatusBadGateway, CodeBadGateway, msg).WithCause(cause)
}

func ServiceUnavailable(msg string) *AppError {
	return newError(http.StatusServiceUnavailable, CodeServiceUnavailable, msg)
}

// # Inspection

// As returns the first [*AppError] in err's chain, or nil.
func As(err error) *AppError {
	var target *AppError
	if errors.As(err, &target) {
		return target
	}
	return nil
}

// IsAppError reports whether err's chain holds an [*AppError].
func IsAppError(err error) bool {
	return As(err) != nil
}

// HasCode reports whether err's chain holds an [*AppError] with code.
func HasCode(err error, code string) bool {
	appErr := As(err)
	return appErr != nil && appErr.Code == code
}
