// Copyright (c) 2026 CoPla. All rights reserved.

/*
Package clienterr is the error taxonomy shared by the client packages.

Every failure surfaced to a user is an [*Error] carrying a [Kind]. Callers match
kinds with errors.Is and render with [Message]; nothing here is fatal.

	if errors.Is(err, clienterr.NotFound) {
		// render an empty state
	}
*/
package clienterr

import (
	"errors"
	"fmt"
)

// # Kinds

// Kind classifies a client failure. Kinds are also sentinels for errors.Is.
type Kind string

const (
	// Network covers transport failures and non-2xx responses.
	Network Kind = "network"

	// Validation is bad input detected before or by the server.
	Validation Kind = "validation"

	// NoSession means no provider credential is available.
	NoSession Kind = "no_session"

	// NotFound is a 404 on a lookup.
	NotFound Kind = "not_found"
)

// Error implements error so a Kind can be the target of errors.Is.
func (k Kind) Error() string { return string(k) }

// # Error

// Error is a classified client failure.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Cause != nil:
		return e.Cause.Error()
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches the kind sentinel of the error.
func (e *Error) Is(target error) bool {
	kind, ok := target.(Kind)
	return ok && kind == e.Kind
}

// ErrNoSession is returned when neither the backend nor the provider holds a session.
var ErrNoSession = &Error{Kind: NoSession, Message: "No active session found; verify account first"}

// # Constructors

// New returns an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Transport wraps a failure that happened before any response arrived.
func Transport(cause error) *Error {
	return &Error{Kind: Network, Message: "Network request failed: " + cause.Error(), Cause: cause}
}

// FromStatus classifies a non-2xx response.
//
// 404 is NotFound, 400 and 422 are Validation, everything else is Network.
// An empty message falls back to the status text.
func FromStatus(status int, message string) *Error {
	if message == "" {
		message = fmt.Sprintf("Request failed with status %d", status)
	}

	kind := Network
	switch status {
	case 404:
		kind = NotFound
	case 400, 422:
		kind = Validation
	}

	return &Error{Kind: kind, Status: status, Message: message}
}

// # Rendering

// Message returns the displayable text of any error. It is safe on nil.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified.Error()
	}

	return err.Error()
}

// KindOf reports the kind of err, defaulting to Network for foreign errors.
func KindOf(err error) Kind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return Network
}
