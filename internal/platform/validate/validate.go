// Copyright (c) 2026 CoPla. All rights reserved.

// Package validate accumulates field errors in service code and reports them
// as one VALIDATION_ERROR.
//
//	err := (&validate.Validator{}).
//		Required("username", input.Username).
//		Email("email", input.Email).
//		Err()
package validate

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/copla/copla/internal/platform/apperr"
)

const failedMessage = "Validation failed"

// maxHandleLength is the DNS name limit that provider handles inherit.
const maxHandleLength = 253

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,32}$`)
	handlePattern   = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`)

	// ErrInvalidJSON is returned when a request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// Validator is single-use and not safe for concurrent use.
type Validator struct {
	failures []apperr.FieldError
}

// Custom records message for field when failed is true.
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.failures = append(v.failures, apperr.FieldError{Field: field, Message: message})
	}
	return v
}

func (v *Validator) Required(field, value string) *Validator {
	return v.Custom(field, strings.TrimSpace(value) == "", "This field is required")
}

// MaxLen counts runes, not bytes.
func (v *Validator) MaxLen(field, value string, limit int) *Validator {
	return v.Custom(field, utf8.RuneCountInString(value) > limit, fmt.Sprintf("Maximum %d characters", limit))
}

// MinLen counts runes, not bytes.
func (v *Validator) MinLen(field, value string, limit int) *Validator {
	return v.Custom(field, utf8.RuneCountInString(value) < limit, fmt.Sprintf("Minimum %d characters", limit))
}

func (v *Validator) Email(field, value string) *Validator {
	_, err := mail.ParseAddress(value)
	return v.Custom(field, err != nil, "Must be a valid email address")
}

// Username accepts names that are safe inside /api/users/{username} paths.
func (v *Validator) Username(field, value string) *Validator {
	return v.Custom(field, !usernamePattern.MatchString(value), "Must be 1-32 characters: letters, digits, '.', '_' or '-'")
}

// Handle accepts domain-style provider handles such as "ana.bsky.social".
func (v *Validator) Handle(field, value string) *Validator {
	invalid := len(value) > maxHandleLength || !handlePattern.MatchString(value)
	return v.Custom(field, invalid, "Must be a valid handle (e.g. name.bsky.social)")
}

// NonNegative skips unset optional values.
func (v *Validator) NonNegative(field string, value *float64) *Validator {
	return v.Custom(field, value != nil && *value < 0, "Must not be negative")
}

func (v *Validator) HasErrors() bool {
	return len(v.failures) > 0
}

// Err ends the chain: nil when every rule passed.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return apperr.ValidationError(failedMessage, v.failures...)
}

// RequiredError builds a one-field VALIDATION_ERROR outside of a chain.
func RequiredError(field, message string) *apperr.AppError {
	return apperr.ValidationError(failedMessage, apperr.FieldError{Field: field, Message: message})
}
