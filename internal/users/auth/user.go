// Copyright (c) 2026 CoPla. All rights reserved.

/*
Package auth implements account registration, login and the cookie session
lifecycle.

A login issues an RS256 session token carried in an HttpOnly cookie. The token's
jti names a key in Redis; logging out deletes the key, which revokes the cookie
even though its signature is still valid.
*/
package auth

import (
	"time"

	"github.com/copla/copla/internal/platform/sec"
)

// # Domain Entities

// User represents a registered CoPla account. Artists are users with the artist role.
type User struct {
	ID             int64        `json:"id"`
	Username       string       `json:"name"`
	Email          string       `json:"email,omitempty"`
	PasswordHash   string       `json:"-"`
	Role           sec.UserRole `json:"role"`
	Bio            string       `json:"bio"`
	ProfilePicPath string       `json:"profile_pic_path"`
	CreatedAt      time.Time    `json:"time_created"`
	UpdatedAt      time.Time    `json:"-"`
}

// IsArtist reports whether the account owns an artist profile.
func (user *User) IsArtist() bool {
	return user.Role.IsArtist()
}

// Public returns a copy without private contact details.
func (user *User) Public() *User {
	public := *user
	public.Email = ""
	return &public
}

// # Field Identifiers

const (
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldLogin    = "login"
)
