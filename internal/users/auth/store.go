// Copyright (c) 2026 CoPla. All rights reserved.

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id int64) (*User, error)

	/*
		FindByEmail returns the account with the given email (case-insensitive).
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByUsername returns the account with the given username.
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		Create persists a brand-new account. Artist accounts also get an empty
		artist profile in the same transaction.

		Returns:
		  - error: apperr.Conflict on a duplicate name or email
	*/
	Create(context context.Context, user *User) error
}

// # Session Registry

// SessionRepository tracks which issued session tokens are still live.
type SessionRepository interface {

	// Create registers a session id for userID until ttl elapses.
	Create(context context.Context, sessionID string, userID int64, ttl time.Duration) error

	// Exists reports whether the session is still registered.
	Exists(context context.Context, sessionID string) (bool, error)

	// Revoke removes the session. Revoking an unknown session is not an error.
	Revoke(context context.Context, sessionID string) error
}
