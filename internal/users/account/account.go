// Copyright (c) 2026 CoPla. All rights reserved.

/*
Package account serves user discovery and profile management.

Profiles are public: anyone can list accounts and read a profile with its
linked social accounts. Only the owner may edit their bio or picture.
*/
package account

import (
	"context"

	"github.com/copla/copla/internal/users/auth"
	"github.com/copla/copla/pkg/pagination"
)

// # Read Models

// Me describes the caller. Anonymous callers get an empty Username.
type Me struct {
	ID       int64  `json:"id,omitempty"`
	Username string `json:"username"`
	Role     string `json:"role,omitempty"`
	IsArtist bool   `json:"is_artist,omitempty"`
}

// SocialLink is the public view of a linked social account.
type SocialLink struct {
	Platform    string `json:"platform"`
	Username    string `json:"username"`
	ProfileURL  string `json:"profile_url"`
	DisplayName string `json:"display_name"`
	IsVerified  bool   `json:"is_verified"`
}

// Profile is a user together with their social accounts.
type Profile struct {
	*auth.User
	IsArtist       bool         `json:"is_artist"`
	SocialProfiles []SocialLink `json:"social_profiles"`
}

// # Repository Contracts

// AccountRepository defines the persistence contract for profiles.
type AccountRepository interface {
	/*
		FindByUsername retrieves a user record by name.

		Returns:
		  - *auth.User: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByUsername(context context.Context, username string) (*auth.User, error)

	/*
		List returns a page of accounts ordered by name with the total count.
	*/
	List(context context.Context, params pagination.Params) ([]*auth.User, int, error)

	// Update persists the bio and profile picture.
	Update(context context.Context, user *auth.User) error

	// SocialLinks lists every social account linked to the user.
	SocialLinks(context context.Context, userID int64) ([]SocialLink, error)
}
