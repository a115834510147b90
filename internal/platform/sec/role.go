// Copyright (c) 2026 CoPla. All rights reserved.

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Unrestricted system access, manages the tag vocabulary
	RoleAdmin UserRole = "admin"

	// Can publish a commission card and appear in the artist directory
	RoleArtist UserRole = "artist"

	// Default role for standard registered users
	RoleUser UserRole = "user"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// IsArtist reports whether the role owns an artist profile.
func (r UserRole) IsArtist() bool {
	return r == RoleArtist
}

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	return r.level() > 0
}

func (r UserRole) level() int {
	switch r {
	case RoleAdmin:
		return 30
	case RoleArtist:
		return 20
	case RoleUser:
		return 10
	default:
		return 0
	}
}
