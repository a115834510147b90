// Copyright (c) 2026 CoPla. All rights reserved.

/*
Package profile links CoPla accounts to external social accounts.

A Bluesky account can be linked two ways. A manual link records a handle the
user typed and stays unverified. A verified link follows a completed OAuth
round trip on the client; it carries the provider DID and an exported session
that the server keeps sealed so the owner can later re-sync their follows.
Artists with a verified Bluesky link get the verified badge.
*/
package profile

import "context"

// Profile is a linked social account. The sealed session never leaves the store.
type Profile struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"-"`
	Platform    string `json:"platform"`
	Username    string `json:"username"`
	ProfileURL  string `json:"profile_url"`
	IsVerified  bool   `json:"is_verified"`
	DID         string `json:"did,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	CanSync     bool   `json:"can_sync"`
}

// VerifiedLink is the client's proof of a completed provider sign-in.
type VerifiedLink struct {
	DID         string
	Handle      string
	DisplayName string
	SessionData string
}

// StoredSession is the decrypted provider session handed back to its owner.
type StoredSession struct {
	SessionData string `json:"session_data"`
	Message     string `json:"message"`
}

const (
	FieldUsername    = "username"
	FieldHandle      = "bluesky_handle"
	FieldDID         = "bluesky_did"
	FieldSessionData = "session_data"
)

// ArtistVerifier toggles the artist verification badge.
type ArtistVerifier interface {
	SetVerified(context context.Context, userID int64, verified bool) error
}

// Sealer encrypts session exports at rest.
type Sealer interface {
	Seal(plaintext, associated []byte) (string, error)
	Open(sealed string, associated []byte) ([]byte, error)
}

type Repository interface {
	// Create stores a new link; apperr.Conflict when the same account is already linked.
	Create(context context.Context, profile *Profile) error

	// UpsertBluesky replaces the user's first Bluesky link, or creates one.
	UpsertBluesky(context context.Context, profile *Profile, sealedSession string) error

	// FindVerifiedBluesky returns the user's verified Bluesky link and its sealed session.
	FindVerifiedBluesky(context context.Context, userID int64) (*Profile, string, error)

	// Delete removes a link matched case-insensitively. It returns nil when nothing matched.
	Delete(context context.Context, userID int64, platform, account string) (*Profile, error)

	HasVerified(context context.Context, userID int64, platform string) (bool, error)
}
