// Copyright (c) 2026 CoPla. All rights reserved.

/*
Package bluesky is the OAuth client for the Bluesky identity provider.

It resolves a handle to its DID, personal data server and authorization
server, runs an authorization code flow with PKCE S256, pushed authorization
requests and DPoP-bound tokens, and exposes the two reads the app needs:
getProfile and getFollows.

# Storage

Pending authorizations live in a [StateStore] between [Client.Authorize] and
[Client.Callback]. Established sessions live in a [SessionStore] and are
restored with [Client.Restore]. A session exported by [Session.Export] can be
handed to the backend and later resumed with [Client.Resume].
*/
package bluesky

import (
	"context"
	"time"
)

const (
	// DefaultHandleResolver answers com.atproto.identity.resolveHandle.
	DefaultHandleResolver = "https://bsky.social"

	// DefaultPLCDirectory resolves did:plc documents.
	DefaultPLCDirectory = "https://plc.directory"

	// DefaultScope is requested when the client metadata names none.
	DefaultScope = "atproto transition:generic"

	// DefaultFollowsLimit is the page size of a follow-list read.
	DefaultFollowsLimit = 100

	// PendingTTL bounds how long an authorization may stay unanswered.
	PendingTTL = 10 * time.Minute
)

// # Records

// Profile is the subset of app.bsky.actor.getProfile the app shows.
type Profile struct {
	DID         string `json:"did"`
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
	Description string `json:"description"`
}

// Follow is one entry of app.bsky.graph.getFollows. DisplayName falls back
// to the handle when the account has none.
type Follow struct {
	DID         string `json:"did"`
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName"`
}

// SessionData is an established DPoP-bound session, as stored and exported.
type SessionData struct {
	DID              string    `json:"did" yaml:"did"`
	Handle           string    `json:"handle" yaml:"handle"`
	PDS              string    `json:"pds" yaml:"pds"`
	Issuer           string    `json:"issuer" yaml:"issuer"`
	AuthorizationURL string    `json:"authorization_endpoint" yaml:"authorization_endpoint"`
	TokenURL         string    `json:"token_endpoint" yaml:"token_endpoint"`
	RevocationURL    string    `json:"revocation_endpoint,omitempty" yaml:"revocation_endpoint,omitempty"`
	AccessToken      string    `json:"access_token" yaml:"access_token"`
	RefreshToken     string    `json:"refresh_token" yaml:"refresh_token"`
	Expiry           time.Time `json:"expiry" yaml:"expiry"`
	DPoPKey          string    `json:"dpop_key" yaml:"dpop_key"`
}

// Pending is an authorization awaiting its callback.
type Pending struct {
	Verifier         string    `yaml:"verifier"`
	DPoPKey          string    `yaml:"dpop_key"`
	Handle           string    `yaml:"handle"`
	DID              string    `yaml:"did"`
	PDS              string    `yaml:"pds"`
	Issuer           string    `yaml:"issuer"`
	AuthorizationURL string    `yaml:"authorization_endpoint"`
	TokenURL         string    `yaml:"token_endpoint"`
	RevocationURL    string    `yaml:"revocation_endpoint,omitempty"`
	CreatedAt        time.Time `yaml:"created_at"`
}

// # Storage

// StateStore keeps pending authorizations keyed by their state parameter.
type StateStore interface {
	PutPending(ctx context.Context, state string, pending Pending) error

	// TakePending removes and returns the entry, or nil when unknown.
	TakePending(ctx context.Context, state string) (*Pending, error)
}

// SessionStore persists the current session.
type SessionStore interface {
	// LoadSession returns nil when no session is stored.
	LoadSession(ctx context.Context) (*SessionData, error)
	SaveSession(ctx context.Context, data *SessionData) error
	DeleteSession(ctx context.Context) error
}
