// Copyright (c) 2026 CoPla. All rights reserved.

/*
Package linking runs the Bluesky account verification and follow sync flows.

[VerificationFlow] is the state machine

	initial → authenticating → authenticated → verify-submitted
	                                   └→ (Disconnect) → initial

and [FollowingSync] pushes the provider's follow list to the backend for
reconciliation. Both share one [Loader], so the provider client is built at
most once even when several inits overlap.
*/
package linking

import (
	"context"
	"net/url"

	"github.com/copla/copla/internal/client/bluesky"
)

// HintKey names the hint that carries the local username across the
// provider redirect.
const HintKey = "verification_target"

// # Collaborators

// Session is an authenticated provider session.
type Session interface {
	DID() string
	Export() (string, error)
	GetProfile(ctx context.Context, actor string) (*bluesky.Profile, error)
	GetFollows(ctx context.Context, actor string, limit int) ([]bluesky.Follow, error)
}

// IdentityProvider is the OAuth client for the provider. Restore returns a
// nil session when none is stored.
type IdentityProvider interface {
	Authorize(ctx context.Context, handle string) (string, error)
	Callback(ctx context.Context, params url.Values) (Session, error)
	Restore(ctx context.Context) (Session, error)
	Resume(ctx context.Context, sessionData string) (Session, error)
	SignOut(ctx context.Context) error
}

// LinkRequest is what the backend needs to link a verified identity.
type LinkRequest struct {
	RemoteID          string
	RemoteHandle      string
	RemoteDisplayName string
	SessionData       string
}

// FollowAccount is one followed identity submitted for reconciliation.
type FollowAccount struct {
	Handle      string
	DID         string
	DisplayName string
}

// SyncCounts is the backend's reconciliation summary.
type SyncCounts struct {
	Synced int
	Linked int
}

// LinkingAPI is the backend surface the flows call.
//
// StoredSession returns a NotFound error when the backend holds no session.
type LinkingAPI interface {
	LinkBluesky(ctx context.Context, request LinkRequest) error
	StoredSession(ctx context.Context, username string) (string, error)
	SyncFollowing(ctx context.Context, username string, following []FollowAccount) (SyncCounts, error)
}

// HintStore is a small key-value store that survives a redirect.
type HintStore interface {
	SetHint(ctx context.Context, key, value string) error
	Hint(ctx context.Context, key string) (string, bool, error)
	ClearHint(ctx context.Context, key string) error
}

// # Provider Adapter

// FromBluesky adapts a provider client to [IdentityProvider].
func FromBluesky(client *bluesky.Client) IdentityProvider {
	return blueskyProvider{client: client}
}

type blueskyProvider struct {
	client *bluesky.Client
}

func (p blueskyProvider) Authorize(ctx context.Context, handle string) (string, error) {
	return p.client.Authorize(ctx, handle)
}

func (p blueskyProvider) Callback(ctx context.Context, params url.Values) (Session, error) {
	return wrap(p.client.Callback(ctx, params))
}

func (p blueskyProvider) Restore(ctx context.Context) (Session, error) {
	return wrap(p.client.Restore(ctx))
}

func (p blueskyProvider) Resume(ctx context.Context, sessionData string) (Session, error) {
	return wrap(p.client.Resume(ctx, sessionData))
}

func (p blueskyProvider) SignOut(ctx context.Context) error {
	return p.client.SignOut(ctx)
}

// wrap keeps a nil *bluesky.Session from becoming a non-nil interface.
func wrap(session *bluesky.Session, err error) (Session, error) {
	if err != nil || session == nil {
		return nil, err
	}
	return session, nil
}
