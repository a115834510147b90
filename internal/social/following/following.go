// Copyright (c) 2026 CoPla. All rights reserved.

/*
Package following mirrors the accounts a user follows on Bluesky.

The client fetches the follow list from the provider and submits it; the server
rebuilds the user's edges from it in one transaction. An edge is linked when the
followed handle matches a CoPla account's Bluesky link, which lets the directory
show "artists you follow".
*/
package following

import (
	"context"
	"time"
)

// LinkedUser is the CoPla account behind a followed handle.
type LinkedUser struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	ProfilePicPath string `json:"profile_pic_path"`
}

// Edge is one followed provider account.
type Edge struct {
	ID                   int64       `json:"id"`
	BlueskyHandle        string      `json:"bluesky_handle"`
	BlueskyDisplayName   string      `json:"bluesky_display_name"`
	CoplaUser            *LinkedUser `json:"copla_user"`
	IsLinked             bool        `json:"is_linked"`
	LinkedArtistID       int64       `json:"linked_artist_id,omitempty"`
	IsOpenForCommissions bool        `json:"is_open_for_commissions"`
	FollowedAt           time.Time   `json:"followed_at"`
	SyncedAt             time.Time   `json:"synced_at"`
}

// Account is a followed account as reported by the provider.
type Account struct {
	Handle      string `json:"handle"`
	DID         string `json:"did"`
	DisplayName string `json:"display_name"`
}

// SyncResult summarizes a rebuild.
type SyncResult struct {
	SyncedCount int `json:"synced_count"`
	LinkedCount int `json:"linked_count"`
}

const (
	FieldFollowing = "following"

	// MaxSyncAccounts bounds one submission.
	MaxSyncAccounts = 5000
)

type Repository interface {
	// List returns the user's edges; openOnly keeps artists open for commissions.
	List(context context.Context, followerID int64, openOnly bool) ([]*Edge, error)

	// Replace upserts accounts, links them to local users and drops edges not in accounts.
	Replace(context context.Context, followerID int64, accounts []Account) (SyncResult, error)
}
