// Copyright (c) 2026 CoPla. All rights reserved.

package coplaapi

import (
	"context"
	"net/http"

	"github.com/copla/copla/internal/client/directory"
	"github.com/copla/copla/internal/client/linking"
	"github.com/copla/copla/internal/core/artist"
	"github.com/copla/copla/internal/social/following"
	"github.com/copla/copla/internal/social/profile"
	"github.com/copla/copla/pkg/slice"
)

// # Directory

// ListArtists implements [directory.ArtistRepository].
func (c *Client) ListArtists(ctx context.Context) ([]directory.ArtistRecord, error) {
	artists, err := c.Artists(ctx, ArtistQuery{})
	if err != nil {
		return nil, err
	}

	return slice.Map(artists, func(a *artist.Artist) directory.ArtistRecord {
		return directory.ArtistRecord{
			ID:                   a.ID,
			Name:                 a.Name,
			Bio:                  a.Bio,
			LowestPrice:          a.LowestPrice,
			IsOpenForCommissions: a.IsOpenForCommissions,
			Verified:             a.Verified,
			Tags:                 a.RelatedTags,
		}
	}), nil
}

// CurrentUser implements [directory.FollowingRepository]. Anonymous callers
// get an empty username.
func (c *Client) CurrentUser(ctx context.Context) (string, error) {
	me, err := c.Me(ctx)
	if err != nil {
		return "", err
	}
	return me.Username, nil
}

// Following implements [directory.FollowingRepository].
func (c *Client) Following(ctx context.Context, username string) ([]directory.FollowingEdge, error) {
	edges, err := c.FollowingEdges(ctx, username, false)
	if err != nil {
		return nil, err
	}

	// The directory only cares about links to artists; a link to a plain
	// account carries no artist id.
	return slice.Map(edges, func(edge *following.Edge) directory.FollowingEdge {
		if !edge.IsLinked || edge.LinkedArtistID == 0 {
			return directory.FollowingEdge{}
		}
		return directory.FollowingEdge{IsLinked: true, LinkedArtistID: edge.LinkedArtistID}
	}), nil
}

// # Linking

// LinkBluesky implements [linking.LinkingAPI].
func (c *Client) LinkBluesky(ctx context.Context, request linking.LinkRequest) error {
	body := map[string]string{
		profile.FieldDID:         request.RemoteID,
		profile.FieldHandle:      request.RemoteHandle,
		"bluesky_display_name":   request.RemoteDisplayName,
		profile.FieldSessionData: request.SessionData,
	}
	return c.call(ctx, http.MethodPost, "/api/users/link-bluesky", nil, body, nil)
}

// StoredSession implements [linking.LinkingAPI]. A missing session is a
// NotFound error.
func (c *Client) StoredSession(ctx context.Context, username string) (string, error) {
	var stored profile.StoredSession
	if err := c.call(ctx, http.MethodGet, userPath(username, "bluesky-session"), nil, nil, &stored); err != nil {
		return "", err
	}
	return stored.SessionData, nil
}

// SyncFollowing implements [linking.LinkingAPI].
func (c *Client) SyncFollowing(ctx context.Context, username string, accounts []linking.FollowAccount) (linking.SyncCounts, error) {
	body := map[string][]following.Account{
		following.FieldFollowing: slice.Map(accounts, func(account linking.FollowAccount) following.Account {
			return following.Account{Handle: account.Handle, DID: account.DID, DisplayName: account.DisplayName}
		}),
	}

	var result following.SyncResult
	if err := c.call(ctx, http.MethodPost, userPath(username, "sync-bluesky-following"), nil, body, &result); err != nil {
		return linking.SyncCounts{}, err
	}
	return linking.SyncCounts{Synced: result.SyncedCount, Linked: result.LinkedCount}, nil
}

var (
	_ directory.ArtistRepository    = (*Client)(nil)
	_ directory.FollowingRepository = (*Client)(nil)
	_ linking.LinkingAPI            = (*Client)(nil)
)
