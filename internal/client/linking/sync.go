// Copyright (c) 2026 CoPla. All rights reserved.

package linking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/copla/copla/internal/client/bluesky"
	"github.com/copla/copla/internal/client/clienterr"
	"github.com/copla/copla/pkg/slice"
)

// NoFollowingMessage is returned when the provider reports no follows.
const NoFollowingMessage = "No following data found to sync."

// FollowingSync rebuilds a viewer's following list from the provider.
type FollowingSync struct {
	loader *Loader
	api    LinkingAPI
	logger *slog.Logger
	limit  int
}

// NewFollowingSync returns a sync reading one page of [bluesky.DefaultFollowsLimit].
func NewFollowingSync(loader *Loader, api LinkingAPI, logger *slog.Logger) *FollowingSync {
	return &FollowingSync{loader: loader, api: api, logger: logger, limit: bluesky.DefaultFollowsLimit}
}

/*
Sync pushes the provider follow list of username to the backend.

The session comes from the backend copy when one exists, else from the
provider's own store. An empty follow list is reported without calling the
backend. On success refresh, when non-nil, is called.

Returns:
  - string: The human readable summary
  - error: ErrNoSession, or the first failure verbatim
*/
func (s *FollowingSync) Sync(ctx context.Context, username string, refresh func()) (string, error) {
	session, err := s.session(ctx, username)
	if err != nil {
		return "", err
	}

	follows, err := session.GetFollows(ctx, session.DID(), s.limit)
	if err != nil {
		return "", err
	}
	if len(follows) == 0 {
		return NoFollowingMessage, nil
	}

	accounts := slice.Map(follows, func(follow bluesky.Follow) FollowAccount {
		return FollowAccount{Handle: follow.Handle, DID: follow.DID, DisplayName: follow.DisplayName}
	})

	counts, err := s.api.SyncFollowing(ctx, username, accounts)
	if err != nil {
		return "", err
	}

	s.logger.Info("bluesky_following_synced",
		slog.String("username", username),
		slog.Int("synced", counts.Synced),
		slog.Int("linked", counts.Linked),
	)

	if refresh != nil {
		refresh()
	}
	return fmt.Sprintf("Successfully rebuilt following list with %d followers. %d are linked to app users.", counts.Synced, counts.Linked), nil
}

// session prefers the backend copy and falls back to the provider store.
func (s *FollowingSync) session(ctx context.Context, username string) (Session, error) {
	provider, err := s.loader.Get(ctx)
	if err != nil {
		return nil, err
	}

	stored, err := s.api.StoredSession(ctx, username)
	switch {
	case err == nil && stored != "":
		session, err := provider.Resume(ctx, stored)
		if err == nil && session != nil {
			return session, nil
		}
		s.logger.Warn("bluesky_stored_session_unusable", slog.Any("error", err))
	case err != nil && !errors.Is(err, clienterr.NotFound):
		return nil, err
	}

	session, err := provider.Restore(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, clienterr.ErrNoSession
	}
	return session, nil
}
