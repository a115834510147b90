// Copyright (c) 2026 CoPla. All rights reserved.

package following

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/copla/copla/internal/platform/constants"
	"github.com/copla/copla/internal/platform/database/schema"
	"github.com/copla/copla/internal/platform/dberr"
	"github.com/copla/copla/internal/platform/postgres"
)

const resourceFollowing = "Following"

var (
	edges    = schema.SocialFollowing
	accounts = schema.UserAccount
	artists  = schema.CoreArtistProfile
	social   = schema.SocialProfile
)

// PostgresRepository implements [Repository] on social.following.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new following store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var listQuery = fmt.Sprintf(`
	SELECT f.%s, f.%s, f.%s, f.%s, f.%s,
	       a.%s, a.%s, a.%s, a.%s,
	       COALESCE(p.%s, FALSE), p.%s IS NOT NULL
	FROM %s f
	LEFT JOIN %s a ON a.%s = f.%s
	LEFT JOIN %s p ON p.%s = f.%s
	WHERE f.%s = $1 AND (NOT $2 OR COALESCE(p.%s, FALSE))
	ORDER BY f.%s ASC`,
	edges.ID, edges.Handle, edges.DisplayName, edges.FollowedAt, edges.SyncedAt,
	accounts.ID, accounts.Username, accounts.Role, accounts.ProfilePicPath,
	artists.IsOpenForCommissions, artists.UserID,
	edges.Table,
	accounts.Table, accounts.ID, edges.FollowedID,
	artists.Table, artists.UserID, edges.FollowedID,
	edges.FollowerID, artists.IsOpenForCommissions,
	edges.Handle,
)

func (repository *PostgresRepository) List(context context.Context, followerID int64, openOnly bool) ([]*Edge, error) {
	rows, err := repository.pool.Query(context, listQuery, followerID, openOnly)
	if err != nil {
		return nil, dberr.Wrap(err, resourceFollowing)
	}
	defer rows.Close()

	var result []*Edge
	for rows.Next() {
		var (
			edge     Edge
			userID   *int64
			name     *string
			role     *string
			picture  *string
			isArtist bool
		)
		if err := rows.Scan(
			&edge.ID, &edge.BlueskyHandle, &edge.BlueskyDisplayName, &edge.FollowedAt, &edge.SyncedAt,
			&userID, &name, &role, &picture,
			&edge.IsOpenForCommissions, &isArtist,
		); err != nil {
			return nil, fmt.Errorf("postgres_following_repo_scan_failed: %w", err)
		}

		if userID != nil {
			edge.IsLinked = true
			edge.CoplaUser = &LinkedUser{ID: *userID, Name: *name, Role: *role, ProfilePicPath: *picture}
			if isArtist {
				edge.LinkedArtistID = *userID
			}
		}
		result = append(result, &edge)
	}

	return result, rows.Err()
}

// upsertQuery links each handle to the local account whose Bluesky link has
// that handle, preferring verified links. A user never links to themselves.
var upsertQuery = fmt.Sprintf(`
	INSERT INTO %s (%s, %s, %s, %s, %s, %s)
	SELECT $1, src.handle, src.did, src.displayname,
	       (SELECT s.%s FROM %s s
	        WHERE s.%s = '%s' AND lower(s.%s) = src.handle AND s.%s <> $1
	        ORDER BY s.%s DESC, s.%s LIMIT 1),
	       NOW()
	FROM unnest($2::text[], $3::text[], $4::text[]) AS src(handle, did, displayname)
	ON CONFLICT (%s, %s) DO UPDATE
	SET %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s
	RETURNING %s IS NOT NULL`,
	edges.Table, edges.FollowerID, edges.Handle, edges.DID, edges.DisplayName, edges.FollowedID, edges.SyncedAt,
	social.UserID, social.Table,
	social.Platform, constants.PlatformBluesky, social.Username, social.UserID,
	social.IsVerified, social.ID,
	edges.FollowerID, edges.Handle,
	edges.DID, edges.DID, edges.DisplayName, edges.DisplayName, edges.FollowedID, edges.FollowedID, edges.SyncedAt, edges.SyncedAt,
	edges.FollowedID,
)

var pruneQuery = fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND NOT (%s = ANY($2::text[]))`,
	edges.Table, edges.FollowerID, edges.Handle)

/*
Replace rebuilds the follower's edges atomically.

Description: Submitted accounts are upserted by (follower, handle) and linked
to local users; edges absent from the submission are deleted. Handles must
already be normalized and unique.
*/
func (repository *PostgresRepository) Replace(context context.Context, followerID int64, submitted []Account) (SyncResult, error) {
	handles := make([]string, len(submitted))
	dids := make([]string, len(submitted))
	names := make([]string, len(submitted))
	for i, account := range submitted {
		handles[i], dids[i], names[i] = account.Handle, account.DID, account.DisplayName
	}

	var result SyncResult
	err := postgres.InTx(context, repository.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(context, upsertQuery, followerID, handles, dids, names)
		if err != nil {
			return err
		}
		linked, err := pgx.CollectRows(rows, pgx.RowTo[bool])
		if err != nil {
			return err
		}

		result.SyncedCount = len(linked)
		for _, isLinked := range linked {
			if isLinked {
				result.LinkedCount++
			}
		}

		_, err = tx.Exec(context, pruneQuery, followerID, handles)
		return err
	})

	if err != nil {
		return SyncResult{}, dberr.Wrap(err, resourceFollowing)
	}
	return result, nil
}
