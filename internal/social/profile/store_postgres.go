// Copyright (c) 2026 CoPla. All rights reserved.

package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/copla/copla/internal/platform/constants"
	"github.com/copla/copla/internal/platform/database/schema"
	"github.com/copla/copla/internal/platform/dberr"
	"github.com/copla/copla/internal/platform/postgres"
)

const resourceProfile = "Social account"

var social = schema.SocialProfile

// PostgresRepository implements [Repository] on social.profile.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new social profile store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var publicColumns = strings.Join(social.PublicColumns(), ", ")

func scanProfile(row pgx.Row, extra ...any) (*Profile, error) {
	p := &Profile{}
	dest := append([]any{
		&p.ID, &p.UserID, &p.Platform, &p.Username, &p.ProfileURL,
		&p.IsVerified, &p.DID, &p.DisplayName, &p.CanSync,
	}, extra...)
	return p, row.Scan(dest...)
}

// Create inserts a manual link.
func (repository *PostgresRepository) Create(context context.Context, p *Profile) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s`,
		social.Table, social.UserID, social.Platform, social.Username, social.ProfileURL, social.IsVerified,
		social.ID,
	)

	err := repository.pool.QueryRow(context, query, p.UserID, p.Platform, p.Username, p.ProfileURL, p.IsVerified).Scan(&p.ID)
	return dberr.Wrap(err, resourceProfile)
}

/*
UpsertBluesky rewrites the user's first Bluesky link or inserts a new one.

Description: The row is locked for the duration of the transaction so two
concurrent verifications cannot both insert.
*/
func (repository *PostgresRepository) UpsertBluesky(context context.Context, p *Profile, sealedSession string) error {
	lock := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $1 AND %s = $2
		ORDER BY %s LIMIT 1
		FOR UPDATE`,
		social.ID, social.Table,
		social.UserID, social.Platform,
		social.ID,
	)
	update := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8, %s = NOW()
		WHERE %s = $1`,
		social.Table,
		social.Username, social.ProfileURL, social.IsVerified, social.DID, social.DisplayName,
		social.CanSync, social.SessionData, social.UpdatedAt,
		social.ID,
	)
	insert := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s`,
		social.Table,
		social.UserID, social.Platform, social.Username, social.ProfileURL, social.IsVerified,
		social.DID, social.DisplayName, social.CanSync, social.SessionData,
		social.ID,
	)

	err := postgres.InTx(context, repository.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(context, lock, p.UserID, constants.PlatformBluesky).Scan(&p.ID)
		switch {
		case err == nil:
			_, err = tx.Exec(context, update, p.ID,
				p.Username, p.ProfileURL, p.IsVerified, p.DID, p.DisplayName, p.CanSync, sealedSession)
			return err
		case dberr.IsNoRows(err):
			return tx.QueryRow(context, insert,
				p.UserID, constants.PlatformBluesky, p.Username, p.ProfileURL, p.IsVerified,
				p.DID, p.DisplayName, p.CanSync, sealedSession,
			).Scan(&p.ID)
		default:
			return err
		}
	})

	return dberr.Wrap(err, resourceProfile)
}

// FindVerifiedBluesky returns the oldest verified Bluesky link and its sealed session.
func (repository *PostgresRepository) FindVerifiedBluesky(context context.Context, userID int64) (*Profile, string, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s FROM %s
		WHERE %s = $1 AND %s = $2 AND %s
		ORDER BY %s LIMIT 1`,
		publicColumns, social.SessionData, social.Table,
		social.UserID, social.Platform, social.IsVerified,
		social.ID,
	)

	var sealed string
	p, err := scanProfile(repository.pool.QueryRow(context, query, userID, constants.PlatformBluesky), &sealed)
	if err != nil {
		return nil, "", dberr.Wrap(err, resourceProfile)
	}
	return p, sealed, nil
}

// Delete removes the matching link and returns what was removed.
func (repository *PostgresRepository) Delete(context context.Context, userID int64, platform, account string) (*Profile, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE %s = (
			SELECT %s FROM %s
			WHERE %s = $1 AND lower(%s) = lower($2) AND lower(%s) = lower($3)
			ORDER BY %s LIMIT 1
		)
		RETURNING %s`,
		social.Table,
		social.ID,
		social.ID, social.Table,
		social.UserID, social.Platform, social.Username,
		social.ID,
		publicColumns,
	)

	p, err := scanProfile(repository.pool.QueryRow(context, query, userID, platform, account))
	if dberr.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, resourceProfile)
	}
	return p, nil
}

// HasVerified reports whether any verified link remains on the platform.
func (repository *PostgresRepository) HasVerified(context context.Context, userID int64, platform string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND lower(%s) = lower($2) AND %s)`,
		social.Table, social.UserID, social.Platform, social.IsVerified)

	var exists bool
	err := repository.pool.QueryRow(context, query, userID, platform).Scan(&exists)
	return exists, dberr.Wrap(err, resourceProfile)
}
