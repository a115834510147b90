// Copyright (c) 2026 CoPla. All rights reserved.

package artist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/copla/copla/internal/platform/database/schema"
	"github.com/copla/copla/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var (
	account = schema.UserAccount
	profile = schema.CoreArtistProfile
	card    = schema.CoreCommissionCard
	element = schema.CoreCommissionElement
	tags    = schema.CoreTag
	links   = schema.CoreArtistTag
)

// lowestPriceExpr is the cheapest priced element on the artist's card, or 0.
var lowestPriceExpr = fmt.Sprintf(`
	COALESCE((
		SELECT MIN(e.%s) FROM %s e JOIN %s c ON e.%s = c.%s
		WHERE c.%s = a.%s AND e.%s IS NOT NULL
	), 0)::float8`,
	element.Price, element.Table, card.Table, element.CardID, card.ID,
	card.ArtistID, account.ID, element.Price,
)

var relatedTagsExpr = fmt.Sprintf(`
	ARRAY(
		SELECT t.%s FROM %s l JOIN %s t ON t.%s = l.%s
		WHERE l.%s = a.%s ORDER BY t.%s
	)`,
	tags.Name, links.Table, tags.Table, tags.ID, links.TagID,
	links.ArtistID, account.ID, tags.Name,
)

func (repository *PostgresRepository) ListArtists(context context.Context, filter Filter) ([]*Artist, error) {
	query := fmt.Sprintf(`
		SELECT a.%s, a.%s, a.%s, a.%s, p.%s, p.%s, %s, %s
		FROM %s a
		JOIN %s p ON p.%s = a.%s
		WHERE ($1::boolean IS NULL OR p.%s = $1)
		  AND ($2::boolean IS NULL OR p.%s = $2)
		ORDER BY a.%s ASC`,
		account.ID, account.Username, account.Bio, account.ProfilePicPath,
		profile.IsVerified, profile.IsOpenForCommissions,
		lowestPriceExpr, relatedTagsExpr,
		account.Table,
		profile.Table, profile.UserID, account.ID,
		profile.IsVerified,
		profile.IsOpenForCommissions,
		account.Username,
	)

	rows, err := repository.db.Query(context, query, filter.Verified, filter.OpenForCommissions)
	if err != nil {
		return nil, dberr.Wrap(err, "Artist")
	}
	defer rows.Close()

	var artists []*Artist
	for rows.Next() {
		a := &Artist{}
		if err := rows.Scan(
			&a.ID, &a.Name, &a.Bio, &a.ProfilePicPath, &a.Verified, &a.IsOpenForCommissions,
			&a.LowestPrice, &a.RelatedTags,
		); err != nil {
			return nil, fmt.Errorf("postgres_artist_repo_scan_failed: %w", err)
		}
		artists = append(artists, a)
	}

	return artists, rows.Err()
}

func (repository *PostgresRepository) FindArtistID(context context.Context, username string) (int64, error) {
	query := fmt.Sprintf(`
		SELECT p.%s FROM %s p JOIN %s a ON a.%s = p.%s
		WHERE a.%s = $1`,
		profile.UserID, profile.Table, account.Table, account.ID, profile.UserID,
		account.Username,
	)

	var id int64
	err := repository.db.QueryRow(context, query, username).Scan(&id)
	return id, dberr.Wrap(err, "Artist")
}

func (repository *PostgresRepository) SetCommissionStatus(context context.Context, artistID int64, open bool) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		profile.Table, profile.IsOpenForCommissions, profile.UpdatedAt, profile.UserID)

	_, err := repository.db.Exec(context, query, artistID, open)
	return dberr.Wrap(err, "Artist")
}

func (repository *PostgresRepository) SetVerified(context context.Context, artistID int64, verified bool) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		profile.Table, profile.IsVerified, profile.UpdatedAt, profile.UserID)

	_, err := repository.db.Exec(context, query, artistID, verified)
	return dberr.Wrap(err, "Artist")
}

func (repository *PostgresRepository) AddTag(context context.Context, artistID int64, tagName string) (bool, error) {
	var tagID int64
	lookup := fmt.Sprintf(`SELECT %s FROM %s WHERE lower(%s) = lower($1)`, tags.ID, tags.Table, tags.Name)
	if err := repository.db.QueryRow(context, lookup, tagName).Scan(&tagID); err != nil {
		if dberr.IsNoRows(err) {
			return false, nil
		}
		return false, dberr.Wrap(err, "Tag")
	}

	insert := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		links.Table, links.ArtistID, links.TagID)
	if _, err := repository.db.Exec(context, insert, artistID, tagID); err != nil {
		return false, dberr.Wrap(err, "Tag")
	}
	return true, nil
}

func (repository *PostgresRepository) RemoveTag(context context.Context, artistID int64, tagName string) (bool, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s l USING %s t
		WHERE l.%s = t.%s AND l.%s = $1 AND lower(t.%s) = lower($2)`,
		links.Table, tags.Table,
		links.TagID, tags.ID, links.ArtistID, tags.Name,
	)

	cmd, err := repository.db.Exec(context, query, artistID, tagName)
	if err != nil {
		return false, dberr.Wrap(err, "Tag")
	}
	return cmd.RowsAffected() > 0, nil
}
