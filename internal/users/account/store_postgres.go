// Copyright (c) 2026 CoPla. All rights reserved.

package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/copla/copla/internal/platform/constants"
	"github.com/copla/copla/internal/platform/database/schema"
	"github.com/copla/copla/internal/platform/dberr"
	"github.com/copla/copla/internal/users/auth"
	"github.com/copla/copla/pkg/pagination"
)

// PostgresAccountRepository implements [AccountRepository] using pgx.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new Postgres implementation for profile management.
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

var accountColumns = strings.Join(schema.UserAccount.Columns(), ", ")

func scanAccount(row pgx.Row) (*auth.User, error) {
	user := &auth.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role,
		&user.Bio, &user.ProfilePicPath, &user.CreatedAt, &user.UpdatedAt,
	)
	return user, err
}

// FindByUsername retrieves a user record from users.account.
func (repository *PostgresAccountRepository) FindByUsername(context context.Context, username string) (*auth.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		accountColumns, schema.UserAccount.Table, schema.UserAccount.Username)

	user, err := scanAccount(repository.pool.QueryRow(context, query, username))
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}
	return user, nil
}

/*
List returns one page of accounts and the total count.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []*auth.User: Accounts ordered by username
  - int: Total accounts
  - error: Query failures
*/
func (repository *PostgresAccountRepository) List(context context.Context, params pagination.Params) ([]*auth.User, int, error) {
	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, schema.UserAccount.Table)
	if err := repository.pool.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_account_repo_count_failed: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s LIMIT $1 OFFSET $2`,
		accountColumns, schema.UserAccount.Table, schema.UserAccount.Username)

	rows, err := repository.pool.Query(context, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_account_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var users []*auth.User
	for rows.Next() {
		user, err := scanAccount(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_account_repo_scan_failed: %w", err)
		}
		users = append(users, user)
	}

	return users, total, rows.Err()
}

// Update syncs the bio and picture path and refreshes updatedat.
func (repository *PostgresAccountRepository) Update(context context.Context, user *auth.User) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = $3, %s = NOW()
		WHERE %s = $1
		RETURNING %s`,
		schema.UserAccount.Table,
		schema.UserAccount.Bio, schema.UserAccount.ProfilePicPath, schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID, schema.UserAccount.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query, user.ID, user.Bio, user.ProfilePicPath).Scan(&user.UpdatedAt)
	return dberr.Wrap(err, "User")
}

// SocialLinks lists linked social accounts, verified ones first.
func (repository *PostgresAccountRepository) SocialLinks(context context.Context, userID int64) ([]SocialLink, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, COALESCE(%s, ''), %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s DESC, %s`,
		schema.SocialProfile.Platform, schema.SocialProfile.Username, schema.SocialProfile.ProfileURL,
		schema.SocialProfile.DisplayName, schema.SocialProfile.IsVerified,
		schema.SocialProfile.Table,
		schema.SocialProfile.UserID,
		schema.SocialProfile.IsVerified, schema.SocialProfile.Platform,
	)

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres_account_repo_social_links_failed: %w", err)
	}

	links, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (SocialLink, error) {
		var link SocialLink
		err := row.Scan(&link.Platform, &link.Username, &link.ProfileURL, &link.DisplayName, &link.IsVerified)
		if link.ProfileURL == "" && link.Platform == constants.PlatformBluesky {
			link.ProfileURL = constants.BlueskyProfileURLPrefix + link.Username
		}
		return link, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres_account_repo_social_links_scan_failed: %w", err)
	}
	return links, nil
}
