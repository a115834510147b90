// Copyright (c) 2026 CoPla. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/copla/copla/internal/platform/database/schema"
	"github.com/copla/copla/internal/platform/dberr"
	"github.com/copla/copla/internal/platform/postgres"
)

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

var selectUserQuery = fmt.Sprintf(`SELECT %s FROM %s`,
	strings.Join(schema.UserAccount.Columns(), ", "), schema.UserAccount.Table)

func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role,
		&user.Bio, &user.ProfilePicPath, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// FindByID returns the account with the given ID.
func (repository *PostgresUserRepository) FindByID(context context.Context, id int64) (*User, error) {
	query := selectUserQuery + fmt.Sprintf(` WHERE %s = $1`, schema.UserAccount.ID)
	user, err := scanUser(repository.pool.QueryRow(context, query, id))
	return user, dberr.Wrap(err, "User")
}

// FindByEmail returns the account with the given email.
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	query := selectUserQuery + fmt.Sprintf(` WHERE lower(%s) = lower($1)`, schema.UserAccount.Email)
	user, err := scanUser(repository.pool.QueryRow(context, query, email))
	return user, dberr.Wrap(err, "User")
}

// FindByUsername returns the account with the given username.
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	query := selectUserQuery + fmt.Sprintf(` WHERE %s = $1`, schema.UserAccount.Username)
	user, err := scanUser(repository.pool.QueryRow(context, query, username))
	return user, dberr.Wrap(err, "User")
}

/*
Create inserts the account and, for artists, its artist profile.

Parameters:
  - context: context.Context
  - user: *User (ID and timestamps are filled in)

Returns:
  - error: apperr.Conflict on duplicate identity, storage failures otherwise
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	insertAccount := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		RETURNING %s, %s, %s`,
		schema.UserAccount.Table,
		schema.UserAccount.Username, schema.UserAccount.Email, schema.UserAccount.Password, schema.UserAccount.Role,
		schema.UserAccount.ID, schema.UserAccount.CreatedAt, schema.UserAccount.UpdatedAt,
	)
	insertArtist := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1)`,
		schema.CoreArtistProfile.Table, schema.CoreArtistProfile.UserID)

	err := postgres.InTx(context, repository.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(context, insertAccount, user.Username, user.Email, user.PasswordHash, user.Role).
			Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			return err
		}

		if user.IsArtist() {
			if _, err := tx.Exec(context, insertArtist, user.ID); err != nil {
				return err
			}
		}
		return nil
	})

	return dberr.Wrap(err, "Account")
}
