// Copyright (c) 2026 CoPla. All rights reserved.

package tag

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
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

func (repository *PostgresRepository) ListNames(context context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY %s ASC`,
		schema.CoreTag.Name, schema.CoreTag.Table, schema.CoreTag.IsActive, schema.CoreTag.Name)

	rows, err := repository.db.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "Tag")
	}

	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	return names, dberr.Wrap(err, "Tag")
}

func (repository *PostgresRepository) ListTags(context context.Context, category string) ([]*Tag, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s AND ($1 = '' OR lower(%s) = lower($1))
		ORDER BY %s ASC`,
		strings.Join(schema.CoreTag.Columns(), ", "), schema.CoreTag.Table,
		schema.CoreTag.IsActive, schema.CoreTag.Category,
		schema.CoreTag.Name,
	)

	rows, err := repository.db.Query(context, query, category)
	if err != nil {
		return nil, dberr.Wrap(err, "Tag")
	}
	defer rows.Close()

	var tags []*Tag
	for rows.Next() {
		t := &Tag{}
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.Description, &t.Category, &t.IsActive, &t.CreatedAt); err != nil {
			return nil, dberr.Wrap(err, "Tag")
		}
		tags = append(tags, t)
	}

	return tags, rows.Err()
}

func (repository *PostgresRepository) CreateTag(context context.Context, t *Tag) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s, %s`,
		schema.CoreTag.Table,
		schema.CoreTag.Name, schema.CoreTag.Slug, schema.CoreTag.Description, schema.CoreTag.Category, schema.CoreTag.IsActive,
		schema.CoreTag.ID, schema.CoreTag.CreatedAt,
	)

	err := repository.db.QueryRow(context, query, t.Name, t.Slug, t.Description, t.Category, t.IsActive).Scan(&t.ID, &t.CreatedAt)
	return dberr.Wrap(err, "Tag")
}
