// Copyright (c) 2026 CoPla. All rights reserved.

package commission

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/copla/copla/internal/platform/database/schema"
	"github.com/copla/copla/internal/platform/dberr"
)

const resourceCard = "Commission card"

var (
	cards    = schema.CoreCommissionCard
	elements = schema.CoreCommissionElement
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var selectElementQuery = fmt.Sprintf(`SELECT %s, %s, %s, %s::float8, %s, %s FROM %s`,
	elements.ID, elements.Title, elements.Description, elements.Price, elements.ExampleImageURLs, elements.Position,
	elements.Table)

func scanElement(row pgx.Row) (*Element, error) {
	e := &Element{}
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Price, &e.ExampleImageURLs, &e.Position)
	return e, err
}

func (repository *PostgresRepository) FindCard(context context.Context, artistID int64) (*Card, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s WHERE %s = $1`,
		cards.ID, cards.ArtistID, cards.Title, cards.Description, cards.Table, cards.ArtistID)

	card := &Card{}
	err := repository.db.QueryRow(context, query, artistID).Scan(&card.ID, &card.ArtistID, &card.Title, &card.Description)
	if err != nil {
		return nil, dberr.Wrap(err, resourceCard)
	}

	rows, err := repository.db.Query(context,
		selectElementQuery+fmt.Sprintf(` WHERE %s = $1 ORDER BY %s, %s`, elements.CardID, elements.Position, elements.ID),
		card.ID)
	if err != nil {
		return nil, dberr.Wrap(err, resourceCard)
	}
	defer rows.Close()

	card.Elements = []*Element{}
	for rows.Next() {
		e, err := scanElement(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_commission_repo_scan_failed: %w", err)
		}
		card.Elements = append(card.Elements, e)
	}
	return card, rows.Err()
}

func (repository *PostgresRepository) CreateCard(context context.Context, card *Card) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, $3) RETURNING %s`,
		cards.Table, cards.ArtistID, cards.Title, cards.Description, cards.ID)

	err := repository.db.QueryRow(context, query, card.ArtistID, card.Title, card.Description).Scan(&card.ID)
	return dberr.Wrap(err, resourceCard)
}

func (repository *PostgresRepository) DeleteCard(context context.Context, artistID int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, cards.Table, cards.ArtistID)
	_, err := repository.db.Exec(context, query, artistID)
	return dberr.Wrap(err, resourceCard)
}

// AddElement appends the element after the current last position.
func (repository *PostgresRepository) AddElement(context context.Context, cardID int64, e *Element) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		SELECT $1, $2, $3, $4::float8, $5, COALESCE(MAX(%s) + 1, 0)
		FROM %s WHERE %s = $1
		RETURNING %s, %s`,
		elements.Table, elements.CardID, elements.Title, elements.Description, elements.Price, elements.ExampleImageURLs, elements.Position,
		elements.Position,
		elements.Table, elements.CardID,
		elements.ID, elements.Position,
	)

	err := repository.db.QueryRow(context, query, cardID, e.Title, e.Description, e.Price, e.ExampleImageURLs).
		Scan(&e.ID, &e.Position)
	return dberr.Wrap(err, "Commission card element")
}

func (repository *PostgresRepository) FindElement(context context.Context, cardID, elementID int64) (*Element, error) {
	query := selectElementQuery + fmt.Sprintf(` WHERE %s = $1 AND %s = $2`, elements.CardID, elements.ID)
	e, err := scanElement(repository.db.QueryRow(context, query, cardID, elementID))
	if err != nil {
		return nil, dberr.Wrap(err, "Commission card element")
	}
	return e, nil
}

func (repository *PostgresRepository) UpdateElement(context context.Context, cardID int64, e *Element) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $3, %s = $4, %s = $5::float8, %s = $6
		WHERE %s = $1 AND %s = $2`,
		elements.Table, elements.Title, elements.Description, elements.Price, elements.ExampleImageURLs,
		elements.CardID, elements.ID,
	)
	_, err := repository.db.Exec(context, query, cardID, e.ID, e.Title, e.Description, e.Price, e.ExampleImageURLs)
	return dberr.Wrap(err, "Commission card element")
}

func (repository *PostgresRepository) DeleteElement(context context.Context, cardID, elementID int64) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`, elements.Table, elements.CardID, elements.ID)
	cmd, err := repository.db.Exec(context, query, cardID, elementID)
	if err != nil {
		return false, dberr.Wrap(err, "Commission card element")
	}
	return cmd.RowsAffected() > 0, nil
}
