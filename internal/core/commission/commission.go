// Copyright (c) 2026 CoPla. All rights reserved.

/*
Package commission manages an artist's commission card: a single priced menu of
offerings (elements) shown on their profile.

An artist owns at most one card. The cheapest priced element feeds the
lowest_price field of the artist directory.
*/
package commission

import "context"

// Card is an artist's commission menu.
type Card struct {
	ID          int64      `json:"id"`
	ArtistID    int64      `json:"-"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Elements    []*Element `json:"elements"`
}

// Element is one offering on a card. A nil Price means "ask".
type Element struct {
	ID               int64    `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Price            *float64 `json:"price"`
	ExampleImageURLs []string `json:"example_image_urls"`
	Position         int      `json:"position"`
}

// ElementUpdate is a partial change. Set* flags distinguish "absent" from "cleared".
type ElementUpdate struct {
	Title            *string
	Description      *string
	SetPrice         bool
	Price            *float64
	SetImages        bool
	ExampleImageURLs []string
}

const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldPrice       = "price"
	FieldImages      = "example_image_urls"
)

// ArtistResolver maps an account name to its artist profile id.
type ArtistResolver interface {
	FindArtistID(context context.Context, username string) (int64, error)
}

type Repository interface {
	// FindCard loads the artist's card with elements ordered by position.
	FindCard(context context.Context, artistID int64) (*Card, error)

	// CreateCard fails with apperr.Conflict when the artist already has one.
	CreateCard(context context.Context, card *Card) error

	DeleteCard(context context.Context, artistID int64) error

	AddElement(context context.Context, cardID int64, element *Element) error
	FindElement(context context.Context, cardID, elementID int64) (*Element, error)
	UpdateElement(context context.Context, cardID int64, element *Element) error
	DeleteElement(context context.Context, cardID, elementID int64) (bool, error)
}
