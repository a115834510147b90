// Copyright (c) 2026 CoPla. All rights reserved.

package artist

import "context"

type Repository interface {
	ListArtists(context context.Context, filter Filter) ([]*Artist, error)

	// FindArtistID resolves the artist profile of an account, or apperr.NotFound.
	FindArtistID(context context.Context, username string) (int64, error)

	SetCommissionStatus(context context.Context, artistID int64, open bool) error
	SetVerified(context context.Context, artistID int64, verified bool) error

	// AddTag links an existing tag by case-insensitive name. Returns false when no such tag exists.
	AddTag(context context.Context, artistID int64, tagName string) (bool, error)

	// RemoveTag unlinks a tag. Returns false when the artist did not carry it.
	RemoveTag(context context.Context, artistID int64, tagName string) (bool, error)
}
