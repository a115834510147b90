// Copyright (c) 2026 CoPla. All rights reserved.

package commission

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/copla/copla/internal/platform/apperr"
	"github.com/copla/copla/internal/platform/validate"
	"github.com/copla/copla/pkg/pointer"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 2000
	maxExampleImages     = 10
)

var (
	errCardExists      = apperr.Conflict("Artist already has a commission card. Use PUT to update or DELETE first.")
	errElementNotFound = apperr.NotFoundMessage("Commission card element not found")
)

// Service enforces the one-card-per-artist rule and element validation.
type Service struct {
	artists ArtistResolver
	repo    Repository
	logger  *slog.Logger
}

func NewService(artists ArtistResolver, repo Repository, logger *slog.Logger) *Service {
	return &Service{artists: artists, repo: repo, logger: logger}
}

func (service *Service) cardOf(context context.Context, username string) (*Card, error) {
	artistID, err := service.artists.FindArtistID(context, username)
	if err != nil {
		return nil, err
	}
	return service.repo.FindCard(context, artistID)
}

func (service *Service) GetCard(context context.Context, username string) (*Card, error) {
	return service.cardOf(context, username)
}

/*
CreateCard opens an empty card for the artist.

Returns:
  - *Card: the stored card
  - error: apperr.Conflict when a card already exists
*/
func (service *Service) CreateCard(context context.Context, username, title, description string) (*Card, error) {
	artistID, err := service.artists.FindArtistID(context, username)
	if err != nil {
		return nil, err
	}

	card := &Card{ArtistID: artistID, Title: strings.TrimSpace(title), Description: strings.TrimSpace(description), Elements: []*Element{}}

	validator := &validate.Validator{}
	validator.MaxLen(FieldTitle, card.Title, maxTitleLength).MaxLen(FieldDescription, card.Description, maxDescriptionLength)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.repo.CreateCard(context, card); err != nil {
		if apperr.HasCode(err, apperr.CodeConflict) {
			return nil, errCardExists
		}
		return nil, fmt.Errorf("commission_service_create_card_failed: %w", err)
	}

	service.logger.Info("commission_card_created", slog.Int64("artist_id", artistID))
	return card, nil
}

func (service *Service) DeleteCard(context context.Context, username string) error {
	card, err := service.cardOf(context, username)
	if err != nil {
		return err
	}
	if err := service.repo.DeleteCard(context, card.ArtistID); err != nil {
		return fmt.Errorf("commission_service_delete_card_failed: %w", err)
	}
	service.logger.Info("commission_card_deleted", slog.Int64("artist_id", card.ArtistID))
	return nil
}

func validateElement(element *Element) error {
	validator := &validate.Validator{}
	validator.Custom(FieldTitle, element.Title == "", "Element title is required").
		Custom(FieldDescription, element.Description == "", "Element description is required").
		MaxLen(FieldTitle, element.Title, maxTitleLength).
		MaxLen(FieldDescription, element.Description, maxDescriptionLength).
		NonNegative(FieldPrice, element.Price).
		Custom(FieldImages, len(element.ExampleImageURLs) > maxExampleImages, "Too many example images")
	return validator.Err()
}

/*
AddElement appends an offering to the artist's card.

Parameters:
  - context: context.Context
  - username: string
  - element: *Element (ID and Position are assigned)

Returns:
  - error: validation, missing card or storage failures
*/
func (service *Service) AddElement(context context.Context, username string, element *Element) error {
	element.Title = strings.TrimSpace(element.Title)
	element.Description = strings.TrimSpace(element.Description)
	if element.ExampleImageURLs == nil {
		element.ExampleImageURLs = []string{}
	}
	if err := validateElement(element); err != nil {
		return err
	}

	card, err := service.cardOf(context, username)
	if err != nil {
		return err
	}

	if err := service.repo.AddElement(context, card.ID, element); err != nil {
		return fmt.Errorf("commission_service_add_element_failed: %w", err)
	}
	return nil
}

func (service *Service) UpdateElement(context context.Context, username string, elementID int64, update ElementUpdate) (*Element, error) {
	card, err := service.cardOf(context, username)
	if err != nil {
		return nil, err
	}

	element, err := service.repo.FindElement(context, card.ID, elementID)
	if err != nil {
		if appErr := apperr.As(err); appErr != nil && appErr.HTTPStatus == 404 {
			return nil, errElementNotFound
		}
		return nil, err
	}

	element.Title = strings.TrimSpace(pointer.Fallback(update.Title, element.Title))
	element.Description = strings.TrimSpace(pointer.Fallback(update.Description, element.Description))
	if update.SetPrice {
		element.Price = update.Price
	}
	if update.SetImages {
		element.ExampleImageURLs = update.ExampleImageURLs
		if element.ExampleImageURLs == nil {
			element.ExampleImageURLs = []string{}
		}
	}

	if err := validateElement(element); err != nil {
		return nil, err
	}

	if err := service.repo.UpdateElement(context, card.ID, element); err != nil {
		return nil, fmt.Errorf("commission_service_update_element_failed: %w", err)
	}
	return element, nil
}

func (service *Service) DeleteElement(context context.Context, username string, elementID int64) error {
	card, err := service.cardOf(context, username)
	if err != nil {
		return err
	}

	deleted, err := service.repo.DeleteElement(context, card.ID, elementID)
	if err != nil {
		return fmt.Errorf("commission_service_delete_element_failed: %w", err)
	}
	if !deleted {
		return errElementNotFound
	}
	return nil
}
