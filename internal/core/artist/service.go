// Copyright (c) 2026 CoPla. All rights reserved.

package artist

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/copla/copla/internal/platform/apperr"
	"github.com/copla/copla/internal/platform/validate"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (service *Service) ListArtists(context context.Context, filter Filter) ([]*Artist, error) {
	artists, err := service.repo.ListArtists(context, filter)
	if err != nil {
		return nil, fmt.Errorf("artist_service_list_failed: %w", err)
	}
	if artists == nil {
		artists = []*Artist{}
	}
	return artists, nil
}

func (service *Service) SetCommissionStatus(context context.Context, username string, open bool) (*CommissionStatus, error) {
	artistID, err := service.repo.FindArtistID(context, username)
	if err != nil {
		return nil, err
	}

	if err := service.repo.SetCommissionStatus(context, artistID, open); err != nil {
		return nil, fmt.Errorf("artist_service_commission_status_failed: %w", err)
	}

	service.logger.Info("commission_status_updated", slog.Int64("artist_id", artistID), slog.Bool("open", open))

	return &CommissionStatus{Message: "Commission status updated successfully", IsOpenForCommissions: open}, nil
}

/*
AddTag attaches a known tag to the artist.

Returns:
  - string: confirmation message
  - error: validation, apperr.NotFound for unknown tags, or storage failures
*/
func (service *Service) AddTag(context context.Context, username, tagName string) (string, error) {
	tagName = strings.TrimSpace(tagName)

	validator := &validate.Validator{}
	validator.Custom(FieldTagName, tagName == "", "Tag name must be provided")
	if err := validator.Err(); err != nil {
		return "", err
	}

	artistID, err := service.repo.FindArtistID(context, username)
	if err != nil {
		return "", err
	}

	found, err := service.repo.AddTag(context, artistID, tagName)
	if err != nil {
		return "", fmt.Errorf("artist_service_add_tag_failed: %w", err)
	}
	if !found {
		return "", apperr.NotFoundMessage(fmt.Sprintf("Tag '%s' not found", tagName))
	}

	return fmt.Sprintf("Tag '%s' added successfully", tagName), nil
}

func (service *Service) RemoveTag(context context.Context, username, tagName string) (string, error) {
	artistID, err := service.repo.FindArtistID(context, username)
	if err != nil {
		return "", err
	}

	removed, err := service.repo.RemoveTag(context, artistID, tagName)
	if err != nil {
		return "", fmt.Errorf("artist_service_remove_tag_failed: %w", err)
	}
	if !removed {
		return "", apperr.NotFoundMessage(fmt.Sprintf("Tag '%s' not associated with this artist", tagName))
	}

	return fmt.Sprintf("Tag '%s' removed successfully", tagName), nil
}

// SetVerified flips the verification badge. Accounts without an artist profile are ignored.
func (service *Service) SetVerified(context context.Context, userID int64, verified bool) error {
	if err := service.repo.SetVerified(context, userID, verified); err != nil {
		return fmt.Errorf("artist_service_set_verified_failed: %w", err)
	}
	service.logger.Info("artist_verification_changed", slog.Int64("artist_id", userID), slog.Bool("verified", verified))
	return nil
}
