// Copyright (c) 2026 CoPla. All rights reserved.

package profile

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/copla/copla/internal/platform/apperr"
	"github.com/copla/copla/internal/platform/constants"
	"github.com/copla/copla/internal/platform/validate"
	"github.com/copla/copla/internal/users/auth"
)

// Service owns the social link lifecycle and the artist badge side effects.
type Service struct {
	users   auth.UserRepository
	repo    Repository
	artists ArtistVerifier
	sealer  Sealer
	logger  *slog.Logger
}

// NewService constructs a new profile [Service].
func NewService(users auth.UserRepository, repo Repository, artists ArtistVerifier, sealer Sealer, logger *slog.Logger) *Service {
	return &Service{users: users, repo: repo, artists: artists, sealer: sealer, logger: logger}
}

// sessionBinding ties a sealed session to its owner so rows cannot be swapped.
func sessionBinding(userID int64) []byte {
	return []byte("bluesky-session:" + strconv.FormatInt(userID, 10))
}

func blueskyURL(handle string) string {
	return constants.BlueskyProfileURLPrefix + handle
}

/*
AddBluesky records a handle typed by the user. Manual links are never verified.

Parameters:
  - context: context.Context
  - username: string (the owner, already authorized)
  - handle: string

Returns:
  - *Profile: the stored link
  - error: validation, conflict or storage failures
*/
func (service *Service) AddBluesky(context context.Context, username, handle string) (*Profile, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")

	validator := &validate.Validator{}
	validator.Required(FieldUsername, handle).Handle(FieldUsername, handle)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	user, err := service.users.FindByUsername(context, username)
	if err != nil {
		return nil, err
	}

	profile := &Profile{
		UserID:     user.ID,
		Platform:   constants.PlatformBluesky,
		Username:   handle,
		ProfileURL: blueskyURL(handle),
	}
	if err := service.repo.Create(context, profile); err != nil {
		return nil, fmt.Errorf("profile_service_add_failed: %w", err)
	}

	service.logger.Info("social_profile_added", slog.Int64("user_id", user.ID), slog.String("platform", profile.Platform))
	return profile, nil
}

/*
LinkVerified stores a provider-verified Bluesky link for the caller.

Description: The link is upserted as verified. A non-empty session export is
sealed and marks the link sync-capable. Artists receive the verified badge.

Parameters:
  - context: context.Context
  - userID: int64 (the authenticated caller)
  - link: VerifiedLink

Returns:
  - error: validation or storage failures
*/
func (service *Service) LinkVerified(context context.Context, userID int64, link VerifiedLink) error {
	link.Handle = strings.TrimPrefix(strings.TrimSpace(link.Handle), "@")

	validator := &validate.Validator{}
	validator.Required(FieldHandle, link.Handle).Handle(FieldHandle, link.Handle).
		Custom(FieldDID, link.DID != "" && !strings.HasPrefix(link.DID, "did:"), "Must be a DID")
	if err := validator.Err(); err != nil {
		return err
	}

	user, err := service.users.FindByID(context, userID)
	if err != nil {
		return err
	}

	profile := &Profile{
		UserID:      user.ID,
		Platform:    constants.PlatformBluesky,
		Username:    link.Handle,
		ProfileURL:  blueskyURL(link.Handle),
		IsVerified:  true,
		DID:         link.DID,
		DisplayName: link.DisplayName,
	}

	var sealed string
	if strings.TrimSpace(link.SessionData) != "" {
		sealed, err = service.sealer.Seal([]byte(link.SessionData), sessionBinding(user.ID))
		if err != nil {
			// The link is still useful without sync.
			service.logger.Error("session_seal_failed", slog.Int64("user_id", user.ID), slog.Any("error", err))
			sealed = ""
		}
	}
	profile.CanSync = sealed != ""

	if err := service.repo.UpsertBluesky(context, profile, sealed); err != nil {
		return fmt.Errorf("profile_service_link_failed: %w", err)
	}

	if user.IsArtist() {
		if err := service.artists.SetVerified(context, user.ID, true); err != nil {
			return fmt.Errorf("profile_service_verify_artist_failed: %w", err)
		}
	}

	service.logger.Info("bluesky_account_linked",
		slog.Int64("user_id", user.ID),
		slog.String("did", link.DID),
		slog.Bool("can_sync", profile.CanSync),
	)
	return nil
}

/*
BlueskySession returns the owner's stored provider session for a follow sync.

Returns:
  - *StoredSession: decrypted export
  - error: apperr.NotFound when no verified or sync-capable link exists
*/
func (service *Service) BlueskySession(context context.Context, username string) (*StoredSession, error) {
	user, err := service.users.FindByUsername(context, username)
	if err != nil {
		return nil, err
	}

	profile, sealed, err := service.repo.FindVerifiedBluesky(context, user.ID)
	if err != nil {
		if appErr := apperr.As(err); appErr != nil && appErr.HTTPStatus == 404 {
			return nil, apperr.NotFoundMessage("No verified Bluesky account found")
		}
		return nil, fmt.Errorf("profile_service_session_lookup_failed: %w", err)
	}

	if !profile.CanSync || sealed == "" {
		return nil, apperr.NotFoundMessage("No Bluesky account with sync capabilities found. Please re-verify your account to enable sync.")
	}

	plaintext, err := service.sealer.Open(sealed, sessionBinding(user.ID))
	if err != nil {
		service.logger.Error("session_open_failed", slog.Int64("user_id", user.ID), slog.Any("error", err))
		appErr := apperr.Internal(err)
		appErr.Message = "Failed to retrieve sync credentials. Please re-verify your account."
		return nil, appErr
	}

	return &StoredSession{SessionData: string(plaintext), Message: "Session data retrieved for sync"}, nil
}

/*
Unlink removes a social link. When an artist loses their last verified
Bluesky link the verified badge is withdrawn.
*/
func (service *Service) Unlink(context context.Context, username, platform, account string) error {
	user, err := service.users.FindByUsername(context, username)
	if err != nil {
		return err
	}

	removed, err := service.repo.Delete(context, user.ID, platform, account)
	if err != nil {
		return fmt.Errorf("profile_service_unlink_failed: %w", err)
	}
	if removed == nil {
		return apperr.NotFoundMessage("Social account not found")
	}

	wasVerifiedBluesky := strings.EqualFold(removed.Platform, constants.PlatformBluesky) && removed.IsVerified
	if user.IsArtist() && wasVerifiedBluesky {
		stillVerified, err := service.repo.HasVerified(context, user.ID, constants.PlatformBluesky)
		if err != nil {
			return fmt.Errorf("profile_service_verified_check_failed: %w", err)
		}
		if !stillVerified {
			if err := service.artists.SetVerified(context, user.ID, false); err != nil {
				return fmt.Errorf("profile_service_unverify_artist_failed: %w", err)
			}
		}
	}

	service.logger.Info("social_profile_unlinked", slog.Int64("user_id", user.ID), slog.String("platform", removed.Platform))
	return nil
}
