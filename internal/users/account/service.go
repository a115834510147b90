// Copyright (c) 2026 CoPla. All rights reserved.

package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/copla/copla/internal/platform/sec"
	"github.com/copla/copla/internal/users/auth"
	"github.com/copla/copla/pkg/pagination"
	"github.com/copla/copla/pkg/pointer"
)

// # Service Layer

// Service orchestrates profile reads and owner edits.
type Service struct {
	accountRepository AccountRepository
	logger            *slog.Logger
}

// NewService constructs a new [Service].
func NewService(accountRepo AccountRepository, logger *slog.Logger) *Service {
	return &Service{accountRepository: accountRepo, logger: logger}
}

// Me builds the caller description from session claims. Nil claims mean anonymous.
func (service *Service) Me(claims *sec.AuthClaims) Me {
	if claims == nil {
		return Me{}
	}
	role := sec.UserRole(claims.Role)
	return Me{
		ID:       claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
		IsArtist: role.IsArtist(),
	}
}

/*
ListUsers returns a page of public accounts.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []*auth.User: Accounts without contact details
  - int: Total number of accounts
  - error: Storage failures
*/
func (service *Service) ListUsers(context context.Context, params pagination.Params) ([]*auth.User, int, error) {
	users, total, err := service.accountRepository.List(context, params)
	if err != nil {
		return nil, 0, fmt.Errorf("account_service_list_failed: %w", err)
	}

	public := make([]*auth.User, 0, len(users))
	for _, user := range users {
		public = append(public, user.Public())
	}
	return public, total, nil
}

/*
GetProfile loads a public profile by name.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *Profile: The user with their linked social accounts
  - error: apperr.NotFound or storage failures
*/
func (service *Service) GetProfile(context context.Context, username string) (*Profile, error) {
	user, err := service.accountRepository.FindByUsername(context, username)
	if err != nil {
		return nil, fmt.Errorf("account_service_get_profile_failed: %w", err)
	}

	links, err := service.accountRepository.SocialLinks(context, user.ID)
	if err != nil {
		return nil, fmt.Errorf("account_service_social_links_failed: %w", err)
	}
	if links == nil {
		links = []SocialLink{}
	}

	return &Profile{User: user.Public(), IsArtist: user.IsArtist(), SocialProfiles: links}, nil
}

// UpdateProfileInput defines the mutable subset of profile fields.
type UpdateProfileInput struct {
	Bio            *string
	ProfilePicPath *string
}

/*
UpdateProfile applies a partial change to the caller's own profile.

Parameters:
  - context: context.Context
  - username: string (already checked against the session)
  - input: UpdateProfileInput

Returns:
  - *auth.User: The updated profile
  - error: Lookup or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, username string, input UpdateProfileInput) (*auth.User, error) {
	user, err := service.accountRepository.FindByUsername(context, username)
	if err != nil {
		return nil, fmt.Errorf("account_service_update_lookup_failed: %w", err)
	}

	user.Bio = pointer.Fallback(input.Bio, user.Bio)
	user.ProfilePicPath = pointer.Fallback(input.ProfilePicPath, user.ProfilePicPath)

	if err := service.accountRepository.Update(context, user); err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	service.logger.Info("user_profile_updated", slog.Int64("user_id", user.ID))

	return user, nil
}
