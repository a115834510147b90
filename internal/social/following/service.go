// Copyright (c) 2026 CoPla. All rights reserved.

package following

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/copla/copla/internal/platform/validate"
	"github.com/copla/copla/internal/users/auth"
)

// Service rebuilds and lists follow edges.
type Service struct {
	users  auth.UserRepository
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new following [Service].
func NewService(users auth.UserRepository, repo Repository, logger *slog.Logger) *Service {
	return &Service{users: users, repo: repo, logger: logger}
}

func (service *Service) List(context context.Context, username string, openOnly bool) ([]*Edge, error) {
	user, err := service.users.FindByUsername(context, username)
	if err != nil {
		return nil, err
	}

	edges, err := service.repo.List(context, user.ID, openOnly)
	if err != nil {
		return nil, fmt.Errorf("following_service_list_failed: %w", err)
	}
	if edges == nil {
		edges = []*Edge{}
	}
	return edges, nil
}

// normalize lowercases handles and keeps the first occurrence of each.
func normalize(accounts []Account) ([]Account, error) {
	seen := make(map[string]struct{}, len(accounts))
	out := make([]Account, 0, len(accounts))

	validator := &validate.Validator{}
	for _, account := range accounts {
		account.Handle = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(account.Handle), "@"))
		validator.Handle(FieldFollowing, account.Handle)
		if _, dup := seen[account.Handle]; dup {
			continue
		}
		seen[account.Handle] = struct{}{}
		out = append(out, account)
	}

	return out, validator.Err()
}

/*
Sync rebuilds the user's follow edges from the submitted list.

Parameters:
  - context: context.Context
  - username: string (the owner, already authorized)
  - accounts: []Account

Returns:
  - SyncResult: edges kept and how many link to CoPla accounts
  - error: validation or storage failures
*/
func (service *Service) Sync(context context.Context, username string, accounts []Account) (SyncResult, error) {
	validator := &validate.Validator{}
	validator.Custom(FieldFollowing, len(accounts) > MaxSyncAccounts, fmt.Sprintf("At most %d accounts per sync", MaxSyncAccounts))
	if err := validator.Err(); err != nil {
		return SyncResult{}, err
	}

	normalized, err := normalize(accounts)
	if err != nil {
		return SyncResult{}, err
	}

	user, err := service.users.FindByUsername(context, username)
	if err != nil {
		return SyncResult{}, err
	}

	result, err := service.repo.Replace(context, user.ID, normalized)
	if err != nil {
		return SyncResult{}, fmt.Errorf("following_service_sync_failed: %w", err)
	}

	service.logger.Info("following_synced",
		slog.Int64("user_id", user.ID),
		slog.Int("synced", result.SyncedCount),
		slog.Int("linked", result.LinkedCount),
	)
	return result, nil
}
