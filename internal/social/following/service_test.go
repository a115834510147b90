// Copyright (c) 2026 CoPla. All rights reserved.

package following_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copla/copla/internal/platform/apperr"
	"github.com/copla/copla/internal/social/following"
	"github.com/copla/copla/internal/users/auth"
)

type oneUser struct{ auth.User }

func (o oneUser) FindByID(context.Context, int64) (*auth.User, error) { return &o.User, nil }

func (o oneUser) FindByEmail(context.Context, string) (*auth.User, error) {
	return nil, apperr.NotFound("User")
}

func (o oneUser) FindByUsername(_ context.Context, name string) (*auth.User, error) {
	if name != o.Username {
		return nil, apperr.NotFound("User")
	}
	return &o.User, nil
}

func (o oneUser) Create(context.Context, *auth.User) error { return nil }

// memoryEdges links any handle present in known.
type memoryEdges struct {
	known    map[string]int64
	replaced []following.Account
}

func (m *memoryEdges) List(_ context.Context, _ int64, openOnly bool) ([]*following.Edge, error) {
	var out []*following.Edge
	for i, account := range m.replaced {
		id, linked := m.known[account.Handle]
		if openOnly && !linked {
			continue
		}
		out = append(out, &following.Edge{ID: int64(i + 1), BlueskyHandle: account.Handle, IsLinked: linked, LinkedArtistID: id})
	}
	return out, nil
}

func (m *memoryEdges) Replace(_ context.Context, _ int64, accounts []following.Account) (following.SyncResult, error) {
	m.replaced = accounts
	result := following.SyncResult{SyncedCount: len(accounts)}
	for _, account := range accounts {
		if _, ok := m.known[account.Handle]; ok {
			result.LinkedCount++
		}
	}
	return result, nil
}

func newService() (*following.Service, *memoryEdges) {
	repo := &memoryEdges{known: map[string]int64{"ana.bsky.social": 1}}
	users := oneUser{auth.User{ID: 2, Username: "bo"}}
	return following.NewService(users, repo, slog.New(slog.NewJSONHandler(io.Discard, nil))), repo
}

/*
TestService_Sync normalizes handles, drops duplicates and reports link counts.
*/
func TestService_Sync(t *testing.T) {
	service, repo := newService()

	result, err := service.Sync(context.Background(), "bo", []following.Account{
		{Handle: "@Ana.bsky.social", DID: "did:plc:ana"},
		{Handle: "ana.bsky.social"},
		{Handle: "cy.bsky.social", DisplayName: "Cy"},
	})
	require.NoError(t, err)
	assert.Equal(t, following.SyncResult{SyncedCount: 2, LinkedCount: 1}, result)
	require.Len(t, repo.replaced, 2)
	assert.Equal(t, "ana.bsky.social", repo.replaced[0].Handle)
	assert.Equal(t, "did:plc:ana", repo.replaced[0].DID)
}

/*
TestService_Sync_Rejects covers invalid handles, oversize lists and unknown users.
*/
func TestService_Sync_Rejects(t *testing.T) {
	service, repo := newService()
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		accounts []following.Account
		status   int
	}{
		{"invalid_handle", "bo", []following.Account{{Handle: "not a handle"}}, 400},
		{"too_many", "bo", make([]following.Account, following.MaxSyncAccounts+1), 400},
		{"unknown_user", "ghost", []following.Account{{Handle: "ana.bsky.social"}}, 404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Sync(ctx, tt.username, tt.accounts)
			require.Error(t, err)
			assert.Equal(t, tt.status, apperr.As(err).HTTPStatus)
		})
	}
	assert.Nil(t, repo.replaced)
}

/*
TestService_List never returns a nil slice.
*/
func TestService_List(t *testing.T) {
	service, _ := newService()

	edges, err := service.List(context.Background(), "bo", true)
	require.NoError(t, err)
	assert.NotNil(t, edges)
	assert.Empty(t, edges)
}
