// Copyright (c) 2026 CoPla. All rights reserved.

package auth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copla/copla/internal/platform/apperr"
	"github.com/copla/copla/internal/platform/sec"
	"github.com/copla/copla/internal/users/auth"
)

// # Fakes

type memoryUsers struct {
	mu     sync.Mutex
	nextID int64
	users  []*auth.User
}

func (m *memoryUsers) find(match func(*auth.User) bool) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if match(user) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (m *memoryUsers) FindByID(_ context.Context, id int64) (*auth.User, error) {
	return m.find(func(u *auth.User) bool { return u.ID == id })
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	return m.find(func(u *auth.User) bool { return u.Email == email })
}

func (m *memoryUsers) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	return m.find(func(u *auth.User) bool { return u.Username == username })
}

func (m *memoryUsers) Create(_ context.Context, user *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	copied := *user
	m.users = append(m.users, &copied)
	return nil
}

type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]int64
}

func (m *memorySessions) Create(_ context.Context, sessionID string, userID int64, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions == nil {
		m.sessions = map[string]int64{}
	}
	m.sessions[sessionID] = userID
	return nil
}

func (m *memorySessions) Exists(_ context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[sessionID]
	return ok, nil
}

func (m *memorySessions) Revoke(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

func newService(t *testing.T) (*auth.Service, *memorySessions) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	sessions := &memorySessions{}
	tokens := sec.NewTokenServiceFromKey(key, &key.PublicKey, "copla.test")
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	return auth.NewService(&memoryUsers{}, sessions, tokens, logger), sessions
}

/*
TestService_Register covers validation, role assignment and duplicate identities.
*/
func TestService_Register(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	artist, err := service.Register(ctx, auth.RegisterInput{
		Username: "ana", Email: "ana@copla.art", Password: "correct-horse", IsArtist: true,
	})
	require.NoError(t, err)
	assert.Equal(t, sec.RoleArtist, artist.Role)
	assert.NotEqual(t, "correct-horse", artist.PasswordHash)

	member, err := service.Register(ctx, auth.RegisterInput{
		Username: "bo", Email: "bo@copla.art", Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, sec.RoleUser, member.Role)

	short, err := service.Register(ctx, auth.RegisterInput{
		Username: "Di", Email: "di@copla.art", Password: "correct-horse", IsArtist: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Di", short.Username)

	tests := []struct {
		name  string
		input auth.RegisterInput
		code  string
	}{
		{"duplicate_name", auth.RegisterInput{Username: "ana", Email: "x@copla.art", Password: "correct-horse"}, "CONFLICT"},
		{"duplicate_email", auth.RegisterInput{Username: "cy", Email: "ana@copla.art", Password: "correct-horse"}, "CONFLICT"},
		{"short_password", auth.RegisterInput{Username: "cy", Email: "cy@copla.art", Password: "short"}, "VALIDATION_ERROR"},
		{"empty_name", auth.RegisterInput{Username: "  ", Email: "cy@copla.art", Password: "correct-horse"}, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Register(ctx, tt.input)
			appErr := apperr.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.code, appErr.Code)
		})
	}
}

/*
TestService_LoginAndLogout walks a session through issue, verify and revoke.
*/
func TestService_LoginAndLogout(t *testing.T) {
	service, sessions := newService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, auth.RegisterInput{
		Username: "ana", Email: "ana@copla.art", Password: "correct-horse", IsArtist: true,
	})
	require.NoError(t, err)

	// Wrong password and unknown user share the same error
	_, err = service.Login(ctx, auth.LoginInput{Login: "ana", Password: "wrong-horse"})
	assert.Equal(t, "Invalid login credentials", apperr.As(err).Message)
	_, err = service.Login(ctx, auth.LoginInput{Login: "nobody", Password: "correct-horse"})
	assert.Equal(t, "Invalid login credentials", apperr.As(err).Message)

	session, err := service.Login(ctx, auth.LoginInput{Login: "ana@copla.art", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "ana", session.User.Username)

	claims, err := service.VerifySession(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, "ana", claims.Username)
	assert.Equal(t, string(sec.RoleArtist), claims.Role)
	assert.Len(t, sessions.sessions, 1)

	require.NoError(t, service.Logout(ctx, claims.SessionID()))
	require.NoError(t, service.Logout(ctx, claims.SessionID()))

	_, err = service.VerifySession(ctx, session.Token)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

/*
TestService_VerifySession_RejectsGarbage ensures malformed tokens never pass.
*/
func TestService_VerifySession_RejectsGarbage(t *testing.T) {
	service, _ := newService(t)

	_, err := service.VerifySession(context.Background(), "not-a-token")
	require.Error(t, err)
	assert.Equal(t, 401, apperr.As(err).HTTPStatus)
}
