// Copyright (c) 2026 CoPla. All rights reserved.

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copla/copla/internal/platform/sec"
)

func newTokens(t *testing.T, issuer string) *sec.TokenService {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return sec.NewTokenServiceFromKey(key, &key.PublicKey, issuer)
}

/*
TestTokenService_RoundTrip verifies a freshly issued token carries its claims.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	tokens := newTokens(t, "copla.test")

	raw, err := tokens.GenerateSessionToken("sess-1", 7, "ana", string(sec.RoleArtist), time.Hour)
	require.NoError(t, err)

	claims, err := tokens.VerifyToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", claims.SessionID())
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "ana", claims.Username)
	assert.Equal(t, "7", claims.Subject)
}

/*
TestTokenService_Rejects covers expired, foreign and malformed tokens.
*/
func TestTokenService_Rejects(t *testing.T) {
	tokens := newTokens(t, "copla.test")

	expired, err := tokens.GenerateSessionToken("sess-1", 7, "ana", "user", -time.Minute)
	require.NoError(t, err)

	foreign, err := newTokens(t, "copla.test").GenerateSessionToken("sess-1", 7, "ana", "user", time.Hour)
	require.NoError(t, err)

	otherIssuer, err := newTokens(t, "elsewhere").GenerateSessionToken("sess-1", 7, "ana", "user", time.Hour)
	require.NoError(t, err)

	noSession, err := tokens.GenerateSessionToken("", 7, "ana", "user", time.Hour)
	require.NoError(t, err)

	hmac, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"iss": "copla.test", "jti": "x"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong_key", foreign},
		{"wrong_issuer", otherIssuer},
		{"missing_session_id", noSession},
		{"hmac_algorithm", hmac},
		{"garbage", "not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.VerifyToken(tt.token)
			assert.ErrorIs(t, err, sec.ErrInvalidToken)
		})
	}
}

/*
TestUserRole_AtLeast checks the admin > artist > user ordering.
*/
func TestUserRole_AtLeast(t *testing.T) {
	tests := []struct {
		role   sec.UserRole
		target sec.UserRole
		want   bool
	}{
		{sec.RoleAdmin, sec.RoleArtist, true},
		{sec.RoleArtist, sec.RoleArtist, true},
		{sec.RoleUser, sec.RoleArtist, false},
		{sec.UserRole("guest"), sec.RoleUser, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"_"+string(tt.target), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.AtLeast(tt.target))
		})
	}
	assert.False(t, sec.UserRole("guest").Valid())
}

/*
TestPasswordHash verifies bcrypt hashing and comparison.
*/
func TestPasswordHash(t *testing.T) {
	hash, err := sec.HashPassword("correct-horse")
	require.NoError(t, err)

	assert.NotEqual(t, "correct-horse", hash)
	assert.True(t, sec.CheckPasswordHash("correct-horse", hash))
	assert.False(t, sec.CheckPasswordHash("battery-staple", hash))
}
