// Copyright (c) 2026 CoPla. All rights reserved.

// Package sec holds password hashing, account roles and the signed session
// tokens carried by the copla_session cookie.
package sec

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken wraps every verification failure.
var ErrInvalidToken = errors.New("sec_invalid_token")

// AuthClaims is the session token payload.
//
// The jti names the session record in Redis, so deleting that record revokes
// the token before it expires. Claim names are short to keep the cookie small.
type AuthClaims struct {
	jwt.RegisteredClaims

	UserID   int64  `json:"uid"`
	Username string `json:"unm"`
	Role     string `json:"rol"`
}

// SessionID returns the jti claim.
func (claims *AuthClaims) SessionID() string {
	return claims.ID
}

// TokenService issues and checks RS256 session tokens.
type TokenService struct {
	signingKey   *rsa.PrivateKey
	verifyingKey *rsa.PublicKey
	issuer       string
	parser       *jwt.Parser
}

// NewTokenService loads the PEM key pair named by JWT_PRIVATE_KEY_PATH and
// JWT_PUBLIC_KEY_PATH.
func NewTokenService(privateKeyPath, publicKeyPath, issuer string) (*TokenService, error) {
	privateKey, err := readPEM(privateKeyPath, jwt.ParseRSAPrivateKeyFromPEM)
	if err != nil {
		return nil, err
	}
	publicKey, err := readPEM(publicKeyPath, jwt.ParseRSAPublicKeyFromPEM)
	if err != nil {
		return nil, err
	}
	return NewTokenServiceFromKey(privateKey, publicKey, issuer), nil
}

func readPEM[K any](path string, parse func([]byte) (K, error)) (K, error) {
	var zero K

	data, err := os.ReadFile(path)
	if err != nil {
		return zero, fmt.Errorf("sec_read_key_failed: %s: %w", path, err)
	}
	key, err := parse(data)
	if err != nil {
		return zero, fmt.Errorf("sec_parse_key_failed: %s: %w", path, err)
	}
	return key, nil
}

// NewTokenServiceFromKey is used by tests with in-memory keys.
func NewTokenServiceFromKey(privateKey *rsa.PrivateKey, publicKey *rsa.PublicKey, issuer string) *TokenService {
	return &TokenService{
		signingKey:   privateKey,
		verifyingKey: publicKey,
		issuer:       issuer,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithExpirationRequired(),
		),
	}
}

// GenerateSessionToken signs a token for sessionID that expires after ttl.
func (service *TokenService) GenerateSessionToken(sessionID string, userID int64, username, role string, ttl time.Duration) (string, error) {
	issued := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(ttl)),
		},
		UserID:   userID,
		Username: username,
		Role:     role,
	})

	signed, err := token.SignedString(service.signingKey)
	if err != nil {
		return "", fmt.Errorf("sec_sign_token_failed: %w", err)
	}
	return signed, nil
}

// VerifyToken checks signature, issuer and expiry, and requires a session id.
func (service *TokenService) VerifyToken(raw string) (*AuthClaims, error) {
	claims := &AuthClaims{}

	_, err := service.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return service.verifyingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: missing session id", ErrInvalidToken)
	}
	return claims, nil
}
