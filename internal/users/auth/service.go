// Copyright (c) 2026 CoPla. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/copla/copla/internal/platform/apperr"
	"github.com/copla/copla/internal/platform/sec"
	"github.com/copla/copla/internal/platform/validate"
	"github.com/copla/copla/pkg/uuid"
)

// # Contracts & Types

// TokenProvider signs and verifies session tokens.
type TokenProvider interface {
	GenerateSessionToken(sessionID string, userID int64, username, role string, timeToLive time.Duration) (string, error)
	VerifyToken(tokenString string) (*sec.AuthClaims, error)
}

// Service implements registration, login and session verification.
type Service struct {
	userRepository    UserRepository
	sessionRepository SessionRepository
	tokenProvider     TokenProvider
	logger            *slog.Logger
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(userRepo UserRepository, sessionRepo SessionRepository, tokenProv TokenProvider, logger *slog.Logger) *Service {
	return &Service{
		userRepository:    userRepo,
		sessionRepository: sessionRepo,
		tokenProvider:     tokenProv,
		logger:            logger,
	}
}

// # Registration Flow

// RegisterInput holds the data required to create an account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	IsArtist bool
}

/*
Register validates, hashes, and persists a brand new account.

Artists start unverified and closed for commissions.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - error: ValidationError, Conflict (identity exists) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Username).
		Username(FieldName, input.Username).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, MinPasswordLength)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	// Uniqueness is also enforced by the schema; these checks give a friendlier message.
	if _, err := service.userRepository.FindByUsername(context, input.Username); err == nil {
		return nil, apperr.Conflict("Username is already taken")
	}
	if _, err := service.userRepository.FindByEmail(context, input.Email); err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	role := sec.RoleUser
	if input.IsArtist {
		role = sec.RoleArtist
	}

	user := &User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Role:         role,
	}

	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	service.logger.Info("account_registered",
		slog.Int64("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)

	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Login    string // Username or email
	Password string
}

// LoginSession is an established session ready to be written as a cookie.
type LoginSession struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}

/*
Login validates user credentials and opens a session.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Signed token and its owner
  - error: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {
	validator := &validate.Validator{}
	validator.Required(FieldLogin, input.Login).Required(FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	login := strings.TrimSpace(input.Login)

	user, err := service.userRepository.FindByUsername(context, login)
	if err != nil && strings.Contains(login, "@") {
		user, err = service.userRepository.FindByEmail(context, login)
	}

	// Same message for unknown user and wrong password to prevent enumeration.
	if err != nil || !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	sessionID := uuid.New()
	if err := service.sessionRepository.Create(context, sessionID, user.ID, SessionTTL); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	token, err := service.tokenProvider.GenerateSessionToken(sessionID, user.ID, user.Username, string(user.Role), SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	service.logger.Info("login_succeeded", slog.Int64("user_id", user.ID))

	return &LoginSession{
		Token:     token,
		ExpiresAt: time.Now().Add(SessionTTL),
		User:      user,
	}, nil
}

/*
Logout revokes the session. It is idempotent.

Parameters:
  - context: context.Context
  - sessionID: string (jti of the caller's token)

Returns:
  - error: Revocation failures
*/
func (service *Service) Logout(context context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := service.sessionRepository.Revoke(context, sessionID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}
	return nil
}

// # Session Verification

/*
VerifySession checks the token signature and that its session is still
registered. It satisfies middleware.SessionVerifier.

Returns:
  - *sec.AuthClaims: Claims of a live session
  - error: Unauthorized when the token is invalid or revoked
*/
func (service *Service) VerifySession(context context.Context, token string) (*sec.AuthClaims, error) {
	claims, err := service.tokenProvider.VerifyToken(token)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired session").WithCause(err)
	}

	live, err := service.sessionRepository.Exists(context, claims.SessionID())
	if err != nil {
		return nil, fmt.Errorf("auth_service_session_lookup_failed: %w", err)
	}
	if !live {
		return nil, apperr.Unauthorized("Session has been revoked")
	}

	return claims, nil
}
