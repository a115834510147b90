// Copyright (c) 2026 CoPla. All rights reserved.

// Package ctxutil reads and writes the request-scoped values handlers rely on.
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/copla/copla/internal/platform/ctxkey"
	"github.com/copla/copla/internal/platform/sec"
)

var authUserKey = ctxkey.New[*sec.AuthClaims]("auth_user")

func WithRequestID(ctx context.Context, id string) context.Context {
	return ctxkey.RequestID.With(ctx, id)
}

// GetRequestID returns "" outside of a request.
func GetRequestID(ctx context.Context) string {
	id, _ := ctxkey.RequestID.From(ctx)
	return id
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return ctxkey.Logger.With(ctx, logger)
}

// GetLogger falls back to slog.Default so callers never nil-check.
func GetLogger(ctx context.Context) *slog.Logger {
	if logger, ok := ctxkey.Logger.From(ctx); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// WithAuthUser marks the request as made by the holder of claims.
func WithAuthUser(ctx context.Context, claims *sec.AuthClaims) context.Context {
	return authUserKey.With(ctx, claims)
}

// GetAuthUser returns nil for anonymous requests.
func GetAuthUser(ctx context.Context) *sec.AuthClaims {
	claims, _ := authUserKey.From(ctx)
	return claims
}

// GetUsername returns the caller's username, or "" when anonymous.
func GetUsername(ctx context.Context) string {
	if claims := GetAuthUser(ctx); claims != nil {
		return claims.Username
	}
	return ""
}

// IsOwner reports whether the caller is signed in as username.
func IsOwner(ctx context.Context, username string) bool {
	return username != "" && GetUsername(ctx) == username
}
