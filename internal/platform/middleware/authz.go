// Copyright (c) 2026 CoPla. All rights reserved.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/copla/copla/internal/platform/apperr"
	"github.com/copla/copla/internal/platform/constants"
	"github.com/copla/copla/internal/platform/ctxutil"
	"github.com/copla/copla/internal/platform/respond"
	"github.com/copla/copla/internal/platform/sec"
)

// SessionVerifier checks a session token and reports the claims it carries.
//
// Implementations must reject tokens whose session has been revoked, which is
// why verification takes a context: it usually involves a cache lookup.
type SessionVerifier interface {
	VerifySession(ctx context.Context, token string) (*sec.AuthClaims, error)
}

// Authenticate resolves the caller from the session cookie or a bearer token.
//
// # Flow
//  1. Read the session cookie; fall back to 'Authorization: Bearer <token>'.
//  2. If neither is present, the request proceeds as anonymous.
//  3. A stale cookie is cleared and the request proceeds as anonymous.
//  4. A malformed or invalid bearer token is rejected with 401.
//  5. Valid claims are injected into the request context.
func Authenticate(verifier SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Cookie session ─────────────────────────────────────────────
			if cookie, err := request.Cookie(constants.SessionCookieName); err == nil && cookie.Value != "" {
				claims, err := verifier.VerifySession(request.Context(), cookie.Value)
				if err != nil {
					ClearSessionCookie(writer, false)
					next.ServeHTTP(writer, request)
					return
				}
				next.ServeHTTP(writer, withClaims(request, claims))
				return
			}

			// ── 2. Anonymous Access ───────────────────────────────────────────
			authHeader := request.Header.Get(constants.HeaderAuthorization)
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 3. Bearer token ───────────────────────────────────────────────
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			claims, err := verifier.VerifySession(request.Context(), parts[1])
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired session"))
				return
			}

			next.ServeHTTP(writer, withClaims(request, claims))
		})
	}
}

// withClaims attaches claims and tags the request logger with the username.
func withClaims(request *http.Request, claims *sec.AuthClaims) *http.Request {
	ctx := ctxutil.WithAuthUser(request.Context(), claims)
	ctx = ctxutil.WithLogger(ctx, ctxutil.GetLogger(ctx).With(slog.String("username", claims.Username)))
	return request.WithContext(ctx)
}

// SetSessionCookie writes the session token as an HttpOnly cookie.
func SetSessionCookie(writer http.ResponseWriter, token string, secure bool) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token,
		Path:     constants.SessionCookiePath,
		MaxAge:   int(constants.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie on the client.
func ClearSessionCookie(writer http.ResponseWriter, secure bool) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     constants.SessionCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// RequireAuth blocks requests that are not authenticated.
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRole blocks requests if the authenticated user doesn't have the required role.
//
// It implies [RequireAuth] so you don't need to mount both.
func RequireRole(role sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := ctxutil.GetAuthUser(request.Context())

			if claims == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			if !sec.UserRole(claims.Role).AtLeast(role) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
