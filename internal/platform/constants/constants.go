// Copyright (c) 2026 CoPla. All rights reserved.

// Package constants collects the fixed values shared across the API server:
// timeouts, throttling, session cookie settings and header names.
package constants

import "time"

const (
	AppName    = "copla-api"
	AppVersion = "0.1.0-dev"
)

// # Timeouts

const (
	DefaultReadTimeout       = 5 * time.Second
	DefaultReadHeaderTimeout = 2 * time.Second
	DefaultWriteTimeout      = 10 * time.Second
	DefaultIdleTimeout       = 2 * time.Minute

	// GlobalRequestTimeout also bounds every SQL statement.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is the drain window for in-flight requests.
	ShutdownTimeout = 30 * time.Second
)

// # Throttling

const (
	DefaultRateLimitRPS   = 100.0
	DefaultRateLimitBurst = 150

	// Login and registration allow a burst of 5, then one attempt every 5s.
	AuthRateLimitRPS   = 0.2
	AuthRateLimitBurst = 5

	// Buckets idle for RateLimitClientTTL are dropped every RateLimitCleanupInterval.
	RateLimitCleanupInterval = time.Minute
	RateLimitClientTTL       = 3 * time.Minute
)

// # Sessions

const (
	AuthIssuer = "copla.art"

	SessionCookieName = "copla_session"
	SessionCookiePath = "/api"
	SessionTTL        = 7 * 24 * time.Hour

	// RedisPrefixSession namespaces the revocable session records.
	RedisPrefixSession = "auth:session:"
)

// # Headers

const (
	HeaderAuthorization = "Authorization"
	HeaderOrigin        = "Origin"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXRequestID    = "X-Request-ID"
)

// # Health Fields

const (
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Social Platforms

const (
	PlatformBluesky = "bluesky"

	// BlueskyProfileURLPrefix builds public profile links from a handle.
	BlueskyProfileURLPrefix = "https://bsky.app/profile/"
)
