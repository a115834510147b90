// Copyright (c) 2026 CoPla. All rights reserved.

/*
Package config handles server-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Once loaded, configuration is read-only and passed to components via constructors.
*/
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the CoPla API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// PublicOrigin is the externally visible origin of the web app, used for
	// OAuth client metadata and redirect URIs.
	PublicOrigin string `env:"PUBLIC_ORIGIN" envDefault:"http://127.0.0.1:8080"`

	// Logging
	LogFile       string `env:"LOG_FILE"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB"  envDefault:"50"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS"  envDefault:"5"`

	// Relational Database (PostgreSQL)
	DatabaseURL      string `env:"DATABASE_URL,required,notEmpty"`
	DatabaseMaxConns int32  `env:"DATABASE_MAX_CONNS" envDefault:"20"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL      string `env:"REDIS_URL,required,notEmpty"`
	RedisPoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"10"`

	// SessionSecret seals provider sessions at rest. It must decode to 32 bytes
	// (hex or base64) or be at least 32 characters long.
	SessionSecret  string `env:"SESSION_SECRET,required,notEmpty"`
	JWTPrivKeyPath string `env:"JWT_PRIVATE_KEY_PATH,required"`
	JWTPubKeyPath  string `env:"JWT_PUBLIC_KEY_PATH,required"`

	// Provider OAuth client metadata
	OAuthClientName string `env:"OAUTH_CLIENT_NAME" envDefault:"CoPla"`
	OAuthScope      string `env:"OAUTH_SCOPE"       envDefault:"atproto transition:generic"`

	// OAuthRedirectURIs lists the accepted callbacks. Defaults to the web
	// callback on PublicOrigin and the CLI loopback callback.
	OAuthRedirectURIs []string `env:"OAUTH_REDIRECT_URIS" envSeparator:","`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

const (
	// CallbackPath is where the provider redirects after authorization.
	CallbackPath = "/bluesky/callback"

	// LoopbackCallback is the CLI redirect; any port is accepted on loopback.
	LoopbackCallback = "http://127.0.0.1" + CallbackPath
)

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	cfg.PublicOrigin = strings.TrimRight(cfg.PublicOrigin, "/")
	if len(cfg.OAuthRedirectURIs) == 0 {
		cfg.OAuthRedirectURIs = []string{
			cfg.PublicOrigin + CallbackPath,
			LoopbackCallback,
		}
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// ClientID is the URL of the published OAuth client metadata document.
func (c *Config) ClientID() string {
	return c.PublicOrigin + "/client-metadata.json"
}

// AllowedOrigins returns the public origin plus any extra comma-separated origins.
func (c *Config) AllowedOrigins() []string {
	origins := []string{c.PublicOrigin}
	for _, origin := range strings.Split(c.ExtraOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
