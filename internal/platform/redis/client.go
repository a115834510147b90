// Copyright (c) 2026 CoPla. All rights reserved.

/*
Package redis opens the Redis client that holds CoPla's login session registry.

Each signed session cookie names a key with a TTL. Deleting the key revokes
the cookie even though its signature is still valid.
*/
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 2 * time.Second

// Options configures [NewClient]. Zero fields keep the defaults.
type Options struct {
	URL      string
	PoolSize int
}

func (options Options) parse() (*redis.Options, error) {
	parsed, err := redis.ParseURL(options.URL)
	if err != nil {
		return nil, err
	}

	parsed.PoolSize = 10
	if options.PoolSize > 0 {
		parsed.PoolSize = options.PoolSize
	}
	parsed.MinIdleConns = min(2, parsed.PoolSize)
	parsed.MaxIdleConns = max(parsed.MinIdleConns, parsed.PoolSize/2)

	parsed.DialTimeout = 3 * time.Second
	parsed.ReadTimeout = 2 * time.Second
	parsed.WriteTimeout = 2 * time.Second
	return parsed, nil
}

// NewClient connects and pings before returning, so a bad REDIS_URL fails startup.
func NewClient(context stdctx.Context, options Options, logger *slog.Logger) (*redis.Client, error) {
	parsed, err := options.parse()
	if err != nil {
		return nil, fmt.Errorf("redis_parse_url_failed: %w", err)
	}

	client := redis.NewClient(parsed)
	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_client_connected",
		slog.String("addr", parsed.Addr),
		slog.Int("db", parsed.DB),
		slog.Int("pool_size", parsed.PoolSize),
	)
	return client, nil
}

// Ping is the readiness check for the client.
func Ping(context stdctx.Context, client *redis.Client) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis_ping_failed: %w", err)
	}
	return nil
}
