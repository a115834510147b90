// Copyright (c) 2026 CoPla. All rights reserved.

// Package postgres opens the pgx pool behind every CoPla store and provides
// the transaction helper they share.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/copla/copla/internal/platform/constants"
)

const (
	connectTimeout = 5 * time.Second
	pingTimeout    = 2 * time.Second
)

// Options configures [NewPool]. Zero fields keep the defaults below.
type Options struct {
	DSN      string
	MaxConns int32
	MinConns int32
}

func (options Options) apply(config *pgxpool.Config) {
	config.MaxConns = 20
	if options.MaxConns > 0 {
		config.MaxConns = options.MaxConns
	}
	config.MinConns = min(2, config.MaxConns)
	if options.MinConns > 0 {
		config.MinConns = min(options.MinConns, config.MaxConns)
	}

	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 10 * time.Minute
	config.HealthCheckPeriod = time.Minute
	config.ConnConfig.ConnectTimeout = connectTimeout

	// Queries never outlive the request that issued them.
	statementTimeout := fmt.Sprintf("SET statement_timeout = '%ds'", int(constants.GlobalRequestTimeout.Seconds()))
	config.AfterConnect = func(ctx context.Context, connection *pgx.Conn) error {
		_, err := connection.Exec(ctx, statementTimeout)
		return err
	}
}

// NewPool connects and pings before returning, so a bad DATABASE_URL fails startup.
func NewPool(ctx context.Context, options Options, logger *slog.Logger) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(options.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres_parse_dsn_failed: %w", err)
	}
	options.apply(config)

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, config)
	if err != nil {
		return nil, fmt.Errorf("postgres_open_pool_failed: %w", err)
	}
	if err := Ping(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("postgres_pool_connected",
		slog.String("host", config.ConnConfig.Host),
		slog.String("database", config.ConnConfig.Database),
		slog.Int("max_conns", int(config.MaxConns)),
	)
	return pool, nil
}

// Ping is the readiness check for the pool.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres_ping_failed: %w", err)
	}
	return nil
}

// InTx runs fn in a read-committed transaction, committing only when fn returns nil.
func InTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	return pgx.BeginTxFunc(ctx, pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}
