// Copyright (c) 2026 CoPla. All rights reserved.

// Command api is the entry point for the CoPla HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool) and Redis.
//  4. Run database migrations (idempotent).
//  5. Build token service and session sealer.
//  6. Wire repositories, services and HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/copla/copla/internal/api"
	"github.com/copla/copla/internal/core/artist"
	"github.com/copla/copla/internal/core/commission"
	"github.com/copla/copla/internal/core/tag"
	"github.com/copla/copla/internal/platform/config"
	"github.com/copla/copla/internal/platform/constants"
	"github.com/copla/copla/internal/platform/logging"
	"github.com/copla/copla/internal/platform/migration"
	pgstore "github.com/copla/copla/internal/platform/postgres"
	redisstore "github.com/copla/copla/internal/platform/redis"
	"github.com/copla/copla/internal/platform/seal"
	"github.com/copla/copla/internal/platform/sec"
	"github.com/copla/copla/internal/social/following"
	"github.com/copla/copla/internal/social/profile"
	"github.com/copla/copla/internal/users/account"
	"github.com/copla/copla/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log, _ := logging.New(logging.Options{
		Console: os.Stdout,
		Attrs:   []slog.Attr{slog.String("app", constants.AppName)},
	})
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	// Rebuild the logger with the configured level and file sink.
	log, logCloser := logging.New(logging.Options{
		Debug:      cfg.Debug,
		Console:    os.Stdout,
		FilePath:   cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		Attrs:      []slog.Attr{slog.String("app", constants.AppName)},
	})
	slog.SetDefault(log)
	defer func() { _ = logCloser.Close() }()

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("client_id", cfg.ClientID()),
	)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, pgstore.Options{DSN: cfg.DatabaseURL, MaxConns: cfg.DatabaseMaxConns}, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, redisstore.Options{URL: cfg.RedisURL, PoolSize: cfg.RedisPoolSize}, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Security ───────────────────────────────────────────────────────
	tokenService, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	sealer, err := seal.New(cfg.SessionSecret)
	must(log, err, "initialize session sealer")

	// ── 7. Health ─────────────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers([]api.HealthCheck{
		{Name: "postgres", Check: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) }},
		{Name: "redis", Check: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	userRepository := auth.NewUserRepository(pool)
	sessionRepository := auth.NewSessionRepository(rdb)
	authService := auth.NewService(userRepository, sessionRepository, tokenService, log)

	artistRepository := artist.NewPostgresRepository(pool)
	artistService := artist.NewService(artistRepository, log)

	accountService := account.NewService(account.NewAccountRepository(pool), log)
	tagService := tag.NewService(tag.NewPostgresRepository(pool), log)
	commissionService := commission.NewService(artistRepository, commission.NewPostgresRepository(pool), log)
	profileService := profile.NewService(userRepository, profile.NewPostgresRepository(pool), artistService, sealer, log)
	followingService := following.NewService(userRepository, following.NewPostgresRepository(pool), log)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, authService, api.Handlers{
		Liveness:       liveness,
		Readiness:      readiness,
		ClientMetadata: api.NewClientMetadataHandler(cfg),
		Auth:           auth.NewHandler(authService, cfg.IsProduction()),
		Account:        account.NewHandler(accountService),
		Artist:         artist.NewHandler(artistService),
		Commission:     commission.NewHandler(commissionService),
		Social:         profile.NewHandler(profileService),
		Following:      following.NewHandler(followingService),
		Tag:            tag.NewHandler(tagService),
	})

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_failed", slog.Any("error", err))
	}

	log.Info("server_shutting_down", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("server_shutdown_failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, errors are returned.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failed",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
