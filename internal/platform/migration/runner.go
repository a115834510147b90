// Copyright (c) 2026 CoPla. All rights reserved.

// Package migration applies the SQL files under MIGRATION_PATH at startup
// using golang-migrate with its pgx/v5 driver.
package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // registers pgx5://
	_ "github.com/golang-migrate/migrate/v4/source/file"     // registers file://
)

// ErrDirty means a previous run failed halfway and needs a manual `migrate force`.
var ErrDirty = errors.New("migration_database_dirty")

// RunUp brings the schema to the newest version found in dir.
func RunUp(dsn, dir string, logger *slog.Logger) error {
	migrator, err := migrate.New("file://"+dir, Pgx5DSN(dsn))
	if err != nil {
		return fmt.Errorf("migration_open_failed: %w", err)
	}
	migrator.Log = slogAdapter{logger: logger}
	defer func() {
		sourceErr, databaseErr := migrator.Close()
		if closeErr := errors.Join(sourceErr, databaseErr); closeErr != nil {
			logger.Warn("migration_close_failed", slog.Any("error", closeErr))
		}
	}()

	from, err := version(migrator)
	if err != nil {
		return err
	}

	switch err := migrator.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("migration_up_to_date", slog.Uint64("version", uint64(from)))
		return nil
	case err != nil:
		return fmt.Errorf("migration_up_failed: %w", err)
	}

	to, err := version(migrator)
	if err != nil {
		return err
	}
	logger.Info("migration_applied", slog.Uint64("from_version", uint64(from)), slog.Uint64("to_version", uint64(to)))
	return nil
}

// version reports the applied version, zero for an empty database.
func version(migrator *migrate.Migrate) (uint, error) {
	current, dirty, err := migrator.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("migration_version_failed: %w", err)
	case dirty:
		return current, fmt.Errorf("%w: version %d", ErrDirty, current)
	}
	return current, nil
}

// Pgx5DSN rewrites postgres:// and postgresql:// URLs to the pgx5:// scheme
// registered by the driver. Keyword DSNs pass through unchanged.
func Pgx5DSN(dsn string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(dsn, scheme); ok {
			return "pgx5://" + rest
		}
	}
	return dsn
}

// slogAdapter satisfies migrate.Logger.
type slogAdapter struct {
	logger *slog.Logger
}

func (adapter slogAdapter) Printf(format string, args ...any) {
	adapter.logger.Debug("migration_progress", slog.String("detail", strings.TrimSpace(fmt.Sprintf(format, args...))))
}

func (adapter slogAdapter) Verbose() bool { return false }
