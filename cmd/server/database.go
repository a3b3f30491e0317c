package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/keikaku/internal/config"
	"github.com/phrazzld/keikaku/internal/platform/postgres"
	"github.com/phrazzld/keikaku/internal/platform/sqlite"
	"github.com/phrazzld/keikaku/internal/store"
)

const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite"
)

// openDatabase connects to the configured backend and returns the matching
// user store. For sqlite the URL is a file path.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*sql.DB, store.UserStore, error) {
	switch cfg.Driver {
	case driverPostgres:
		db, err := postgres.Open(ctx, cfg.URL, cfg.MaxOpenConns)
		if err != nil {
			return nil, nil, err
		}
		log.Info("database connection established", slog.String("driver", cfg.Driver))
		return db, postgres.NewPostgresUserStore(db, log), nil

	case driverSQLite:
		db, err := sqlite.Open(ctx, cfg.URL)
		if err != nil {
			return nil, nil, err
		}
		log.Info("database connection established",
			slog.String("driver", cfg.Driver),
			slog.String("path", cfg.URL))
		return db, sqlite.NewUserStore(db, log), nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func migrateDatabase(ctx context.Context, driver string, db *sql.DB) error {
	switch driver {
	case driverPostgres:
		return postgres.Migrate(ctx, db)
	case driverSQLite:
		return sqlite.Migrate(ctx, db)
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}
}
