// Package migrate applies the embedded SQL migrations of a storage backend
// with goose.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/phrazzld/keikaku/internal/platform/logger"
	"github.com/pressly/goose/v3"
)

// Up applies every pending migration found at the root of fsys.
// Each backend embeds its own migration set and passes the matching dialect.
func Up(ctx context.Context, db *sql.DB, dialect goose.Dialect, fsys fs.FS) error {
	log := logger.FromContext(ctx).With(
		slog.String("component", "migrations"),
		slog.String("dialect", string(dialect)),
	)

	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		log.Error("failed to create migration provider", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	start := time.Now()
	results, err := provider.Up(ctx)
	if err != nil {
		log.Error("migration failed", slog.String("error", err.Error()))
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	for _, r := range results {
		log.Info("applied migration",
			slog.Int64("version", r.Source.Version),
			slog.String("path", r.Source.Path),
			slog.Duration("duration", r.Duration))
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	log.Info("database schema up to date",
		slog.Int("applied", len(results)),
		slog.Int64("version", version),
		slog.Duration("duration", time.Since(start)))
	return nil
}
