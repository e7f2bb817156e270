package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations
var migrations embed.FS

// Migrate creates or upgrades the records table. It is safe to run on
// every start.
func Migrate(ctx context.Context, db *sql.DB, d Dialect, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}

	fsys, err := fs.Sub(migrations, d.migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to open %s migrations: %w", d.name, err)
	}

	provider, err := goose.NewProvider(d.goose, db, fsys)
	if err != nil {
		return fmt.Errorf("failed to prepare migrations: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	for _, r := range results {
		log.Info("applied migration",
			slog.String("dialect", d.name),
			slog.Int64("version", r.Source.Version),
			slog.Duration("duration", r.Duration))
	}
	return nil
}
