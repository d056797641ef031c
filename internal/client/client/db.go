package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avoronovs/papertrail/internal/client/migrations"
	"github.com/avoronovs/papertrail/internal/client/repositories/documents"
	"github.com/avoronovs/papertrail/internal/client/repositories/metadata"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Repositories bundles the local stores backed by one sqlite database.
type Repositories struct {
	Metadata  metadata.Repository
	Documents documents.Repository
	DB        *sql.DB
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating if necessary) the sqlite database at dsn, runs
// the embedded migrations and returns the repositories bound to it.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	repos := &Repositories{
		Metadata:  metadata.NewSQLiteRepository(db),
		Documents: documents.NewSQLiteRepository(db),
		DB:        db,
	}
	return repos, nil
}
