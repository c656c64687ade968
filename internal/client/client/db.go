// Package client wires the local SQLite database used for durable session
// storage: it opens the DSN, applies embedded goose migrations, and hands
// out repositories.
package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/campuslink/internal/client/migrations"
	"github.com/dmitrijs2005/campuslink/internal/client/repositories/metadata"
)

// Repositories bundles the local stores the app needs.
type Repositories struct {
	Metadata metadata.Repository
	DB       *sql.DB
}

// RunMigrations applies the embedded migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating if needed) the local database at dsn,
// migrates it, and returns the repositories. The caller owns the DB handle
// and should close it on shutdown.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repositories{
		Metadata: metadata.NewSQLiteRepository(db),
		DB:       db,
	}, nil
}
