// Package admin contains the docsbotd subcommands.
package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/docsbot-io/docsbot/internal/config"
	"github.com/docsbot-io/docsbot/internal/database"
	"github.com/docsbot-io/docsbot/internal/openai"
	"github.com/docsbot-io/docsbot/internal/store"
	"github.com/docsbot-io/docsbot/internal/store/postgres"
	"github.com/docsbot-io/docsbot/internal/store/snapshot"
)

// openStore builds the configured vector store backend: postgres when
// DATABASE_URL is set, otherwise the JSON snapshot file. The returned cleanup
// closes the pool; it is a no-op for snapshots.
func openStore(ctx context.Context, cfg *config.Config, migrateUp bool) (store.VectorStore, func(), error) {
	if !cfg.HasPostgres() {
		s, err := snapshot.Open(cfg.SnapshotPath, cfg.EmbeddingModel, openai.DefaultEmbeddingDimensions)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open snapshot store: %w", err)
		}
		log.Printf("using snapshot store at %s", cfg.SnapshotPath)
		return s, func() {}, nil
	}

	if migrateUp {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("connected to database")

	return postgres.NewStore(pool), pool.Close, nil
}

func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else {
		log.Printf("migrations: database at version %d", version)
	}

	return nil
}
