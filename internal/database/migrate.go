package database

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationsFS embed.FS

// Schema names one of the embedded migration sets.
type Schema string

const (
	TaskSchema       Schema = "tasks"
	VocabularySchema Schema = "vocabulary"
)

// Migrate applies every pending migration of schema to the store at path.
// Running it against an up-to-date store is a no-op.
func Migrate(ctx context.Context, path string, schema Schema) error {
	src, err := iofs.New(migrationsFS, "migrations/"+string(schema))
	if err != nil {
		return fmt.Errorf("failed to load %s migrations: %w", schema, err)
	}

	db, err := Open(ctx, path)
	if err != nil {
		src.Close()
		return err
	}

	driver, err := sqlitemigrate.WithInstance(db.DB, &sqlitemigrate.Config{
		MigrationsTable: string(schema) + "_schema_migrations",
	})
	if err != nil {
		src.Close()
		db.Close()
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		src.Close()
		driver.Close()
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	// closes the source and the driver, which closes db
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply %s migrations: %w", schema, err)
	}
	return nil
}
