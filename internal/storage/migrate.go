package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var schemaFiles embed.FS

// Schema is the migration state of an expenses database.
type Schema struct {
	Version uint
	Dirty   bool
}

// MigrateSchema applies pending expenses migrations to the database at
// dbPath and reports the resulting schema. A dirty schema is an error.
func MigrateSchema(dbPath string) (Schema, error) {
	// The migrator closes the handle it is given, so it gets its own.
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return Schema{}, fmt.Errorf("open %s for migration: %w", dbPath, err)
	}
	m, err := newMigrator(db)
	if err != nil {
		db.Close()
		return Schema{}, err
	}
	defer m.Close()

	switch err := m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
	case err != nil:
		return Schema{}, fmt.Errorf("apply expenses schema: %w", err)
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return Schema{}, nil
	}
	if err != nil {
		return Schema{}, fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return Schema{Version: version, Dirty: true}, fmt.Errorf("expenses schema version %d is dirty", version)
	}
	return Schema{Version: version}, nil
}

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	files, err := iofs.New(schemaFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}
	target, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("wrap sqlite for migration: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", files, "sqlite", target)
	if err != nil {
		return nil, fmt.Errorf("build migrator: %w", err)
	}
	return m, nil
}
