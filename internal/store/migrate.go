package store

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/user/icebreaker-videos/internal/config"
)

//go:embed migrations
var migrationFS embed.FS

// Migrate applies all pending schema migrations and returns the resulting version
func (s *GormStore) Migrate() (uint, bool, error) {
	sqlDB, err := s.db.DB()
	if err != nil {
		return 0, false, fmt.Errorf("failed to get underlying db: %w", err)
	}

	var driver database.Driver
	switch s.driver {
	case config.DriverPostgres:
		driver, err = migratepostgres.WithInstance(sqlDB, &migratepostgres.Config{})
	default:
		driver, err = migratemysql.WithInstance(sqlDB, &migratemysql.Config{})
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to create %s migration driver: %w", s.driver, err)
	}

	dir, err := fs.Sub(migrationFS, "migrations/"+s.driver)
	if err != nil {
		return 0, false, fmt.Errorf("failed to open migrations for %s: %w", s.driver, err)
	}

	source, err := iofs.New(dir, ".")
	if err != nil {
		return 0, false, fmt.Errorf("failed to create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, s.driver, driver)
	if err != nil {
		return 0, false, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, false, fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}

	return version, dirty, nil
}
