package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/rentaldesk/searchsync/internal/config"
)

// RunMigrations migrates the back office schema this service reads. Production
// databases are migrated by the back office itself, so this is meant for
// development and test stores. steps 0 applies everything pending; otherwise
// it is passed to Steps, negative values rolling back.
func RunMigrations(logger *slog.Logger, driver, connectionString string, steps int) error {
	logger.Info("running database migrations", slog.String("driver", driver), slog.Int("steps", steps))

	databaseURL, err := migrationDatabaseURL(driver, connectionString)
	if err != nil {
		return err
	}

	m, err := migrate.New(migrationsPath(driver), databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if steps == 0 {
		err = m.Up()
	} else {
		err = m.Steps(steps)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	logger.Info("migrations completed", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
	return nil
}

func migrationsPath(driver string) string {
	if driver == config.DriverMySQL {
		return "file://migrations/mysql"
	}
	return "file://migrations/postgresql"
}

// migrationDatabaseURL turns a go-sql-driver DSN into the URL migrate expects,
// enabling multiStatements since each migration file holds several statements.
// Postgres connection strings are already URLs.
func migrationDatabaseURL(driver, connectionString string) (string, error) {
	if driver != config.DriverMySQL {
		return connectionString, nil
	}

	dsn, err := mysql.ParseDSN(connectionString)
	if err != nil {
		return "", fmt.Errorf("invalid mysql dsn: %w", err)
	}
	dsn.MultiStatements = true
	return "mysql://" + dsn.FormatDSN(), nil
}
