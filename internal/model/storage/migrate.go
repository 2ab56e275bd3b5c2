package storage

import (
	"database/sql"
	"embed"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
)

//go:embed migrations
var migrationsFS embed.FS

const (
	dialectSQLite   = "sqlite"
	dialectPostgres = "postgres"
)

// runMigrations brings the snapshot schema up to date. It uses its own
// connection because closing the migrate instance closes the database handle.
func runMigrations(dialect, dsn string) error {
	db, err := sql.Open(dialect, dsn)
	if err != nil {
		return errors.Wrap(err, "open migration database")
	}

	var driver database.Driver
	switch dialect {
	case dialectSQLite:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	case dialectPostgres:
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	default:
		err = errors.Errorf("unsupported dialect %s", dialect)
	}
	if err != nil {
		_ = db.Close()
		return errors.Wrap(err, "create migrate driver")
	}

	src, err := iofs.New(migrationsFS, "migrations/"+dialect)
	if err != nil {
		_ = driver.Close()
		return errors.Wrap(err, "open migrations")
	}

	m, err := migrate.NewWithInstance("iofs", src, dialect, driver)
	if err != nil {
		_ = driver.Close()
		return errors.Wrap(err, "create migrate instance")
	}
	defer m.Close()

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "run migrations")
	}
	return nil
}
