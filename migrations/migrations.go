// Package migrations embeds the schema SQL and applies it with golang-migrate
package migrations

import (
	"embed"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // registers the postgres:// scheme
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql/*.sql
var files embed.FS

// migrateLogger adapts a *log.Logger to migrate.Logger
type migrateLogger struct {
	logger *log.Logger
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.logger.Printf("migrate: "+format, v...)
}

func (l migrateLogger) Verbose() bool { return false }

func newMigrate(databaseURL string, logger *log.Logger) (*migrate.Migrate, error) {
	src, err := iofs.New(files, "sql")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize migrations: %w", err)
	}
	if logger != nil {
		m.Log = migrateLogger{logger: logger}
	}
	return m, nil
}

func closeMigrate(m *migrate.Migrate) error {
	srcErr, dbErr := m.Close()
	return errors.Join(srcErr, dbErr)
}

// Up applies every pending migration in version order. Running it against an
// up-to-date schema is a no-op.
func Up(databaseURL string, logger *log.Logger) (err error) {
	m, err := newMigrate(databaseURL, logger)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, closeMigrate(m))
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Down rolls back the given number of migrations, or all of them when steps <= 0
func Down(databaseURL string, steps int, logger *log.Logger) (err error) {
	m, err := newMigrate(databaseURL, logger)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, closeMigrate(m))
	}()

	if steps <= 0 {
		err = m.Down()
	} else {
		err = m.Steps(-steps)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	return nil
}

// Version reports the applied schema version and whether the last migration left it dirty.
// An empty schema reports version 0.
func Version(databaseURL string) (version uint, dirty bool, err error) {
	m, err := newMigrate(databaseURL, nil)
	if err != nil {
		return 0, false, err
	}
	defer func() {
		err = errors.Join(err, closeMigrate(m))
	}()

	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, dirty, nil
}
