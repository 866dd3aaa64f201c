// Package migrations holds the local storage schema.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed files/*.sql
var files embed.FS

// ErrUnversioned is returned by Check for a database never migrated.
var ErrUnversioned = errors.New("local storage has no schema version (needs migration)")

// Status describes where a database stands against the embedded schema.
type Status struct {
	Version uint
	Latest  uint
	Dirty   bool
}

// Err reports why the schema is unusable, or nil when it is current.
func (s Status) Err() error {
	switch {
	case s.Dirty:
		return fmt.Errorf("local storage schema is dirty at version %d", s.Version)
	case s.Version < s.Latest:
		return fmt.Errorf("local storage schema %d is behind %d", s.Version, s.Latest)
	case s.Version > s.Latest:
		return fmt.Errorf("local storage schema %d is newer than this build (%d)", s.Version, s.Latest)
	}
	return nil
}

// Up applies pending migrations. A current schema is not an error.
func Up(db *sql.DB) error {
	m, err := open(db)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrating local storage: %w", err)
	}
	return nil
}

// Current reads the schema version of db.
func Current(db *sql.DB) (Status, error) {
	latest, err := Latest()
	if err != nil {
		return Status{}, err
	}
	m, err := open(db)
	if err != nil {
		return Status{}, err
	}
	// m is not closed: that would close db.
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return Status{Latest: latest}, ErrUnversioned
	}
	if err != nil {
		return Status{}, fmt.Errorf("reading schema version: %w", err)
	}
	return Status{Version: version, Latest: latest, Dirty: dirty}, nil
}

// Check fails unless db is at the latest schema version.
func Check(db *sql.DB) error {
	st, err := Current(db)
	if err != nil {
		return err
	}
	return st.Err()
}

// Latest is the highest embedded migration version.
func Latest() (uint, error) {
	src, err := iofs.New(files, "files")
	if err != nil {
		return 0, fmt.Errorf("reading migrations: %w", err)
	}
	defer src.Close()

	v, err := src.First()
	if err != nil {
		return 0, fmt.Errorf("reading migrations: %w", err)
	}
	for {
		next, err := src.Next(v)
		if err != nil {
			return v, nil
		}
		v = next
	}
}

func open(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(files, "files")
	if err != nil {
		return nil, fmt.Errorf("reading migrations: %w", err)
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("opening sqlite3 migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("creating migrator: %w", err)
	}
	return m, nil
}
