// Package migrations embeds Jobly's schema and applies it with
// golang-migrate. Each dialect has its own directory of numbered
// up/down files.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/Skryldev/jobly/db"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Migrator runs schema migrations against one database. It owns a private
// connection that Close releases.
type Migrator struct {
	m     *migrate.Migrate
	sqldb *sql.DB
}

// New opens driverName/dsn (any driver registered with db.RegisterDriver)
// and prepares the embedded migrations for its dialect.
func New(driverName, dsn string) (*Migrator, error) {
	drv, err := db.LookupDriver(driverName)
	if err != nil {
		return nil, err
	}
	sqldb, err := sql.Open(drv.Name(), dsn)
	if err != nil {
		return nil, fmt.Errorf("migrations: open: %w", err)
	}

	var (
		dir    string
		target database.Driver
	)
	switch drv.Dialect() {
	case db.SQLite:
		dir = "sqlite"
		target, err = sqlite3.WithInstance(sqldb, &sqlite3.Config{})
	default:
		dir = "postgres"
		target, err = postgres.WithInstance(sqldb, &postgres.Config{})
	}
	if err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("migrations: %s driver: %w", drv.Dialect(), err)
	}

	src, err := iofs.New(files, dir)
	if err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("migrations: source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, drv.Dialect().String(), target)
	if err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("migrations: init: %w", err)
	}
	m.Log = migrateLogger{}
	return &Migrator{m: m, sqldb: sqldb}, nil
}

// Up applies every pending migration. Being up to date is not an error.
func (g *Migrator) Up() error {
	if err := g.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrations: up: %w", err)
	}
	return nil
}

// Down rolls back the given number of migrations.
func (g *Migrator) Down(steps int) error {
	if steps < 1 {
		return fmt.Errorf("migrations: invalid steps %d", steps)
	}
	if err := g.m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrations: down: %w", err)
	}
	return nil
}

// Version reports the applied version. A database with no migrations
// returns 0, false, nil.
func (g *Migrator) Version() (uint, bool, error) {
	v, dirty, err := g.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

// Force sets the version without running anything, clearing a dirty state.
func (g *Migrator) Force(version int) error {
	return g.m.Force(version)
}

func (g *Migrator) Close() error {
	srcErr, dbErr := g.m.Close()
	_ = g.sqldb.Close()
	return errors.Join(srcErr, dbErr)
}

// migrateLogger routes golang-migrate's output through slog.
type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...), "component", "migrate")
}

func (migrateLogger) Verbose() bool { return false }
