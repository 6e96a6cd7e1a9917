// Package db is the SQL-first database layer behind the Jobly repositories.
// All SQL is explicit; this package only adds context-aware helpers, hook
// dispatch, unified error mapping and transaction management on top of
// database/sql.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Config
// ─────────────────────────────────────────────────────────────────────────────

// Config holds all options for opening and managing the connection pool.
type Config struct {
	// DSN is the driver-specific data-source name.
	DSN string

	// DriverName is "postgres", "pgx" or "sqlite3".
	DriverName string

	// Pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// Default query timeout applied when no deadline is set on the context.
	// Zero means no default timeout.
	DefaultTimeout time.Duration

	// Hooks executed around every statement. nil entries are skipped.
	Hooks []Hook
}

// ─────────────────────────────────────────────────────────────────────────────
// DB
// ─────────────────────────────────────────────────────────────────────────────

// DB is a concurrency-safe wrapper around *sql.DB. It is the only piece of
// process-wide state the service shares between requests; repositories
// receive it explicitly.
type DB struct {
	sqldb   *sql.DB
	cfg     Config
	dialect Dialect
	hooks   hookChain
	errMap  ErrorMapper
}

// Open opens the database described by cfg and verifies connectivity with Ping.
// Callers are responsible for calling Close() when the application shuts down.
func Open(cfg Config) (*DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("jobly/db: DSN must not be empty")
	}
	drv, err := LookupDriver(cfg.DriverName)
	if err != nil {
		return nil, err
	}

	sqldb, err := sql.Open(drv.Name(), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("jobly/db: open: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqldb.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqldb.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	d := &DB{
		sqldb:   sqldb,
		cfg:     cfg,
		dialect: drv.Dialect(),
		hooks:   newHookChain(cfg.Hooks),
		errMap:  DefaultErrorMapper(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("jobly/db: ping: %w", err)
	}

	return d, nil
}

// Dialect reports which SQL flavour the connected driver speaks.
func (d *DB) Dialect() Dialect { return d.dialect }

// Close closes all pooled connections. Safe to call multiple times.
func (d *DB) Close() error { return d.sqldb.Close() }

// Ping verifies that the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()
	return d.mapErr(d.sqldb.PingContext(ctx))
}

// ─────────────────────────────────────────────────────────────────────────────
// Query execution helpers
// ─────────────────────────────────────────────────────────────────────────────

// Exec executes a statement that returns no rows.
func (d *DB) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	d.hooks.Before(ctx, query, args)
	res, err := d.sqldb.ExecContext(ctx, query, args...)
	err = d.mapErr(err)
	d.hooks.After(ctx, query, args, time.Since(start), err)
	return res, err
}

// Query executes a query that returns rows.
// The caller MUST close the returned *Rows; closing also releases the
// default timeout.
func (d *DB) Query(ctx context.Context, query string, args ...any) (*Rows, error) {
	ctx, cancel := d.withTimeout(ctx)
	start := time.Now()
	d.hooks.Before(ctx, query, args)
	rows, err := d.sqldb.QueryContext(ctx, query, args...)
	err = d.mapErr(err)
	d.hooks.After(ctx, query, args, time.Since(start), err)
	if err != nil {
		cancel()
		return nil, err
	}
	return &Rows{Rows: rows, cancel: cancel, errMap: d.errMap}, nil
}

// QueryRow executes a query expected to return at most one row.
// Scan on the returned *Row yields ErrNotFound when nothing matched. The
// default timeout stays armed until Scan is called.
func (d *DB) QueryRow(ctx context.Context, query string, args ...any) *Row {
	ctx, cancel := d.withTimeout(ctx)
	start := time.Now()
	d.hooks.Before(ctx, query, args)
	raw := d.sqldb.QueryRowContext(ctx, query, args...)
	d.hooks.After(ctx, query, args, time.Since(start), d.mapErr(raw.Err()))
	return &Row{raw: raw, cancel: cancel, errMap: d.errMap}
}

// ─────────────────────────────────────────────────────────────────────────────
// Internal helpers
// ─────────────────────────────────────────────────────────────────────────────

func (d *DB) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.cfg.DefaultTimeout == 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d.cfg.DefaultTimeout)
}

func (d *DB) mapErr(err error) error {
	if err == nil {
		return nil
	}
	return d.errMap.Map(err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Row
// ─────────────────────────────────────────────────────────────────────────────

// Row wraps *sql.Row and maps errors through the unified error mapper.
type Row struct {
	raw    *sql.Row
	cancel context.CancelFunc
	errMap ErrorMapper
}

// Scan copies columns from the matched row into dest values.
// ErrNotFound is returned when no row was found.
func (r *Row) Scan(dest ...any) error {
	if r.cancel != nil {
		defer r.cancel()
	}
	return r.errMap.Map(r.raw.Scan(dest...))
}

// ─────────────────────────────────────────────────────────────────────────────
// Rows
// ─────────────────────────────────────────────────────────────────────────────

// Rows wraps *sql.Rows. Close releases the statement's timeout context and
// Err maps through the unified error mapper.
type Rows struct {
	*sql.Rows
	cancel context.CancelFunc
	errMap ErrorMapper
}

func (r *Rows) Err() error {
	return r.errMap.Map(r.Rows.Err())
}

func (r *Rows) Close() error {
	err := r.Rows.Close()
	if r.cancel != nil {
		r.cancel()
	}
	return err
}
