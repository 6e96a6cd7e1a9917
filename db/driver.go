// Pluggable driver abstraction. Each adapter knows its
// database/sql driver name, its SQL dialect and how to build a DSN from
// structured options.

package db

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"sync"

	// Registers the "pgx" database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// ─────────────────────────────────────────────────────────────────────────────
// Dialect
// ─────────────────────────────────────────────────────────────────────────────

// Dialect identifies the SQL flavour a driver speaks. Both supported
// dialects accept $n placeholders, double-quoted identifiers and RETURNING.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

func (d Dialect) String() string {
	if d == SQLite {
		return "sqlite"
	}
	return "postgres"
}

// ContainsOperator is the case-insensitive pattern-match operator. SQLite's
// LIKE already ignores ASCII case.
func (d Dialect) ContainsOperator() string {
	if d == SQLite {
		return "LIKE"
	}
	return "ILIKE"
}

// ─────────────────────────────────────────────────────────────────────────────
// Driver interface
// ─────────────────────────────────────────────────────────────────────────────

// Driver encapsulates database-specific behaviour.
type Driver interface {
	// Name returns the name passed to sql.Register, e.g. "pgx", "postgres".
	Name() string

	Dialect() Dialect

	// DSN converts structured options into a driver DSN string.
	DSN(opts DriverOptions) (string, error)
}

// DriverOptions carries the common connection parameters in a structured,
// driver-agnostic form.
type DriverOptions struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	// Extra holds driver-specific key/value parameters.
	Extra map[string]string
}

// ─────────────────────────────────────────────────────────────────────────────
// Driver registry
// ─────────────────────────────────────────────────────────────────────────────

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// RegisterDriver adds a Driver to the registry. Panics on a duplicate name.
func RegisterDriver(d Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if _, ok := drivers[d.Name()]; ok {
		panic(fmt.Sprintf("jobly/db: driver %q already registered", d.Name()))
	}
	drivers[d.Name()] = d
}

// LookupDriver returns the registered Driver by name or an error.
func LookupDriver(name string) (Driver, error) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	d, ok := drivers[name]
	if !ok {
		return nil, fmt.Errorf("jobly/db: driver %q not registered", name)
	}
	return d, nil
}

func init() {
	RegisterDriver(PostgresDriver{})
	RegisterDriver(PGXDriver{})
	RegisterDriver(SQLiteDriver{})
}

// ─────────────────────────────────────────────────────────────────────────────
// PostgreSQL (lib/pq)
// ─────────────────────────────────────────────────────────────────────────────

// PostgresDriver is the lib/pq adapter.
type PostgresDriver struct{}

func (PostgresDriver) Name() string     { return "postgres" }
func (PostgresDriver) Dialect() Dialect { return Postgres }

func (PostgresDriver) DSN(o DriverOptions) (string, error) {
	return postgresURL(o)
}

// ─────────────────────────────────────────────────────────────────────────────
// PostgreSQL (pgx stdlib)
// ─────────────────────────────────────────────────────────────────────────────

// PGXDriver is the jackc/pgx adapter registered through pgx/v5/stdlib.
type PGXDriver struct{}

func (PGXDriver) Name() string     { return "pgx" }
func (PGXDriver) Dialect() Dialect { return Postgres }

func (PGXDriver) DSN(o DriverOptions) (string, error) {
	return postgresURL(o)
}

// postgresURL builds a postgres:// URL understood by both lib/pq and pgx.
func postgresURL(o DriverOptions) (string, error) {
	if o.Host == "" || o.Database == "" {
		return "", fmt.Errorf("postgres driver: Host and Database are required")
	}
	port := o.Port
	if port == 0 {
		port = 5432
	}
	q := url.Values{}
	sslMode := o.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	q.Set("sslmode", sslMode)
	for k, v := range o.Extra {
		q.Set(k, v)
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     o.Host + ":" + strconv.Itoa(port),
		Path:     "/" + o.Database,
		RawQuery: q.Encode(),
	}
	if o.User != "" {
		u.User = url.UserPassword(o.User, o.Password)
	}
	return u.String(), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// SQLite (mattn/go-sqlite3)
// ─────────────────────────────────────────────────────────────────────────────

// SQLiteDriver is the mattn/go-sqlite3 adapter. Foreign keys are switched on
// unless Extra says otherwise, so ON DELETE CASCADE behaves as in Postgres.
type SQLiteDriver struct{}

func (SQLiteDriver) Name() string     { return "sqlite3" }
func (SQLiteDriver) Dialect() Dialect { return SQLite }

func (SQLiteDriver) DSN(o DriverOptions) (string, error) {
	if o.Database == "" {
		return "", fmt.Errorf("sqlite3 driver: Database (file path) is required")
	}
	params := map[string]string{"_foreign_keys": "on"}
	for k, v := range o.Extra {
		params[k] = v
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	dsn := "file:" + o.Database
	for i, k := range keys {
		sep := "&"
		if i == 0 {
			sep = "?"
		}
		dsn += sep + k + "=" + params[k]
	}
	return dsn, nil
}
