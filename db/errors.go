package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sentinel errors
// ─────────────────────────────────────────────────────────────────────────────

var (
	// ErrNotFound is returned when a query matches no rows.
	ErrNotFound = errors.New("jobly/db: record not found")

	// ErrDuplicateKey is returned on unique constraint violations.
	ErrDuplicateKey = errors.New("jobly/db: duplicate key")

	// ErrForeignKeyViolation is returned when a foreign key constraint is violated.
	ErrForeignKeyViolation = errors.New("jobly/db: foreign key violation")

	// ErrCheckViolation is returned when a CHECK or NOT NULL constraint is violated.
	ErrCheckViolation = errors.New("jobly/db: check constraint violation")

	// ErrDeadlock is returned when the database detects a deadlock or the
	// file is locked.
	ErrDeadlock = errors.New("jobly/db: deadlock detected")

	// ErrTimeout is returned when a statement exceeds its deadline.
	ErrTimeout = errors.New("jobly/db: query timeout")

	// ErrConnectionFailed is returned when the driver cannot reach the server.
	ErrConnectionFailed = errors.New("jobly/db: connection failed")
)

func IsNotFound(err error) bool            { return errors.Is(err, ErrNotFound) }
func IsDuplicateKey(err error) bool        { return errors.Is(err, ErrDuplicateKey) }
func IsForeignKeyViolation(err error) bool { return errors.Is(err, ErrForeignKeyViolation) }
func IsCheckViolation(err error) bool      { return errors.Is(err, ErrCheckViolation) }
func IsTimeout(err error) bool             { return errors.Is(err, ErrTimeout) }

// ─────────────────────────────────────────────────────────────────────────────
// DBError
// ─────────────────────────────────────────────────────────────────────────────

// DBError wraps a sentinel error with the original driver error so callers can
// use errors.Is(err, ErrDuplicateKey) or inspect the raw driver error.
type DBError struct {
	Sentinel error
	Cause    error
}

func (e *DBError) Error() string {
	return fmt.Sprintf("%s (cause: %v)", e.Sentinel, e.Cause)
}

func (e *DBError) Is(target error) bool { return errors.Is(e.Sentinel, target) }
func (e *DBError) Unwrap() error        { return e.Cause }

// ─────────────────────────────────────────────────────────────────────────────
// ErrorMapper
// ─────────────────────────────────────────────────────────────────────────────

// ErrorMapper translates raw driver errors into the package sentinels.
type ErrorMapper interface {
	Map(err error) error
}

// ErrorMapperFunc adapts a function to ErrorMapper.
type ErrorMapperFunc func(error) error

func (f ErrorMapperFunc) Map(err error) error { return f(err) }

// DefaultErrorMapper handles lib/pq, pgx and go-sqlite3 errors.
func DefaultErrorMapper() ErrorMapper {
	return ErrorMapperFunc(defaultMap)
}

func defaultMap(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return &DBError{Sentinel: ErrNotFound, Cause: err}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &DBError{Sentinel: ErrTimeout, Cause: err}
	}

	// Already mapped; do not double-wrap.
	var dbe *DBError
	if errors.As(err, &dbe) {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if mapped := mapByPGCode(string(pqErr.Code), err); mapped != nil {
			return mapped
		}
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if mapped := mapByPGCode(pgErr.Code, err); mapped != nil {
			return mapped
		}
		return err
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		if mapped := mapSQLiteError(liteErr, err); mapped != nil {
			return mapped
		}
	}

	return err
}

// PostgreSQL SQLSTATE codes: https://www.postgresql.org/docs/current/errcodes-appendix.html
func mapByPGCode(code string, cause error) error {
	switch code {
	case "23505": // unique_violation
		return &DBError{Sentinel: ErrDuplicateKey, Cause: cause}
	case "23503": // foreign_key_violation
		return &DBError{Sentinel: ErrForeignKeyViolation, Cause: cause}
	case "23514", "23502": // check_violation, not_null_violation
		return &DBError{Sentinel: ErrCheckViolation, Cause: cause}
	case "40P01": // deadlock_detected
		return &DBError{Sentinel: ErrDeadlock, Cause: cause}
	case "57014": // query_canceled (statement_timeout)
		return &DBError{Sentinel: ErrTimeout, Cause: cause}
	case "08000", "08003", "08006", "08001", "08004", "08007", "08P01":
		return &DBError{Sentinel: ErrConnectionFailed, Cause: cause}
	}
	return nil
}

func mapSQLiteError(e sqlite3.Error, cause error) error {
	switch e.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return &DBError{Sentinel: ErrDuplicateKey, Cause: cause}
	case sqlite3.ErrConstraintForeignKey:
		return &DBError{Sentinel: ErrForeignKeyViolation, Cause: cause}
	case sqlite3.ErrConstraintCheck, sqlite3.ErrConstraintNotNull:
		return &DBError{Sentinel: ErrCheckViolation, Cause: cause}
	}
	switch e.Code {
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return &DBError{Sentinel: ErrDeadlock, Cause: cause}
	case sqlite3.ErrInterrupt: // raised when a context deadline interrupts a statement
		return &DBError{Sentinel: ErrTimeout, Cause: cause}
	}
	return nil
}
