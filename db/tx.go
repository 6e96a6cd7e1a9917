package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Tx
// ─────────────────────────────────────────────────────────────────────────────

// Tx mirrors the DB API surface so repositories can run on either through
// the Querier interface.
type Tx struct {
	sqltx   *sql.Tx
	dialect Dialect
	hooks   hookChain
	errMap  ErrorMapper
}

func (t *Tx) Dialect() Dialect { return t.dialect }

// Exec executes a statement that does not return rows.
func (t *Tx) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	t.hooks.Before(ctx, query, args)
	res, err := t.sqltx.ExecContext(ctx, query, args...)
	err = t.mapErr(err)
	t.hooks.After(ctx, query, args, time.Since(start), err)
	return res, err
}

// Query executes a query returning rows. The caller MUST close *Rows.
func (t *Tx) Query(ctx context.Context, query string, args ...any) (*Rows, error) {
	start := time.Now()
	t.hooks.Before(ctx, query, args)
	rows, err := t.sqltx.QueryContext(ctx, query, args...)
	err = t.mapErr(err)
	t.hooks.After(ctx, query, args, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return &Rows{Rows: rows, errMap: t.errMap}, nil
}

// QueryRow executes a query expected to return at most one row.
func (t *Tx) QueryRow(ctx context.Context, query string, args ...any) *Row {
	start := time.Now()
	t.hooks.Before(ctx, query, args)
	raw := t.sqltx.QueryRowContext(ctx, query, args...)
	t.hooks.After(ctx, query, args, time.Since(start), t.mapErr(raw.Err()))
	return &Row{raw: raw, errMap: t.errMap}
}

func (t *Tx) mapErr(err error) error {
	if err == nil {
		return nil
	}
	return t.errMap.Map(err)
}

// ─────────────────────────────────────────────────────────────────────────────
// ExecTx
// ─────────────────────────────────────────────────────────────────────────────

// ExecTx starts a transaction, executes fn, and commits on success or rolls
// back on error or panic. Request handlers never need it: every entity
// operation is a single auto-committed statement. It exists for fixtures and
// bulk loading.
//
//	err := d.ExecTx(ctx, func(tx *db.Tx) error {
//	    _, err := tx.Exec(ctx, "INSERT INTO companies (handle, name, description) VALUES ($1, $2, $3)", h, n, desc)
//	    return err
//	})
func (d *DB) ExecTx(ctx context.Context, fn func(*Tx) error) (err error) {
	sqltx, err := d.sqldb.BeginTx(ctx, nil)
	if err != nil {
		return d.mapErr(err)
	}

	tx := &Tx{
		sqltx:   sqltx,
		dialect: d.dialect,
		hooks:   d.hooks,
		errMap:  d.errMap,
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqltx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := sqltx.Rollback(); rbErr != nil {
				err = fmt.Errorf("jobly/db: rollback failed (%v) after original error: %w", rbErr, err)
			}
		}
	}()

	if err = fn(tx); err != nil {
		return d.mapErr(err)
	}
	if err = sqltx.Commit(); err != nil {
		return d.mapErr(err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Querier
// ─────────────────────────────────────────────────────────────────────────────

// Querier is the handle every repository receives. Both *DB and *Tx
// satisfy it.
type Querier interface {
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)
	Query(ctx context.Context, query string, args ...any) (*Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) *Row
	Dialect() Dialect
}

var (
	_ Querier = (*DB)(nil)
	_ Querier = (*Tx)(nil)
)
