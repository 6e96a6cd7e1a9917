// Package dbtest provides a migrated, seeded SQLite database for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/migrations"
)

// Fixture is a seeded database plus the ids of its jobs, in insertion
// order: ai developer, data engineer, data analyst, tax accountant,
// environmental consultant.
type Fixture struct {
	DB     *db.DB
	JobIDs []int64
}

// Open returns an empty, migrated database that is closed when t ends.
func Open(t testing.TB) *db.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "jobly.db") + "?_foreign_keys=on"

	m, err := migrations.New("sqlite3", dsn)
	if err != nil {
		t.Fatalf("dbtest: migrator: %v", err)
	}
	if err := m.Up(); err != nil {
		_ = m.Close()
		t.Fatalf("dbtest: migrate: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("dbtest: close migrator: %v", err)
	}

	d, err := db.Open(db.Config{
		DSN:          dsn,
		DriverName:   "sqlite3",
		MaxOpenConns: 1,
		Hooks:        []db.Hook{db.NewLogHook(db.LogHookConfig{LogArgs: true})},
	})
	if err != nil {
		t.Fatalf("dbtest: open: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// Seed returns a migrated database holding three companies (c1..c3), three
// users (u1 is an admin; passwords are "password1".."password3") and five
// jobs.
func Seed(t testing.TB) *Fixture {
	t.Helper()
	d := Open(t)
	f := &Fixture{DB: d}

	err := d.ExecTx(context.Background(), func(tx *db.Tx) error {
		ctx := context.Background()
		for i, c := range []struct{ handle, name string }{{"c1", "C1"}, {"c2", "C2"}, {"c3", "C3"}} {
			n := i + 1
			if _, err := tx.Exec(ctx, `
				INSERT INTO companies (handle, name, num_employees, description, logo_url)
				VALUES ($1, $2, $3, $4, $5)`,
				c.handle, c.name, n, "Desc"+strconv.Itoa(n), "http://"+c.handle+".img"); err != nil {
				return err
			}
		}

		for i, u := range []struct {
			username string
			isAdmin  bool
		}{{"u1", true}, {"u2", false}, {"u3", false}} {
			n := strconv.Itoa(i + 1)
			hash, err := bcrypt.GenerateFromPassword([]byte("password"+n), bcrypt.MinCost)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO users (username, password, first_name, last_name, email, is_admin)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				u.username, string(hash), "U"+n+"F", "U"+n+"L", "user"+n+"@user.com", u.isAdmin); err != nil {
				return err
			}
		}

		for _, j := range []struct {
			title   string
			salary  int64
			equity  any
			company string
		}{
			{"ai developer", 97000, "0", "c3"},
			{"data engineer", 175000, "0.56", "c1"},
			{"data analyst", 56000, "0.74", "c1"},
			{"tax accountant", 83500, "0.47", "c2"},
			{"environmental consultant", 48000, nil, "c3"},
		} {
			var id int64
			if err := tx.QueryRow(ctx, `
				INSERT INTO jobs (title, salary, equity, company_handle)
				VALUES ($1, $2, $3, $4)
				RETURNING id`,
				j.title, j.salary, j.equity, j.company).Scan(&id); err != nil {
				return err
			}
			f.JobIDs = append(f.JobIDs, id)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("dbtest: seed: %v", err)
	}
	return f
}
