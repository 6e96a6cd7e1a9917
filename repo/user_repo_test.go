package repo_test

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/Skryldev/jobly/apperr"
	"github.com/Skryldev/jobly/auth"
	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/dbtest"
	"github.com/Skryldev/jobly/models"
	"github.com/Skryldev/jobly/query"
	"github.com/Skryldev/jobly/repo"
)

// ─────────────────────────────────────────────────────────────────────────────
// Test fixture
// ─────────────────────────────────────────────────────────────────────────────

func newUserRepo(t *testing.T) (repo.UserRepository, *dbtest.Fixture) {
	t.Helper()
	f := dbtest.Seed(t)
	return repo.NewUserRepo(f.DB, auth.NewPasswords(bcrypt.MinCost)), f
}

// ─────────────────────────────────────────────────────────────────────────────
// Register / Authenticate
// ─────────────────────────────────────────────────────────────────────────────

func TestUserRepo_Register(t *testing.T) {
	r, f := newUserRepo(t)
	ctx := context.Background()

	u, err := r.Register(ctx, models.RegisterUserParams{
		Username:  "new",
		Password:  "password",
		FirstName: "Test",
		LastName:  "Tester",
		Email:     "test@test.com",
		IsAdmin:   true,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Username != "new" || !u.IsAdmin || u.Email != "test@test.com" {
		t.Fatalf("unexpected user: %+v", u)
	}

	var hash string
	if err := f.DB.QueryRow(ctx, `SELECT password FROM users WHERE username = $1`, "new").Scan(&hash); err != nil {
		t.Fatalf("read hash: %v", err)
	}
	if hash == "password" || bcrypt.CompareHashAndPassword([]byte(hash), []byte("password")) != nil {
		t.Fatalf("password not stored as bcrypt hash: %q", hash)
	}
}

func TestUserRepo_Register_Duplicate(t *testing.T) {
	r, _ := newUserRepo(t)

	_, err := r.Register(context.Background(), models.RegisterUserParams{
		Username: "u1", Password: "password", FirstName: "a", LastName: "b", Email: "a@b.com",
	})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

func TestUserRepo_Authenticate(t *testing.T) {
	r, _ := newUserRepo(t)
	ctx := context.Background()

	u, err := r.Authenticate(ctx, "u1", "password1")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if u.Username != "u1" || !u.IsAdmin || u.FirstName != "U1F" {
		t.Fatalf("unexpected user: %+v", u)
	}

	for _, tc := range []struct{ user, pass string }{{"u1", "wrong"}, {"nope", "password1"}} {
		if _, err := r.Authenticate(ctx, tc.user, tc.pass); !errors.Is(err, apperr.ErrUnauthorized) {
			t.Fatalf("%s/%s: expected Unauthorized, got %v", tc.user, tc.pass, err)
		}
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// FindAll / Get
// ─────────────────────────────────────────────────────────────────────────────

func TestUserRepo_FindAll(t *testing.T) {
	r, _ := newUserRepo(t)

	users, err := r.FindAll(context.Background())
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	got := make([]string, len(users))
	for i, u := range users {
		got[i] = u.Username
	}
	if !equalStrings(got, []string{"u1", "u2", "u3"}) {
		t.Fatalf("usernames = %v", got)
	}
}

func TestUserRepo_Get(t *testing.T) {
	r, _ := newUserRepo(t)
	ctx := context.Background()

	u, err := r.Get(ctx, "u2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.Username != "u2" || u.IsAdmin || u.Jobs == nil || len(u.Jobs) != 0 {
		t.Fatalf("unexpected user: %+v", u)
	}

	if _, err := r.Get(ctx, "nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update
// ─────────────────────────────────────────────────────────────────────────────

func TestUserRepo_Update(t *testing.T) {
	r, _ := newUserRepo(t)
	ctx := context.Background()

	u, err := r.Update(ctx, "u2", query.Changes{
		{Field: "firstName", Value: "NewF"},
		{Field: "email", Value: "new@email.com"},
		{Field: "isAdmin", Value: true},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.FirstName != "NewF" || u.LastName != "U2L" || u.Email != "new@email.com" || !u.IsAdmin {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestUserRepo_Update_PasswordIsRehashed(t *testing.T) {
	r, _ := newUserRepo(t)
	ctx := context.Background()

	if _, err := r.Update(ctx, "u2", query.Changes{{Field: "password", Value: "new-password"}}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := r.Authenticate(ctx, "u2", "new-password"); err != nil {
		t.Fatalf("authenticate with new password: %v", err)
	}
	if _, err := r.Authenticate(ctx, "u2", "password2"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("old password still works: %v", err)
	}
}

func TestUserRepo_Update_Rejected(t *testing.T) {
	r, _ := newUserRepo(t)
	ctx := context.Background()

	cases := map[string]query.Changes{
		"empty":    {},
		"username": {{Field: "username", Value: "x"}},
		"password": {{Field: "password", Value: int64(5)}},
	}
	for name, changes := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := r.Update(ctx, "u1", changes); !errors.Is(err, apperr.ErrInvalidInput) {
				t.Fatalf("expected InvalidInput, got %v", err)
			}
		})
	}
	if _, err := r.Update(ctx, "nope", query.Changes{{Field: "firstName", Value: "x"}}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Remove / ApplyToJob
// ─────────────────────────────────────────────────────────────────────────────

func TestUserRepo_Remove(t *testing.T) {
	r, _ := newUserRepo(t)
	ctx := context.Background()

	name, err := r.Remove(ctx, "u3")
	if err != nil || name != "u3" {
		t.Fatalf("remove = %q, %v", name, err)
	}
	if _, err := r.Remove(ctx, "u3"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestUserRepo_ApplyToJob(t *testing.T) {
	r, f := newUserRepo(t)
	ctx := context.Background()

	if err := r.ApplyToJob(ctx, "u2", f.JobIDs[3]); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := r.ApplyToJob(ctx, "u2", f.JobIDs[0]); err != nil {
		t.Fatalf("apply: %v", err)
	}
	u, err := r.Get(ctx, "u2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(u.Jobs) != 2 || u.Jobs[0] != f.JobIDs[0] || u.Jobs[1] != f.JobIDs[3] {
		t.Fatalf("jobs = %v", u.Jobs)
	}

	if err := r.ApplyToJob(ctx, "u2", f.JobIDs[3]); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected Conflict on re-apply, got %v", err)
	}
	if err := r.ApplyToJob(ctx, "u2", 999999); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected NotFound for job, got %v", err)
	}
	if err := r.ApplyToJob(ctx, "nope", f.JobIDs[0]); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected NotFound for user, got %v", err)
	}
}

func TestUserRepo_InsideTransaction(t *testing.T) {
	_, f := newUserRepo(t)
	ctx := context.Background()
	sentinel := errors.New("rollback")

	err := f.DB.ExecTx(ctx, func(tx *db.Tx) error {
		r := repo.NewUserRepo(tx, auth.NewPasswords(bcrypt.MinCost))
		if _, err := r.Remove(ctx, "u2"); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel, got %v", err)
	}

	r := repo.NewUserRepo(f.DB, auth.NewPasswords(bcrypt.MinCost))
	if _, err := r.Get(ctx, "u2"); err != nil {
		t.Fatalf("rolled back user should still exist: %v", err)
	}
}
