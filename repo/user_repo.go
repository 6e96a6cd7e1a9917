package repo

import (
	"context"
	"fmt"

	"github.com/Skryldev/jobly/apperr"
	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/models"
	"github.com/Skryldev/jobly/query"
)

// ─────────────────────────────────────────────────────────────────────────────
// UserRepository interface
// ─────────────────────────────────────────────────────────────────────────────

// UserRepository defines the contract for user accounts and their job
// applications.
type UserRepository interface {
	Register(ctx context.Context, params models.RegisterUserParams) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	FindAll(ctx context.Context) ([]*models.User, error)
	Get(ctx context.Context, username string) (*models.UserDetail, error)
	Update(ctx context.Context, username string, changes query.Changes) (*models.User, error)
	Remove(ctx context.Context, username string) (string, error)
	ApplyToJob(ctx context.Context, username string, jobID int64) error
}

// PasswordHasher hashes passwords on write and checks them on login.
// *auth.Passwords implements it.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

// ─────────────────────────────────────────────────────────────────────────────
// userRepo
// ─────────────────────────────────────────────────────────────────────────────

type userRepo struct {
	q      db.Querier
	hasher PasswordHasher
}

// NewUserRepo returns a UserRepository backed by q.
// q can be a *db.DB or *db.Tx; both satisfy db.Querier.
func NewUserRepo(q db.Querier, hasher PasswordHasher) UserRepository {
	return &userRepo{q: q, hasher: hasher}
}

// ─────────────────────────────────────────────────────────────────────────────
// SQL constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	userColumnList = `username, first_name, last_name, email, is_admin`

	sqlInsertUser = `
		INSERT INTO users (username, password, first_name, last_name, email, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumnList

	sqlGetUserWithPassword = `
		SELECT password, ` + userColumnList + `
		FROM   users
		WHERE  username = $1`

	sqlListUsers = `
		SELECT ` + userColumnList + `
		FROM   users
		ORDER  BY username`

	sqlGetUser = `
		SELECT ` + userColumnList + `
		FROM   users
		WHERE  username = $1`

	sqlUserApplications = `
		SELECT job_id
		FROM   applications
		WHERE  username = $1
		ORDER  BY job_id`

	sqlDeleteUser = `
		DELETE FROM users WHERE username = $1 RETURNING username`

	sqlJobExists = `
		SELECT id FROM jobs WHERE id = $1`

	sqlUserExists = `
		SELECT username FROM users WHERE username = $1`

	sqlInsertApplication = `
		INSERT INTO applications (job_id, username)
		VALUES ($1, $2)`
)

var userUpdatable = []string{"firstName", "lastName", "password", "email", "isAdmin"}

var userColumns = query.Columns{
	"firstName": "first_name",
	"lastName":  "last_name",
	"isAdmin":   "is_admin",
}

// ─────────────────────────────────────────────────────────────────────────────
// Register
// ─────────────────────────────────────────────────────────────────────────────

// Register stores a new account with a hashed password. A taken username
// is a Conflict.
func (r *userRepo) Register(ctx context.Context, p models.RegisterUserParams) (*models.User, error) {
	hash, err := r.hasher.Hash(p.Password)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("repo/user: hash: %w", err))
	}
	row := r.q.QueryRow(ctx, sqlInsertUser, p.Username, hash, p.FirstName, p.LastName, p.Email, p.IsAdmin)
	u, err := scanUser(row)
	if db.IsDuplicateKey(err) {
		return nil, conflict(err, fmt.Sprintf("Duplicate username: %s", p.Username))
	}
	return u, translate(err, "User was not created")
}

// ─────────────────────────────────────────────────────────────────────────────
// Authenticate
// ─────────────────────────────────────────────────────────────────────────────

// Authenticate checks a username/password pair. Unknown users and wrong
// passwords fail the same way.
func (r *userRepo) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var (
		hash string
		u    models.User
	)
	err := r.q.QueryRow(ctx, sqlGetUserWithPassword, username).
		Scan(&hash, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.IsAdmin)
	if err != nil && !db.IsNotFound(err) {
		return nil, translate(err, "")
	}
	if err != nil || r.hasher.Compare(hash, password) != nil {
		return nil, apperr.Unauthorized("Invalid username/password")
	}
	return &u, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// FindAll
// ─────────────────────────────────────────────────────────────────────────────

func (r *userRepo) FindAll(ctx context.Context) ([]*models.User, error) {
	rows, err := r.q.Query(ctx, sqlListUsers)
	if err != nil {
		return nil, translate(err, "")
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, translate(err, "")
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "")
	}
	return users, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Get
// ─────────────────────────────────────────────────────────────────────────────

// Get returns a user with the ids of the jobs they applied to.
func (r *userRepo) Get(ctx context.Context, username string) (*models.UserDetail, error) {
	u, err := scanUser(r.q.QueryRow(ctx, sqlGetUser, username))
	if err != nil {
		return nil, translate(err, fmt.Sprintf("No user: %s", username))
	}

	rows, err := r.q.Query(ctx, sqlUserApplications, username)
	if err != nil {
		return nil, translate(err, "")
	}
	defer rows.Close()

	detail := &models.UserDetail{User: *u, Jobs: []int64{}}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, translate(err, "")
		}
		detail.Jobs = append(detail.Jobs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "")
	}
	return detail, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Update
// ─────────────────────────────────────────────────────────────────────────────

// Update applies a partial update. A supplied password is hashed in place,
// so it keeps its position in the SET list.
func (r *userRepo) Update(ctx context.Context, username string, changes query.Changes) (*models.User, error) {
	if err := changes.Restrict(userUpdatable...); err != nil {
		return nil, err
	}
	if v, ok := changes.Lookup("password"); ok {
		plain, isString := v.(string)
		if !isString {
			return nil, apperr.InvalidInput("password must be a string")
		}
		hash, err := r.hasher.Hash(plain)
		if err != nil {
			return nil, apperr.Internal(fmt.Errorf("repo/user: hash: %w", err))
		}
		changes = changes.With("password", hash)
	}

	set, err := query.SetClause(changes, userColumns)
	if err != nil {
		return nil, err
	}

	sqlUpdate := fmt.Sprintf(`
		UPDATE users
		SET    %s
		WHERE  username = %s
		RETURNING %s`, set.SQL(), set.Next(), userColumnList)

	u, err := scanUser(r.q.QueryRow(ctx, sqlUpdate, append(set.Values, username)...))
	return u, translate(err, fmt.Sprintf("No user: %s", username))
}

// ─────────────────────────────────────────────────────────────────────────────
// Remove
// ─────────────────────────────────────────────────────────────────────────────

// Remove deletes a user and their applications.
func (r *userRepo) Remove(ctx context.Context, username string) (string, error) {
	var deleted string
	err := r.q.QueryRow(ctx, sqlDeleteUser, username).Scan(&deleted)
	return deleted, translate(err, fmt.Sprintf("No user: %s", username))
}

// ─────────────────────────────────────────────────────────────────────────────
// ApplyToJob
// ─────────────────────────────────────────────────────────────────────────────

// ApplyToJob records that username applied to jobID. Both must exist;
// applying twice is a Conflict.
func (r *userRepo) ApplyToJob(ctx context.Context, username string, jobID int64) error {
	var id int64
	if err := r.q.QueryRow(ctx, sqlJobExists, jobID).Scan(&id); err != nil {
		return translate(err, fmt.Sprintf("No job: %d", jobID))
	}
	var name string
	if err := r.q.QueryRow(ctx, sqlUserExists, username).Scan(&name); err != nil {
		return translate(err, fmt.Sprintf("No username: %s", username))
	}

	_, err := r.q.Exec(ctx, sqlInsertApplication, jobID, username)
	if db.IsDuplicateKey(err) {
		return conflict(err, fmt.Sprintf("Already applied to job: %d", jobID))
	}
	return translate(err, "")
}

// ─────────────────────────────────────────────────────────────────────────────
// scanUser
// ─────────────────────────────────────────────────────────────────────────────

// scanUser maps one row of userColumnList. The password hash is never read
// here.
func scanUser(s scanner) (*models.User, error) {
	u := &models.User{}
	if err := s.Scan(&u.Username, &u.FirstName, &u.LastName, &u.Email, &u.IsAdmin); err != nil {
		return nil, err
	}
	return u, nil
}

var _ UserRepository = (*userRepo)(nil)
