package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/models"
	"github.com/Skryldev/jobly/query"
)

// ─────────────────────────────────────────────────────────────────────────────
// JobRepository
// ─────────────────────────────────────────────────────────────────────────────

// JobRepository defines persistence for job postings.
type JobRepository interface {
	Create(ctx context.Context, params models.CreateJobParams) (*models.Job, error)
	FindAll(ctx context.Context, filter models.JobFilter) ([]*models.Job, error)
	Get(ctx context.Context, id int64) (*models.Job, error)
	Update(ctx context.Context, id int64, changes query.Changes) (*models.Job, error)
	Remove(ctx context.Context, id int64) (int64, error)
}

type jobRepo struct {
	q db.Querier
}

// NewJobRepo returns a JobRepository backed by q (a *db.DB or *db.Tx).
func NewJobRepo(q db.Querier) JobRepository {
	return &jobRepo{q: q}
}

// ─────────────────────────────────────────────────────────────────────────────
// SQL
// ─────────────────────────────────────────────────────────────────────────────

const (
	jobColumnList = `id, title, salary, equity, company_handle`

	sqlInsertJob = `
		INSERT INTO jobs (title, salary, equity, company_handle)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + jobColumnList

	sqlSelectJobs = `
		SELECT ` + jobColumnList + `
		FROM   jobs`

	sqlGetJob = sqlSelectJobs + `
		WHERE  id = $1`

	sqlDeleteJob = `
		DELETE FROM jobs WHERE id = $1 RETURNING id`
)

// jobUpdatable lists the fields a partial update may touch. The id and the
// owning company are fixed at creation.
var jobUpdatable = []string{"title", "salary", "equity"}

var jobColumns = query.Columns{
	"companyHandle": "company_handle",
}

// ─────────────────────────────────────────────────────────────────────────────
// Create
// ─────────────────────────────────────────────────────────────────────────────

// Create inserts a job and returns it with its assigned id. An unknown
// company handle is InvalidInput.
func (r *jobRepo) Create(ctx context.Context, p models.CreateJobParams) (*models.Job, error) {
	row := r.q.QueryRow(ctx, sqlInsertJob, p.Title, nullInt64(p.Salary), nullString(p.Equity), p.CompanyHandle)
	j, err := scanJob(row)
	return j, translate(err, "Job was not created")
}

// ─────────────────────────────────────────────────────────────────────────────
// FindAll
// ─────────────────────────────────────────────────────────────────────────────

// FindAll lists the jobs matching filter ordered by title. No match yields
// an empty, non-nil slice.
func (r *jobRepo) FindAll(ctx context.Context, filter models.JobFilter) ([]*models.Job, error) {
	w := filter.Apply(query.NewWhere(r.q.Dialect()))

	rows, err := r.q.Query(ctx, sqlSelectJobs+w.SQL()+" ORDER BY title", w.Args()...)
	if err != nil {
		return nil, translate(err, "")
	}
	defer rows.Close()

	jobs := []*models.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, translate(err, "")
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "")
	}
	return jobs, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Get
// ─────────────────────────────────────────────────────────────────────────────

func (r *jobRepo) Get(ctx context.Context, id int64) (*models.Job, error) {
	j, err := scanJob(r.q.QueryRow(ctx, sqlGetJob, id))
	return j, translate(err, fmt.Sprintf("No job: %d", id))
}

// ─────────────────────────────────────────────────────────────────────────────
// Update
// ─────────────────────────────────────────────────────────────────────────────

// Update applies a partial update. Only title, salary and equity may change;
// anything else, or no fields at all, is InvalidInput.
func (r *jobRepo) Update(ctx context.Context, id int64, changes query.Changes) (*models.Job, error) {
	if err := changes.Restrict(jobUpdatable...); err != nil {
		return nil, err
	}
	set, err := query.SetClause(changes, jobColumns)
	if err != nil {
		return nil, err
	}

	sqlUpdate := fmt.Sprintf(`
		UPDATE jobs
		SET    %s
		WHERE  id = %s
		RETURNING %s`, set.SQL(), set.Next(), jobColumnList)

	j, err := scanJob(r.q.QueryRow(ctx, sqlUpdate, append(set.Values, id)...))
	return j, translate(err, fmt.Sprintf("No job with id: %d", id))
}

// ─────────────────────────────────────────────────────────────────────────────
// Remove
// ─────────────────────────────────────────────────────────────────────────────

// Remove deletes a job and returns its id.
func (r *jobRepo) Remove(ctx context.Context, id int64) (int64, error) {
	var deleted int64
	err := r.q.QueryRow(ctx, sqlDeleteJob, id).Scan(&deleted)
	return deleted, translate(err, fmt.Sprintf("No job with id: %d", id))
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning
// ─────────────────────────────────────────────────────────────────────────────

func scanJob(s scanner) (*models.Job, error) {
	var (
		j      models.Job
		salary sql.NullInt64
		equity sql.NullString
	)
	if err := s.Scan(&j.ID, &j.Title, &salary, &equity, &j.CompanyHandle); err != nil {
		return nil, err
	}
	j.Salary = int64Ptr(salary)
	j.Equity = stringPtr(equity)
	return &j, nil
}

var _ JobRepository = (*jobRepo)(nil)
