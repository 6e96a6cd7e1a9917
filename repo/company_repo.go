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
// CompanyRepository
// ─────────────────────────────────────────────────────────────────────────────

// CompanyRepository defines persistence for companies, keyed by handle.
type CompanyRepository interface {
	Create(ctx context.Context, params models.CreateCompanyParams) (*models.Company, error)
	FindAll(ctx context.Context, filter models.CompanyFilter) ([]*models.Company, error)
	Get(ctx context.Context, handle string) (*models.CompanyDetail, error)
	Update(ctx context.Context, handle string, changes query.Changes) (*models.Company, error)
	Remove(ctx context.Context, handle string) (string, error)
}

type companyRepo struct {
	q db.Querier
}

func NewCompanyRepo(q db.Querier) CompanyRepository {
	return &companyRepo{q: q}
}

// ─────────────────────────────────────────────────────────────────────────────
// SQL
// ─────────────────────────────────────────────────────────────────────────────

const (
	companyColumnList = `handle, name, description, num_employees, logo_url`

	sqlInsertCompany = `
		INSERT INTO companies (handle, name, description, num_employees, logo_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + companyColumnList

	sqlSelectCompanies = `
		SELECT ` + companyColumnList + `
		FROM   companies`

	sqlGetCompany = sqlSelectCompanies + `
		WHERE  handle = $1`

	sqlCompanyJobs = `
		SELECT ` + jobColumnList + `
		FROM   jobs
		WHERE  company_handle = $1
		ORDER  BY id`

	sqlDeleteCompany = `
		DELETE FROM companies WHERE handle = $1 RETURNING handle`
)

var companyUpdatable = []string{"name", "description", "numEmployees", "logoUrl"}

var companyColumns = query.Columns{
	"numEmployees": "num_employees",
	"logoUrl":      "logo_url",
}

// ─────────────────────────────────────────────────────────────────────────────
// Create
// ─────────────────────────────────────────────────────────────────────────────

// Create inserts a company. A taken handle or name is a Conflict.
func (r *companyRepo) Create(ctx context.Context, p models.CreateCompanyParams) (*models.Company, error) {
	row := r.q.QueryRow(ctx, sqlInsertCompany,
		p.Handle, p.Name, p.Description, nullInt64(p.NumEmployees), nullString(p.LogoURL))
	c, err := scanCompany(row)
	if db.IsDuplicateKey(err) {
		return nil, conflict(err, fmt.Sprintf("Duplicate company: %s", p.Handle))
	}
	return c, translate(err, "Company was not created")
}

// ─────────────────────────────────────────────────────────────────────────────
// FindAll
// ─────────────────────────────────────────────────────────────────────────────

// FindAll lists companies matching filter ordered by name. An inverted
// employee range is InvalidInput.
func (r *companyRepo) FindAll(ctx context.Context, filter models.CompanyFilter) ([]*models.Company, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	w := filter.Apply(query.NewWhere(r.q.Dialect()))

	rows, err := r.q.Query(ctx, sqlSelectCompanies+w.SQL()+" ORDER BY name", w.Args()...)
	if err != nil {
		return nil, translate(err, "")
	}
	defer rows.Close()

	companies := []*models.Company{}
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, translate(err, "")
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "")
	}
	return companies, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Get
// ─────────────────────────────────────────────────────────────────────────────

// Get returns a company with its jobs ordered by id.
func (r *companyRepo) Get(ctx context.Context, handle string) (*models.CompanyDetail, error) {
	c, err := scanCompany(r.q.QueryRow(ctx, sqlGetCompany, handle))
	if err != nil {
		return nil, translate(err, fmt.Sprintf("No company: %s", handle))
	}

	rows, err := r.q.Query(ctx, sqlCompanyJobs, handle)
	if err != nil {
		return nil, translate(err, "")
	}
	defer rows.Close()

	detail := &models.CompanyDetail{Company: *c, Jobs: []*models.Job{}}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, translate(err, "")
		}
		detail.Jobs = append(detail.Jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "")
	}
	return detail, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Update
// ─────────────────────────────────────────────────────────────────────────────

// Update applies a partial update. The handle itself cannot change.
func (r *companyRepo) Update(ctx context.Context, handle string, changes query.Changes) (*models.Company, error) {
	if err := changes.Restrict(companyUpdatable...); err != nil {
		return nil, err
	}
	set, err := query.SetClause(changes, companyColumns)
	if err != nil {
		return nil, err
	}

	sqlUpdate := fmt.Sprintf(`
		UPDATE companies
		SET    %s
		WHERE  handle = %s
		RETURNING %s`, set.SQL(), set.Next(), companyColumnList)

	c, err := scanCompany(r.q.QueryRow(ctx, sqlUpdate, append(set.Values, handle)...))
	if db.IsDuplicateKey(err) {
		return nil, conflict(err, "Duplicate company name")
	}
	return c, translate(err, fmt.Sprintf("No company: %s", handle))
}

// ─────────────────────────────────────────────────────────────────────────────
// Remove
// ─────────────────────────────────────────────────────────────────────────────

// Remove deletes a company and, by cascade, its jobs.
func (r *companyRepo) Remove(ctx context.Context, handle string) (string, error) {
	var deleted string
	err := r.q.QueryRow(ctx, sqlDeleteCompany, handle).Scan(&deleted)
	return deleted, translate(err, fmt.Sprintf("No company: %s", handle))
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning
// ─────────────────────────────────────────────────────────────────────────────

func scanCompany(s scanner) (*models.Company, error) {
	var (
		c       models.Company
		numEmpl sql.NullInt64
		logo    sql.NullString
	)
	if err := s.Scan(&c.Handle, &c.Name, &c.Description, &numEmpl, &logo); err != nil {
		return nil, err
	}
	c.NumEmployees = int64Ptr(numEmpl)
	c.LogoURL = stringPtr(logo)
	return &c, nil
}

var _ CompanyRepository = (*companyRepo)(nil)
