package models

import "github.com/Skryldev/jobly/query"

// Job represents a row in the "jobs" table.
// Equity is a NUMERIC column and travels as its decimal text, e.g. "0.56".
type Job struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Salary        *int64  `json:"salary"`
	Equity        *string `json:"equity"`
	CompanyHandle string  `json:"companyHandle"`
}

// CreateJobParams holds the fields required to create a job. The id is
// assigned by the database.
type CreateJobParams struct {
	Title         string  `json:"title"`
	Salary        *int64  `json:"salary"`
	Equity        *string `json:"equity"`
	CompanyHandle string  `json:"companyHandle"`
}

// JobFilter narrows a job listing. A nil field is not filtered on.
type JobFilter struct {
	// Title matches case-insensitively anywhere in the title.
	Title     *string
	MinSalary *int64
	// HasEquity only filters when true; false lists every job.
	HasEquity *bool
}

// Apply adds the filter's predicates to w: title, then salary, then equity.
func (f JobFilter) Apply(w *query.Where) *query.Where {
	return w.
		Contains("title", f.Title).
		AtLeast("salary", f.MinSalary).
		Positive("equity", f.HasEquity)
}
