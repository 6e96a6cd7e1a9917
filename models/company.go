package models

import (
	"github.com/Skryldev/jobly/apperr"
	"github.com/Skryldev/jobly/query"
)

// Company represents a row in the "companies" table.
type Company struct {
	Handle       string  `json:"handle"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	NumEmployees *int64  `json:"numEmployees"`
	LogoURL      *string `json:"logoUrl"`
}

// CompanyDetail is a company together with its open jobs.
type CompanyDetail struct {
	Company
	Jobs []*Job `json:"jobs"`
}

type CreateCompanyParams struct {
	Handle       string  `json:"handle"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	NumEmployees *int64  `json:"numEmployees"`
	LogoURL      *string `json:"logoUrl"`
}

// CompanyFilter narrows a company listing. A nil field is not filtered on.
type CompanyFilter struct {
	Name         *string
	MinEmployees *int64
	MaxEmployees *int64
}

// Validate rejects an empty employee range.
func (f CompanyFilter) Validate() error {
	if f.MinEmployees != nil && f.MaxEmployees != nil && *f.MinEmployees > *f.MaxEmployees {
		return apperr.InvalidInput("minEmployees cannot be greater than maxEmployees")
	}
	return nil
}

// Apply adds the filter's predicates to w: name, then min, then max employees.
func (f CompanyFilter) Apply(w *query.Where) *query.Where {
	return w.
		Contains("name", f.Name).
		AtLeast("num_employees", f.MinEmployees).
		AtMost("num_employees", f.MaxEmployees)
}
