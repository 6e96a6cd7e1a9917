package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Skryldev/jobly/models"
	"github.com/Skryldev/jobly/schemas"
)

// POST /companies {handle, name, description, numEmployees, logoUrl} => 201 {company}
func (s *Server) createCompany(c *gin.Context) {
	var p models.CreateCompanyParams
	if err := s.bindBody(c, schemas.CompanyNew, &p); err != nil {
		writeError(c, err)
		return
	}
	company, err := s.companies.Create(c.Request.Context(), p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"company": company})
}

// GET /companies?nameLike=&minEmployees=&maxEmployees= => {companies: [...]}
func (s *Server) listCompanies(c *gin.Context) {
	doc := searchParams(c, []string{"minEmployees", "maxEmployees"}, nil)
	if err := s.schemas.Validate(schemas.CompanySearch, doc); err != nil {
		writeError(c, err)
		return
	}
	companies, err := s.companies.FindAll(c.Request.Context(), models.CompanyFilter{
		Name:         stringParam(doc, "nameLike"),
		MinEmployees: intParam(doc, "minEmployees"),
		MaxEmployees: intParam(doc, "maxEmployees"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"companies": companies})
}

// GET /companies/:handle => {company: {..., jobs: [...]}}
func (s *Server) getCompany(c *gin.Context) {
	company, err := s.companies.Get(c.Request.Context(), c.Param("handle"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"company": company})
}

// PATCH /companies/:handle {name?, description?, numEmployees?, logoUrl?} => {company}
func (s *Server) updateCompany(c *gin.Context) {
	changes, err := s.bindChanges(c, schemas.CompanyUpdate)
	if err != nil {
		writeError(c, err)
		return
	}
	company, err := s.companies.Update(c.Request.Context(), c.Param("handle"), changes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"company": company})
}

// DELETE /companies/:handle => {deleted: handle}
func (s *Server) removeCompany(c *gin.Context) {
	handle, err := s.companies.Remove(c.Request.Context(), c.Param("handle"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": handle})
}
