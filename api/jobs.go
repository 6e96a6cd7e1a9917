package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Skryldev/jobly/models"
	"github.com/Skryldev/jobly/schemas"
)

// POST /jobs {title, salary, equity, companyHandle} => 201 {job}
func (s *Server) createJob(c *gin.Context) {
	var p models.CreateJobParams
	if err := s.bindBody(c, schemas.JobNew, &p); err != nil {
		writeError(c, err)
		return
	}
	job, err := s.jobs.Create(c.Request.Context(), p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"job": job})
}

// GET /jobs?title=&minSalary=&hasEquity= => {jobs: [...]}
func (s *Server) listJobs(c *gin.Context) {
	doc := searchParams(c, []string{"minSalary"}, []string{"hasEquity"})
	if err := s.schemas.Validate(schemas.JobSearch, doc); err != nil {
		writeError(c, err)
		return
	}
	jobs, err := s.jobs.FindAll(c.Request.Context(), models.JobFilter{
		Title:     stringParam(doc, "title"),
		MinSalary: intParam(doc, "minSalary"),
		HasEquity: boolParam(doc, "hasEquity"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// GET /jobs/:id => {job}
func (s *Server) getJob(c *gin.Context) {
	id, err := idParam(c, "id", "No job: ")
	if err != nil {
		writeError(c, err)
		return
	}
	job, err := s.jobs.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": job})
}

// PATCH /jobs/:id {title?, salary?, equity?} => {job}
func (s *Server) updateJob(c *gin.Context) {
	id, err := idParam(c, "id", "No job: ")
	if err != nil {
		writeError(c, err)
		return
	}
	changes, err := s.bindChanges(c, schemas.JobUpdate)
	if err != nil {
		writeError(c, err)
		return
	}
	job, err := s.jobs.Update(c.Request.Context(), id, changes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": job})
}

// DELETE /jobs/:id => {deleted: id}
func (s *Server) removeJob(c *gin.Context) {
	id, err := idParam(c, "id", "No job: ")
	if err != nil {
		writeError(c, err)
		return
	}
	deleted, err := s.jobs.Remove(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
