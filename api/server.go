// Package api is Jobly's HTTP layer: routing, request validation,
// authentication gates and the JSON error envelope.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Skryldev/jobly/apperr"
	"github.com/Skryldev/jobly/auth"
	"github.com/Skryldev/jobly/metrics"
	"github.com/Skryldev/jobly/repo"
	"github.com/Skryldev/jobly/schemas"
)

// Pinger reports database health. *db.DB implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators a Server routes requests to.
type Deps struct {
	Jobs      repo.JobRepository
	Companies repo.CompanyRepository
	Users     repo.UserRepository
	Tokens    *auth.Tokens
	Schemas   *schemas.Validator
	// DB is pinged by /health; nil skips the check.
	DB        Pinger
	RateLimit RateLimitConfig
}

type Server struct {
	jobs      repo.JobRepository
	companies repo.CompanyRepository
	users     repo.UserRepository
	tokens    *auth.Tokens
	schemas   *schemas.Validator
	db        Pinger
	rateLimit RateLimitConfig
}

func New(d Deps) *Server {
	return &Server{
		jobs:      d.Jobs,
		companies: d.Companies,
		users:     d.Users,
		tokens:    d.Tokens,
		schemas:   d.Schemas,
		db:        d.DB,
		rateLimit: d.RateLimit,
	}
}

// Handler builds the gin engine with every route registered.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(requestID(), observe(), recovery(), authenticate(s.tokens))

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// One per-IP budget shared by both credential endpoints.
	limit := rateLimit(s.rateLimit)
	authRoutes := r.Group("/auth")
	authRoutes.POST("/token", limit, s.createToken)
	authRoutes.POST("/register", limit, s.register)
	authRoutes.GET("/me", RequireLogin(), s.me)

	companies := r.Group("/companies")
	companies.POST("", RequireAdmin(), s.createCompany)
	companies.GET("", s.listCompanies)
	companies.GET("/:handle", s.getCompany)
	companies.PATCH("/:handle", RequireAdmin(), s.updateCompany)
	companies.DELETE("/:handle", RequireAdmin(), s.removeCompany)

	jobs := r.Group("/jobs")
	jobs.POST("", RequireAdmin(), s.createJob)
	jobs.GET("", s.listJobs)
	jobs.GET("/:id", s.getJob)
	jobs.PATCH("/:id", RequireAdmin(), s.updateJob)
	jobs.DELETE("/:id", RequireAdmin(), s.removeJob)

	users := r.Group("/users")
	users.POST("", RequireAdmin(), s.createUser)
	users.GET("", RequireAdmin(), s.listUsers)
	users.GET("/:username", RequireAdminOrSelf("username"), s.getUser)
	users.PATCH("/:username", RequireAdminOrSelf("username"), s.updateUser)
	users.DELETE("/:username", RequireAdminOrSelf("username"), s.removeUser)
	users.POST("/:username/jobs/:id", RequireAdminOrSelf("username"), s.applyToJob)

	r.NoRoute(func(c *gin.Context) {
		writeError(c, apperr.NotFound("Not Found"))
	})
	return r
}

func (s *Server) health(c *gin.Context) {
	if s.db != nil {
		if err := s.db.Ping(c.Request.Context()); err != nil {
			respondError(c, http.StatusServiceUnavailable, "Database unavailable")
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
