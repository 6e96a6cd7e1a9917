package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Skryldev/jobly/apperr"
	"github.com/Skryldev/jobly/models"
	"github.com/Skryldev/jobly/schemas"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /auth/token {username, password} => {token}
func (s *Server) createToken(c *gin.Context) {
	var cred credentials
	if err := s.bindBody(c, schemas.UserAuth, &cred); err != nil {
		writeError(c, err)
		return
	}
	user, err := s.users.Authenticate(c.Request.Context(), cred.Username, cred.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	s.respondToken(c, http.StatusOK, user)
}

// POST /auth/register {username, password, firstName, lastName, email} => 201 {token}
//
// Self-registration never creates an admin.
func (s *Server) register(c *gin.Context) {
	var p models.RegisterUserParams
	if err := s.bindBody(c, schemas.UserRegister, &p); err != nil {
		writeError(c, err)
		return
	}
	p.IsAdmin = false
	user, err := s.users.Register(c.Request.Context(), p)
	if err != nil {
		writeError(c, err)
		return
	}
	s.respondToken(c, http.StatusCreated, user)
}

// GET /auth/me => {user}
func (s *Server) me(c *gin.Context) {
	claims, _ := currentUser(c)
	user, err := s.users.Get(c.Request.Context(), claims.Username)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (s *Server) respondToken(c *gin.Context, status int, user *models.User) {
	token, err := s.tokens.Sign(user.Username, user.IsAdmin)
	if err != nil {
		writeError(c, apperr.Internal(err))
		return
	}
	c.JSON(status, gin.H{"token": token})
}
