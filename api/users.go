package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Skryldev/jobly/apperr"
	"github.com/Skryldev/jobly/models"
	"github.com/Skryldev/jobly/schemas"
)

// POST /users {user} => 201 {user, token}
//
// Admin-only account creation; unlike /auth/register it may create admins.
func (s *Server) createUser(c *gin.Context) {
	var p models.RegisterUserParams
	if err := s.bindBody(c, schemas.UserNew, &p); err != nil {
		writeError(c, err)
		return
	}
	user, err := s.users.Register(c.Request.Context(), p)
	if err != nil {
		writeError(c, err)
		return
	}
	token, err := s.tokens.Sign(user.Username, user.IsAdmin)
	if err != nil {
		writeError(c, apperr.Internal(err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

// GET /users => {users: [...]}
func (s *Server) listUsers(c *gin.Context) {
	users, err := s.users.FindAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// GET /users/:username => {user: {..., jobs: [id, ...]}}
func (s *Server) getUser(c *gin.Context) {
	user, err := s.users.Get(c.Request.Context(), c.Param("username"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// PATCH /users/:username {firstName?, lastName?, password?, email?, isAdmin?} => {user}
func (s *Server) updateUser(c *gin.Context) {
	changes, err := s.bindChanges(c, schemas.UserUpdate)
	if err != nil {
		writeError(c, err)
		return
	}
	if _, ok := changes.Lookup("isAdmin"); ok {
		if caller, _ := currentUser(c); !caller.IsAdmin {
			writeError(c, apperr.Unauthorized("Only admins can change isAdmin"))
			return
		}
	}
	user, err := s.users.Update(c.Request.Context(), c.Param("username"), changes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// DELETE /users/:username => {deleted: username}
func (s *Server) removeUser(c *gin.Context) {
	username, err := s.users.Remove(c.Request.Context(), c.Param("username"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": username})
}

// POST /users/:username/jobs/:id => {applied: id}
func (s *Server) applyToJob(c *gin.Context) {
	id, err := idParam(c, "id", "No job: ")
	if err != nil {
		writeError(c, err)
		return
	}
	if err := s.users.ApplyToJob(c.Request.Context(), c.Param("username"), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applied": id})
}
