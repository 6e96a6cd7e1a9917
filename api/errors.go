package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Skryldev/jobly/apperr"
	"github.com/Skryldev/jobly/logger"
)

// errorBody is the envelope every failed request answers with.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// writeError is the only place an error becomes an HTTP status. Server-side
// failures are logged with the request id and never shown to the caller.
func writeError(c *gin.Context, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
	}
	respondError(c, status, apperr.Message(err))
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, errorBody{Error: errorDetail{Message: message, Status: status}})
}
