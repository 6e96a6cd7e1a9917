package api

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Skryldev/jobly/apperr"
	"github.com/Skryldev/jobly/auth"
	"github.com/Skryldev/jobly/logger"
	"github.com/Skryldev/jobly/metrics"
)

const (
	userContextName = "user"
	requestIDHeader = "X-Request-ID"
)

// ─────────────────────────────────────────────────────────────────────────────
// Request plumbing
// ─────────────────────────────────────────────────────────────────────────────

// requestID tags the request context and response with an id, reusing the
// caller's X-Request-ID when present.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// observe logs each finished request and records it in Prometheus under its
// route template rather than the raw path.
func observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		metrics.ObserveRequest(c.Request.Method, c.FullPath(), status, latency)

		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		}
		logger.FromContext(c.Request.Context()).Log(c.Request.Context(), level, "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", latency,
			"client_ip", c.ClientIP(),
		)
	}
}

func recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		writeError(c, apperr.Internal(fmt.Errorf("panic: %v", recovered)))
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Authentication
// ─────────────────────────────────────────────────────────────────────────────

var bearerPrefix = regexp.MustCompile(`^[Bb]earer `)

// authenticate stores the verified token claims under "user". A missing or
// bad token is not an error here; the request simply stays anonymous.
func authenticate(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header != "" {
			token := strings.TrimSpace(bearerPrefix.ReplaceAllString(header, ""))
			if claims, err := tokens.Verify(token); err == nil {
				c.Set(userContextName, claims)
			}
		}
		c.Next()
	}
}

// currentUser returns the claims stored by authenticate.
func currentUser(c *gin.Context) (*auth.Claims, bool) {
	val, ok := c.Get(userContextName)
	if !ok {
		return nil, false
	}
	claims, ok := val.(*auth.Claims)
	return claims, ok
}

// RequireLogin rejects anonymous requests.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := currentUser(c); !ok {
			writeError(c, apperr.Unauthorized("Unauthorized"))
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects anyone without the admin flag.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, ok := currentUser(c); !ok || !user.IsAdmin {
			writeError(c, apperr.Unauthorized("You must be an admin to access this route"))
			return
		}
		c.Next()
	}
}

// RequireAdminOrSelf admits admins and the user named by the given path
// parameter.
func RequireAdminOrSelf(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok || !(user.IsAdmin || user.Username == c.Param(param)) {
			writeError(c, apperr.Unauthorized("You must either be an admin or said user"))
			return
		}
		c.Next()
	}
}
