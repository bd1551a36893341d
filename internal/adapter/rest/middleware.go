package rest

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AuthMiddleware checks "Authorization: Bearer <token>" against the configured API token
func AuthMiddleware(validToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				token = strings.TrimSpace(parts[1])
			}
		}

		// ?token=xxx for downloads where headers cannot be set
		if token == "" {
			token = c.Query("token")
		}

		if token == "" {
			Error(c, http.StatusUnauthorized, CodeAuth, "missing authorization token")
			c.Abort()
			return
		}
		if validToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(validToken)) != 1 {
			Error(c, http.StatusUnauthorized, CodeAuth, "invalid token")
			c.Abort()
			return
		}
		c.Next()
	}
}

// LogMiddleware logs every request with zerolog
func LogMiddleware(log zerolog.Logger) gin.HandlerFunc {
	log = log.With().Str("component", "http").Logger()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		switch {
		case status >= http.StatusInternalServerError:
			event = log.Error()
		case status >= http.StatusBadRequest:
			event = log.Warn()
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}
		event.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("Handled HTTP request")
	}
}
