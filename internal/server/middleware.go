package server

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kcs1040/jarviscs/internal/auth"
	"github.com/kcs1040/jarviscs/internal/logger"
)

const credentialKey = "session_credential"

// requestLogger tags each request with an ID and logs method, path, status
// and duration.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		logger.Info("request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String())
	}
}

// sessionCredential loads the caller's Credential into the request context.
//
// Resolution order, applied exactly once for every calendar route: the
// session cookie first, then an "Authorization: Bearer" header carrying the
// same signed session token. An absent or invalid token resolves to the
// zero Credential ("not signed in"); the pipeline turns that into a 401 at
// the point where an access token is actually needed.
func (s *Server) sessionCredential() gin.HandlerFunc {
	return func(c *gin.Context) {
		var raw string
		if cookie, err := c.Cookie(auth.SessionCookieName); err == nil {
			raw = cookie
		} else if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
			raw = strings.TrimPrefix(header, "Bearer ")
		}

		var cred auth.Credential
		if raw != "" {
			parsed, err := s.sessions.Parse(raw)
			if err != nil {
				logger.Debug("rejecting session token", "error", err)
			} else {
				cred = parsed
			}
		}

		c.Set(credentialKey, cred)
		c.Next()
	}
}

func currentCredential(c *gin.Context) auth.Credential {
	if v, ok := c.Get(credentialKey); ok {
		if cred, ok := v.(auth.Credential); ok {
			return cred
		}
	}
	return auth.Credential{}
}
