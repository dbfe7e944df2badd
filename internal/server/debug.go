package server

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// handleDebugEnv reports configuration presence for deployment debugging.
// Secrets are reported as booleans only, never as values.
func (s *Server) handleDebugEnv(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"SERVER_ADDR":          s.cfg.Server.Addr,
		"OAUTH_REDIRECT_URL":   s.cfg.Google.RedirectURL,
		"GOOGLE_CLIENT_ID":     s.cfg.Google.ClientID != "",
		"GOOGLE_CLIENT_SECRET": s.cfg.Google.ClientSecret != "",
		"AUTH_SECRET":          s.cfg.Session.Secret != "",
		"DEFAULT_CALENDAR":     s.cfg.Calendar.DefaultName,
		"CALENDAR_TIME_ZONE":   s.cfg.Calendar.TimeZone,
		"GIN_MODE":             gin.Mode(),
		"HOSTNAME":             os.Getenv("HOSTNAME"),
	})
}
