package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/kcs1040/jarviscs/internal/auth"
	"github.com/kcs1040/jarviscs/internal/logger"
)

const stateCookieName = "jarviscs_oauth_state"

// handleLogin redirects to the Google consent screen. access_type=offline
// plus prompt=consent coaxes Google into issuing a refresh token.
func (s *Server) handleLogin(c *gin.Context) {
	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookieName, state, 600, "/", "", false, true)

	authURL := s.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))
	c.Redirect(http.StatusFound, authURL)
}

// handleCallback exchanges the authorization code and seeds the session
// cookie with the initial credential triple.
func (s *Server) handleCallback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing state or code"})
		return
	}

	storedState, err := c.Cookie(stateCookieName)
	if err != nil || storedState != state {
		logger.Warn("oauth state mismatch")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state parameter"})
		return
	}
	c.SetCookie(stateCookieName, "", -1, "/", "", false, true)

	token, err := s.oauth.Exchange(c.Request.Context(), code)
	if err != nil {
		logger.Error("oauth code exchange failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "code exchange failed"})
		return
	}

	cred := auth.Credential{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry.Unix(),
	}
	s.persistCredential(c, cred)

	logger.Info("sign-in complete", "has_refresh_token", token.RefreshToken != "")
	c.Redirect(http.StatusFound, "/")
}

func (s *Server) handleLogout(c *gin.Context) {
	c.SetCookie(auth.SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "signed out"})
}
