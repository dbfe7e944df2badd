package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/kcs1040/jarviscs/internal/auth"
	"github.com/kcs1040/jarviscs/internal/calendar"
	"github.com/kcs1040/jarviscs/internal/config"
	"github.com/kcs1040/jarviscs/internal/logger"
)

// Server is the HTTP route layer. It owns no domain logic: every calendar
// request flows through calendar.Service with an explicit Credential value,
// and the updated credential comes back to be re-issued as the session cookie.
type Server struct {
	cfg      *config.Config
	svc      *calendar.Service
	sessions *auth.SessionCodec
	oauth    *oauth2.Config
	engine   *gin.Engine
}

func New(cfg *config.Config, svc *calendar.Service, sessions *auth.SessionCodec) *Server {
	s := &Server{
		cfg:      cfg,
		svc:      svc,
		sessions: sessions,
		oauth: &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
			Endpoint:     google.Endpoint,
			Scopes: []string{
				"openid", "email", "profile",
				calendar.ScopeCalendarReadonly,
			},
		},
	}
	s.engine = s.buildEngine()
	return s
}

func (s *Server) buildEngine() *gin.Engine {
	if !logger.IsVerbose() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger())

	engine.GET("/healthz", s.handleHealth)

	authGroup := engine.Group("/auth")
	{
		authGroup.GET("/login", s.handleLogin)
		authGroup.GET("/callback", s.handleCallback)
		authGroup.GET("/logout", s.handleLogout)
	}

	api := engine.Group("/api")
	{
		api.POST("/chat", s.handleChat)
		api.GET("/debug/env", s.handleDebugEnv)

		cal := api.Group("/calendar")
		cal.Use(s.sessionCredential())
		{
			cal.GET("/list", s.handleCalendarList)
			cal.GET("/next", s.handleNext)
			cal.GET("/meetings/next-week", s.handleNextWeek)
			cal.GET("/meetings/today", s.handleToday)
		}
	}

	return engine
}

// Handler exposes the engine for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run blocks serving HTTP on the configured address.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	logger.Info("server listening", "addr", s.cfg.Server.Addr)
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
