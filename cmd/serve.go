package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kcs1040/jarviscs/internal/auth"
	"github.com/kcs1040/jarviscs/internal/calendar"
	"github.com/kcs1040/jarviscs/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the assistant API server",
	Long: `Start the HTTP server exposing the assistant API.

Routes:
  GET  /auth/login                       Google sign-in
  GET  /api/calendar/list                calendars visible to the account
  GET  /api/calendar/next?n=5            next N upcoming events
  GET  /api/calendar/meetings/next-week  next week's meetings
  GET  /api/calendar/meetings/today      today's meetings
  POST /api/chat                         demo chat responder

Requires GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET and AUTH_SECRET.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	tokens := auth.NewManager(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.TokenURL)
	client := calendar.NewClient(cfg.Google.APIEndpoint)

	svc, err := calendar.NewService(tokens, client, cfg.Calendar.TimeZone)
	if err != nil {
		return fmt.Errorf("failed to build calendar service: %w", err)
	}

	sessions, err := auth.NewSessionCodec(cfg.Session.Secret, time.Duration(cfg.Session.TTLHours)*time.Hour)
	if err != nil {
		return fmt.Errorf("failed to build session codec: %w", err)
	}

	return server.New(cfg, svc, sessions).Run()
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
