package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kcs1040/jarviscs/internal/auth"
	"github.com/kcs1040/jarviscs/internal/calendar"
	"github.com/kcs1040/jarviscs/internal/logger"
)

const notSignedInMessage = "Not signed in with Google"

func (s *Server) handleCalendarList(c *gin.Context) {
	cred := currentCredential(c)

	result, err := s.svc.Calendars(c.Request.Context(), cred)
	s.persistCredential(c, result.Credential)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": result.Calendars})
}

func (s *Server) handleNext(c *gin.Context) {
	count := calendar.DefaultUpcomingCount
	if raw := c.Query("n"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			count = parsed
		}
	}

	s.runQuery(c,
		calendar.Ref{ID: calendar.PrimaryCalendarID},
		calendar.WindowSpec{Mode: calendar.ModeUpcoming, Count: calendar.ClampCount(count)})
}

func (s *Server) handleNextWeek(c *gin.Context) {
	s.runQuery(c, s.refFromQuery(c), calendar.WindowSpec{Mode: calendar.ModeNextWeek})
}

func (s *Server) handleToday(c *gin.Context) {
	s.runQuery(c, s.refFromQuery(c), calendar.WindowSpec{Mode: calendar.ModeToday})
}

// refFromQuery derives the calendar reference from query parameters: a
// calendarId is trusted directly, otherwise the calendar name is used,
// defaulting to the configured calendar.
func (s *Server) refFromQuery(c *gin.Context) calendar.Ref {
	if id := c.Query("calendarId"); id != "" {
		return calendar.Ref{ID: id}
	}
	name := c.Query("calendar")
	if name == "" {
		name = s.cfg.Calendar.DefaultName
	}
	return calendar.Ref{Name: name}
}

func (s *Server) runQuery(c *gin.Context, ref calendar.Ref, spec calendar.WindowSpec) {
	cred := currentCredential(c)

	result, err := s.svc.ResolveAndQuery(c.Request.Context(), cred, ref, spec)
	s.persistCredential(c, result.Credential)
	if err != nil {
		s.writeError(c, err)
		return
	}

	body := gin.H{"events": result.Events}
	if result.CalendarSummary != "" {
		body["calendar"] = result.CalendarSummary
	}
	c.JSON(http.StatusOK, body)
}

// persistCredential commits the updated credential back into the session
// cookie. The full record is written or nothing: a renewal either produced a
// complete new triple or a flagged copy of the old one.
func (s *Server) persistCredential(c *gin.Context, cred auth.Credential) {
	if !cred.SignedIn() {
		return
	}
	token, err := s.sessions.Issue(cred)
	if err != nil {
		logger.Error("failed to issue session token", "error", err)
		return
	}
	s.setSessionCookie(c, token)
}

func (s *Server) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookieName, token, int(s.cfg.Session.TTLHours)*3600, "/", "", false, true)
}

// writeError maps pipeline failures onto the wire contract: 401 for a
// missing or unrenewable credential, 404 with the available-calendars
// enumeration for an unresolved name, and the provider's own status and
// error body for any other upstream failure.
func (s *Server) writeError(c *gin.Context, err error) {
	if errors.Is(err, auth.ErrUnauthenticated) || errors.Is(err, auth.ErrRefreshFailed) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": notSignedInMessage})
		return
	}

	var notFound *calendar.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":              "Calendar not found: " + notFound.Name,
			"availableCalendars": notFound.Available,
		})
		return
	}

	var upstream *calendar.UpstreamError
	if errors.As(err, &upstream) {
		if upstream.Body != "" {
			c.Data(upstream.StatusCode, "application/json", []byte(upstream.Body))
		} else {
			c.JSON(upstream.StatusCode, gin.H{"error": upstream.Error()})
		}
		return
	}

	logger.Error("calendar request failed", "error", err)
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}
