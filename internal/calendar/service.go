package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/kcs1040/jarviscs/internal/auth"
	"github.com/kcs1040/jarviscs/internal/logger"
)

// Service is the resolve-and-query pipeline: obtain a valid access token,
// resolve the calendar reference, compute the window, run the events query.
// Each step blocks on the previous one; there is no useful parallelism in the
// chain.
type Service struct {
	tokens *auth.Manager
	client *Client
	loc    *time.Location
	now    func() time.Time
}

// Result carries the query outcome together with the credential the caller
// must persist (the token manager may have renewed it, or flagged it failed).
type Result struct {
	Events     []Event
	Credential auth.Credential
	// CalendarSummary echoes the display name when the calendar was resolved
	// by name, for user confirmation. Empty for direct-ID addressing.
	CalendarSummary string
}

// CalendarsResult is the calendar-list outcome.
type CalendarsResult struct {
	Calendars  []Entry
	Credential auth.Credential
}

// NewService builds the pipeline. timeZone pins the wall-clock interpretation
// of every window.
func NewService(tokens *auth.Manager, client *Client, timeZone string) (*Service, error) {
	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		return nil, fmt.Errorf("failed to load time zone %q: %w", timeZone, err)
	}
	return &Service{
		tokens: tokens,
		client: client,
		loc:    loc,
		now:    time.Now,
	}, nil
}

// ResolveAndQuery is the single entry point the route layer calls. The
// returned Result always carries the credential to persist, including on
// renewal failure, so the sticky error state reaches the session store.
func (s *Service) ResolveAndQuery(ctx context.Context, cred auth.Credential, ref Ref, spec WindowSpec) (Result, error) {
	token, cred, err := s.tokens.ValidAccessToken(ctx, cred)
	if err != nil {
		return Result{Credential: cred}, err
	}

	calendarID, summary, err := s.client.Resolve(ctx, ref, token)
	if err != nil {
		return Result{Credential: cred}, err
	}

	now := s.now()
	var events []Event
	switch spec.Mode {
	case ModeNextWeek:
		events, err = s.client.EventsInWindow(ctx, calendarID, token, NextWeek(now, s.loc))
	case ModeToday:
		// Bounded by the day's explicit window rather than filtered out of an
		// upcoming fetch, so busy days cannot overflow the result cap. The
		// date filter still applies for all-day events spilling across the
		// window edges.
		events, err = s.client.EventsInWindow(ctx, calendarID, token, Today(now, s.loc))
		if err == nil {
			events = FilterToday(events, now, s.loc)
		}
	case ModeUpcoming:
		from := Window{Start: now, TimeZone: s.loc.String()}
		events, err = s.client.UpcomingEvents(ctx, calendarID, token, from, spec.Count)
	default:
		err = fmt.Errorf("unknown window mode: %d", spec.Mode)
	}
	if err != nil {
		return Result{Credential: cred}, err
	}

	logger.Debug("calendar query complete",
		"calendar_id", calendarID,
		"mode", spec.Mode,
		"event_count", len(events))

	return Result{Events: events, Credential: cred, CalendarSummary: summary}, nil
}

// Calendars lists the account's calendars through the same token lifecycle.
func (s *Service) Calendars(ctx context.Context, cred auth.Credential) (CalendarsResult, error) {
	token, cred, err := s.tokens.ValidAccessToken(ctx, cred)
	if err != nil {
		return CalendarsResult{Credential: cred}, err
	}

	entries, err := s.client.ListCalendars(ctx, token)
	if err != nil {
		return CalendarsResult{Credential: cred}, err
	}
	return CalendarsResult{Calendars: entries, Credential: cred}, nil
}
