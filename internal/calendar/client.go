package calendar

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/kcs1040/jarviscs/internal/logger"
)

// Client issues Google Calendar API calls on behalf of a per-request access
// token. It holds no credential state itself.
type Client struct {
	// endpoint overrides the API base URL; empty means the public API.
	endpoint string
}

// NewClient creates a calendar API client. endpoint may be empty outside of
// tests.
func NewClient(endpoint string) *Client {
	return &Client{endpoint: endpoint}
}

func (c *Client) service(ctx context.Context, accessToken string) (*gcal.Service, error) {
	source := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	})

	opts := []option.ClientOption{option.WithTokenSource(source)}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}

	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return svc, nil
}

// ListCalendars retrieves every calendar accessible by the token's account.
func (c *Client) ListCalendars(ctx context.Context, accessToken string) ([]Entry, error) {
	svc, err := c.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	list, err := svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, upstream(err)
	}

	entries := make([]Entry, 0, len(list.Items))
	for _, item := range list.Items {
		entries = append(entries, Entry{
			ID:              item.Id,
			Summary:         item.Summary,
			SummaryOverride: item.SummaryOverride,
		})
	}
	return entries, nil
}

// Resolve maps a calendar reference to a concrete calendar ID. A supplied ID
// is trusted as-is with no network call. A name is matched exactly
// (case-sensitive) against each entry's summary or summary override, first
// match in list order wins; the summary of a name-resolved calendar is echoed
// back for user confirmation.
func (c *Client) Resolve(ctx context.Context, ref Ref, accessToken string) (string, string, error) {
	if ref.ID != "" {
		return ref.ID, "", nil
	}

	entries, err := c.ListCalendars(ctx, accessToken)
	if err != nil {
		return "", "", err
	}

	for _, entry := range entries {
		if entry.Summary == ref.Name || entry.SummaryOverride == ref.Name {
			logger.Debug("resolved calendar by name", "name", ref.Name, "calendar_id", entry.ID)
			return entry.ID, entry.displayName(), nil
		}
	}

	available := make([]string, 0, len(entries))
	for _, entry := range entries {
		if name := entry.displayName(); name != "" {
			available = append(available, name)
		}
	}
	return "", "", &NotFoundError{Name: ref.Name, Available: available}
}

// EventsInWindow fetches events inside an explicit window, recurring events
// expanded to single instances, ordered by start time.
func (c *Client) EventsInWindow(ctx context.Context, calendarID, accessToken string, win Window) ([]Event, error) {
	svc, err := c.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	result, err := svc.Events.List(calendarID).
		SingleEvents(true).
		OrderBy("startTime").
		TimeMin(win.Start.Format(isoMillis)).
		TimeMax(win.End.Format(isoMillis)).
		MaxResults(weekMaxResults).
		TimeZone(win.TimeZone).
		Context(ctx).
		Do()
	if err != nil {
		return nil, upstream(err)
	}

	return normalizeAll(result.Items)
}

// UpcomingEvents fetches the next count events starting at or after from,
// with no upper time bound. count is clamped to [1, 20].
func (c *Client) UpcomingEvents(ctx context.Context, calendarID, accessToken string, from Window, count int) ([]Event, error) {
	svc, err := c.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	result, err := svc.Events.List(calendarID).
		SingleEvents(true).
		OrderBy("startTime").
		TimeMin(from.Start.Format(isoMillis)).
		MaxResults(int64(ClampCount(count))).
		TimeZone(from.TimeZone).
		Context(ctx).
		Do()
	if err != nil {
		return nil, upstream(err)
	}

	return normalizeAll(result.Items)
}

func normalizeAll(items []*gcal.Event) ([]Event, error) {
	events := make([]Event, 0, len(items))
	for _, item := range items {
		ev, err := normalize(item)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

// normalize maps a raw API item to the wire Event shape. Timed values win
// over date-only values; both are preserved verbatim. A missing start or end
// makes the payload unusable.
func normalize(item *gcal.Event) (Event, error) {
	ev := Event{
		ID:       item.Id,
		Title:    item.Summary,
		Location: item.Location,
		HTMLLink: item.HtmlLink,
	}
	if ev.Title == "" {
		ev.Title = noTitlePlaceholder
	}

	if item.Start != nil {
		if item.Start.DateTime != "" {
			ev.Start = item.Start.DateTime
		} else {
			ev.Start = item.Start.Date
		}
	}
	if item.End != nil {
		if item.End.DateTime != "" {
			ev.End = item.End.DateTime
		} else {
			ev.End = item.End.Date
		}
	}
	if ev.Start == "" {
		return Event{}, malformedUpstream(fmt.Sprintf("event %s has no start time or date", item.Id))
	}
	if ev.End == "" {
		return Event{}, malformedUpstream(fmt.Sprintf("event %s has no end time or date", item.Id))
	}

	return ev, nil
}
