package calendar

import (
	"regexp"
	"time"
)

// WindowMode selects how a query's time bounds are computed.
type WindowMode int

const (
	// ModeNextWeek covers the upcoming Sunday-to-Saturday week.
	ModeNextWeek WindowMode = iota
	// ModeToday covers the current calendar day in the pinned zone.
	ModeToday
	// ModeUpcoming takes the next N events from now, unbounded above.
	ModeUpcoming
)

// WindowSpec is the caller's request for a time window. Count only applies to
// ModeUpcoming.
type WindowSpec struct {
	Mode  WindowMode
	Count int
}

// Window is a concrete start/end pair, immutable once computed. TimeZone is
// the IANA zone the query is pinned to so Google interprets the same
// wall-clock window regardless of server locale.
type Window struct {
	Start    time.Time
	End      time.Time
	TimeZone string
}

// isoMillis matches the original wire format: RFC3339 with milliseconds, so
// the 23:59:59.999 end bound survives serialization.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

var allDayPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ClampCount bounds an upcoming-events count to [1, 20].
func ClampCount(n int) int {
	if n < minUpcomingCount {
		return minUpcomingCount
	}
	if n > maxUpcomingCount {
		return maxUpcomingCount
	}
	return n
}

// NextWeek computes the window for the week after the current one. With
// Sunday as day 0, the start lands (8-dow)%7 days ahead, bumped to a full
// seven when that would be zero, so the window always begins strictly in the
// future. The end is six days later at 23:59:59.999 local wall clock.
func NextWeek(now time.Time, loc *time.Location) Window {
	local := now.In(loc)
	dow := int(local.Weekday())
	addDays := (8 - dow) % 7
	if addDays == 0 {
		addDays = 7
	}

	startDay := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, addDays)
	endDay := startDay.AddDate(0, 0, 6)
	end := time.Date(endDay.Year(), endDay.Month(), endDay.Day(), 23, 59, 59, 999_000_000, loc)

	return Window{Start: startDay, End: end, TimeZone: loc.String()}
}

// Today computes the window for the current calendar day in the pinned zone.
func Today(now time.Time, loc *time.Location) Window {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, 999_000_000, loc)
	return Window{Start: start, End: end, TimeZone: loc.String()}
}

// IsAllDay reports whether a normalized event time is date-only.
func IsAllDay(value string) bool {
	return allDayPattern.MatchString(value)
}

// FilterToday keeps events starting on the current calendar day. All-day
// events are matched by literal date-string equality; timed events are
// converted to the pinned zone and compared by calendar date. Events whose
// start cannot be parsed are dropped rather than guessed at.
func FilterToday(events []Event, now time.Time, loc *time.Location) []Event {
	today := now.In(loc).Format("2006-01-02")

	filtered := make([]Event, 0, len(events))
	for _, ev := range events {
		if IsAllDay(ev.Start) {
			if ev.Start == today {
				filtered = append(filtered, ev)
			}
			continue
		}
		start, err := time.Parse(time.RFC3339, ev.Start)
		if err != nil {
			continue
		}
		if start.In(loc).Format("2006-01-02") == today {
			filtered = append(filtered, ev)
		}
	}
	return filtered
}
