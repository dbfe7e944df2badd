package calendar

// OAuth scope and sizing constants for the Google Calendar API.

const (
	ScopeCalendarReadonly = "https://www.googleapis.com/auth/calendar.readonly"

	// PrimaryCalendarID is the well-known alias for the account's main calendar.
	PrimaryCalendarID = "primary"

	// weekMaxResults caps range queries; upcoming-N queries are capped by the
	// clamped count instead.
	weekMaxResults = 50

	minUpcomingCount = 1
	maxUpcomingCount = 20

	// DefaultUpcomingCount is used when the caller does not ask for a count.
	DefaultUpcomingCount = 5
)

const noTitlePlaceholder = "(no title)"
