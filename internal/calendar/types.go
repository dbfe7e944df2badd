package calendar

// Event is the normalized, provider-agnostic event shape returned to clients.
// Start and End keep the upstream representation verbatim: a date-only string
// (YYYY-MM-DD) for all-day events, a full RFC3339 instant otherwise. Consumers
// tell the two apart by a strict date-pattern match, so they must never be
// reformatted here.
type Event struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Location string `json:"location"`
	HTMLLink string `json:"htmlLink"`
}

// Ref addresses a calendar either by opaque ID or by display name. An ID wins
// and is trusted as-is; a name is resolved against the account's calendar list.
type Ref struct {
	ID   string
	Name string
}

// Entry is one calendar in the account's calendar list.
type Entry struct {
	ID              string `json:"id"`
	Summary         string `json:"summary"`
	SummaryOverride string `json:"summaryOverride,omitempty"`
}

// displayName returns the name shown to the user, preferring the primary
// summary and falling back to the per-user override.
func (e Entry) displayName() string {
	if e.Summary != "" {
		return e.Summary
	}
	return e.SummaryOverride
}
