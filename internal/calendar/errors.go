package calendar

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// NotFoundError reports a calendar name with no match. Available enumerates
// every display name the account can see.
type NotFoundError struct {
	Name      string
	Available []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("calendar not found: %s", e.Name)
}

// UpstreamError carries a non-success Google response through unmodified:
// the provider's own status code and error body, so provider-side issues can
// be diagnosed directly.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("google api error: status %d", e.StatusCode)
}

// upstream converts a Google client error into an UpstreamError preserving
// status and body. Transport failures that never reached the API keep their
// original error and map to a gateway failure at the edge.
func upstream(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &UpstreamError{StatusCode: gerr.Code, Body: gerr.Body}
	}
	return err
}

// malformedUpstream flags a success response missing required fields; the
// payload is unusable even though the status was 2xx.
func malformedUpstream(detail string) error {
	return &UpstreamError{
		StatusCode: http.StatusBadGateway,
		Body:       fmt.Sprintf(`{"error":{"message":%q}}`, detail),
	}
}
