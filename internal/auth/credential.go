package auth

import "time"

// RefreshFailedFlag is the sticky error marker recorded on a credential whose
// last renewal attempt was rejected by Google.
const RefreshFailedFlag = "RefreshAccessTokenError"

// Credential is the per-session OAuth credential record. It is a plain value:
// every operation takes a Credential and returns an updated one, and persisting
// the update (re-issuing the session cookie) is the caller's job.
type Credential struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	// ExpiresAt is the access token renewal deadline in epoch seconds.
	ExpiresAt int64 `json:"expires_at,omitempty"`
	// LastError is RefreshFailedFlag when the last renewal was rejected.
	LastError string `json:"error,omitempty"`
}

// SignedIn reports whether the credential represents a Google sign-in at all.
func (c Credential) SignedIn() bool {
	return c.AccessToken != "" || c.RefreshToken != ""
}

// usableAt reports whether the access token can be handed out without renewal.
// A credential carrying a refresh error is invalid regardless of token text.
func (c Credential) usableAt(now time.Time, margin time.Duration) bool {
	if c.AccessToken == "" || c.LastError != "" {
		return false
	}
	return time.Unix(c.ExpiresAt, 0).Sub(now) > margin
}
