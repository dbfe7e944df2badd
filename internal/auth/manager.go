package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kcs1040/jarviscs/internal/logger"
	"github.com/kcs1040/jarviscs/internal/security"
)

// GoogleTokenURL is Google's OAuth2 token endpoint.
const GoogleTokenURL = "https://oauth2.googleapis.com/token"

const (
	// expiryMargin guards against clock skew and in-flight request latency:
	// a token within 60s of its deadline is renewed early.
	expiryMargin = 60 * time.Second

	// defaultExpiresIn is assumed when Google omits expires_in.
	defaultExpiresIn = 3600
)

// Manager owns the access token lifecycle: it hands out a currently valid
// access token, renewing it through the refresh token when needed. Renewals
// for the same session are single-flighted so concurrent requests cannot race
// duplicate refresh-token exchanges against Google.
type Manager struct {
	clientID     string
	clientSecret string
	tokenURL     string
	httpClient   *http.Client
	now          func() time.Time
	group        singleflight.Group
}

// NewManager creates a token lifecycle manager. tokenURL may be empty to use
// the public Google endpoint.
func NewManager(clientID, clientSecret, tokenURL string) *Manager {
	if tokenURL == "" {
		tokenURL = GoogleTokenURL
	}
	return &Manager{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     tokenURL,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		now:          time.Now,
	}
}

type refreshOutcome struct {
	cred Credential
	err  error
}

// ValidAccessToken returns an access token that is valid for at least the
// expiry margin, together with the (possibly updated) credential the caller
// must persist. A fresh token is returned as-is with no network traffic.
//
// Failure modes are distinct: ErrUnauthenticated when there is nothing to
// renew with, ErrRefreshFailed when Google rejected the renewal. A failed
// renewal is never retried within the same call.
func (m *Manager) ValidAccessToken(ctx context.Context, cred Credential) (string, Credential, error) {
	if cred.usableAt(m.now(), expiryMargin) {
		return cred.AccessToken, cred, nil
	}

	if cred.RefreshToken == "" {
		return "", cred, ErrUnauthenticated
	}

	// The refresh token identifies the session: concurrent callers holding
	// the same one share a single renewal exchange.
	v, _, _ := m.group.Do(cred.RefreshToken, func() (any, error) {
		updated, err := m.refresh(ctx, cred)
		return refreshOutcome{cred: updated, err: err}, nil
	})

	outcome := v.(refreshOutcome)
	if outcome.err != nil {
		return "", outcome.cred, outcome.err
	}
	return outcome.cred.AccessToken, outcome.cred, nil
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int64  `json:"expires_in"`
	RefreshToken     string `json:"refresh_token"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// refresh exchanges the refresh token for a new access token. On any failure
// the returned credential carries the sticky RefreshFailedFlag; the update is
// all-or-nothing, the token triple is only replaced on success.
func (m *Manager) refresh(ctx context.Context, cred Credential) (Credential, error) {
	params := url.Values{
		"client_id":     {m.clientID},
		"client_secret": {m.clientSecret},
		"grant_type":    {"refresh_token"},
		"refresh_token": {cred.RefreshToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.tokenURL, strings.NewReader(params.Encode()))
	if err != nil {
		cred.LastError = RefreshFailedFlag
		return cred, NewRefreshError("failed to create refresh request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		cred.LastError = RefreshFailedFlag
		return cred, NewRefreshError("refresh request failed").WithCause(err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Warn("failed to close token response body", "error", closeErr)
		}
	}()

	var tokenResp tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		cred.LastError = RefreshFailedFlag
		return cred, NewRefreshError("failed to decode token response").WithCause(err)
	}

	if resp.StatusCode != http.StatusOK || tokenResp.AccessToken == "" {
		cred.LastError = RefreshFailedFlag
		logger.Warn("token refresh rejected",
			"status", resp.StatusCode,
			"error", tokenResp.Error,
			"error_description", tokenResp.ErrorDescription)
		if tokenResp.Error != "" {
			return cred, NewRefreshError(fmt.Sprintf("%s - %s", tokenResp.Error, tokenResp.ErrorDescription))
		}
		return cred, NewRefreshError(fmt.Sprintf("status %d", resp.StatusCode))
	}

	expiresIn := tokenResp.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = defaultExpiresIn
	}

	cred.AccessToken = tokenResp.AccessToken
	cred.ExpiresAt = m.now().Unix() + expiresIn
	// Google usually returns the refresh token only at the initial grant;
	// keep the stored one unless the response carries a replacement.
	if tokenResp.RefreshToken != "" {
		cred.RefreshToken = tokenResp.RefreshToken
	}
	cred.LastError = ""

	logger.Debug("access token refreshed",
		"token", security.RedactString(cred.AccessToken),
		"expires_at", time.Unix(cred.ExpiresAt, 0).Format(time.RFC3339))

	return cred, nil
}
