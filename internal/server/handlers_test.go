package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kcs1040/jarviscs/internal/auth"
	"github.com/kcs1040/jarviscs/internal/calendar"
	"github.com/kcs1040/jarviscs/internal/config"
)

func testStack(t *testing.T, upstream http.Handler) (*Server, *auth.SessionCodec) {
	t.Helper()

	var upstreamURL string
	if upstream != nil {
		srv := httptest.NewServer(upstream)
		t.Cleanup(srv.Close)
		upstreamURL = srv.URL
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Addr: ":0"},
		Google: config.GoogleConfig{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			TokenURL:     upstreamURL + "/token",
			APIEndpoint:  upstreamURL,
		},
		Session:  config.SessionConfig{Secret: "test-secret", TTLHours: 1},
		Calendar: config.CalendarConfig{DefaultName: "업무_회의", TimeZone: "Asia/Seoul"},
	}

	tokens := auth.NewManager(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.TokenURL)
	svc, err := calendar.NewService(tokens, calendar.NewClient(cfg.Google.APIEndpoint), cfg.Calendar.TimeZone)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	sessions, err := auth.NewSessionCodec(cfg.Session.Secret, time.Hour)
	if err != nil {
		t.Fatalf("NewSessionCodec failed: %v", err)
	}

	return New(cfg, svc, sessions), sessions
}

func sessionCookie(t *testing.T, codec *auth.SessionCodec, cred auth.Credential) *http.Cookie {
	t.Helper()
	token, err := codec.Issue(cred)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	return &http.Cookie{Name: auth.SessionCookieName, Value: token}
}

func freshCredential() auth.Credential {
	return auth.Credential{
		AccessToken:  "ya29.token",
		RefreshToken: "1//refresh",
		ExpiresAt:    time.Now().Add(time.Hour).Unix(),
	}
}

func TestHealthz(t *testing.T) {
	s, _ := testStack(t, nil)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusOK || w.Body.String() != "OK" {
		t.Errorf("healthz: code=%d body=%q", w.Code, w.Body.String())
	}
}

func TestCalendarRequiresSession(t *testing.T) {
	s, _ := testStack(t, nil)

	for _, path := range []string{
		"/api/calendar/list",
		"/api/calendar/next",
		"/api/calendar/meetings/next-week",
		"/api/calendar/meetings/today",
	} {
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: code = %d, want 401", path, w.Code)
		}
		var body map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: invalid JSON: %v", path, err)
		}
		if body["error"] != notSignedInMessage {
			t.Errorf("%s: error = %v", path, body["error"])
		}
	}
}

func TestNextWeekByNameHappyPath(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/me/calendarList", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"id":"work-id","summary":"업무_회의"}]}`))
	})
	mux.HandleFunc("/calendars/work-id/events", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{
			"id":"ev1","summary":"Weekly Sync","location":"Room 4",
			"htmlLink":"https://calendar.google.com/event?eid=ev1",
			"start":{"dateTime":"2024-03-11T10:00:00+09:00"},
			"end":{"dateTime":"2024-03-11T11:00:00+09:00"}}]}`))
	})
	s, codec := testStack(t, mux)

	req := httptest.NewRequest(http.MethodGet, "/api/calendar/meetings/next-week", nil)
	req.AddCookie(sessionCookie(t, codec, freshCredential()))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", w.Code, w.Body.String())
	}

	var body struct {
		Events   []calendar.Event `json:"events"`
		Calendar string           `json:"calendar"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(body.Events) != 1 || body.Events[0].Title != "Weekly Sync" {
		t.Errorf("unexpected events: %+v", body.Events)
	}
	if body.Calendar != "업무_회의" {
		t.Errorf("calendar echo = %q", body.Calendar)
	}

	// The session cookie is re-issued so credential updates persist.
	reissued := false
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookieName && c.Value != "" {
			reissued = true
		}
	}
	if !reissued {
		t.Error("session cookie not re-issued")
	}
}

func TestCalendarNotFoundListsAvailable(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/me/calendarList", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"id":"a","summary":"Personal"},{"id":"b","summary":"Work"}]}`))
	})
	s, codec := testStack(t, mux)

	req := httptest.NewRequest(http.MethodGet, "/api/calendar/meetings/today?calendar=Missing", nil)
	req.AddCookie(sessionCookie(t, codec, freshCredential()))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404", w.Code)
	}
	var body struct {
		Error              string   `json:"error"`
		AvailableCalendars []string `json:"availableCalendars"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Error != "Calendar not found: Missing" {
		t.Errorf("error = %q", body.Error)
	}
	if len(body.AvailableCalendars) != 2 || body.AvailableCalendars[0] != "Personal" {
		t.Errorf("availableCalendars = %v", body.AvailableCalendars)
	}
}

func TestUpstreamFailurePassesThrough(t *testing.T) {
	upstreamBody := `{"error":{"code":403,"message":"Rate Limit Exceeded"}}`
	mux := http.NewServeMux()
	mux.HandleFunc("/calendars/primary/events", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(upstreamBody))
	})
	s, codec := testStack(t, mux)

	req := httptest.NewRequest(http.MethodGet, "/api/calendar/next?n=3", nil)
	req.AddCookie(sessionCookie(t, codec, freshCredential()))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("code = %d, want the provider's 403", w.Code)
	}
	if w.Body.String() != upstreamBody {
		t.Errorf("body = %q, want the provider body unmutated", w.Body.String())
	}
}

func TestNextClampsCount(t *testing.T) {
	var gotMax string
	mux := http.NewServeMux()
	mux.HandleFunc("/calendars/primary/events", func(w http.ResponseWriter, r *http.Request) {
		gotMax = r.URL.Query().Get("maxResults")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[]}`))
	})
	s, codec := testStack(t, mux)

	req := httptest.NewRequest(http.MethodGet, "/api/calendar/next?n=1000", nil)
	req.AddCookie(sessionCookie(t, codec, freshCredential()))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	if gotMax != "20" {
		t.Errorf("maxResults = %q, want clamped to 20", gotMax)
	}
}

func TestRefreshFailureIs401(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	})
	s, codec := testStack(t, mux)

	// Expired access token with a revoked refresh token.
	cred := auth.Credential{
		AccessToken:  "ya29.stale",
		RefreshToken: "1//revoked",
		ExpiresAt:    time.Now().Add(-time.Hour).Unix(),
	}
	req := httptest.NewRequest(http.MethodGet, "/api/calendar/next", nil)
	req.AddCookie(sessionCookie(t, codec, cred))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("code = %d, want 401", w.Code)
	}

	// The sticky failure flag must be persisted back into the session.
	var persisted string
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			persisted = c.Value
		}
	}
	if persisted == "" {
		t.Fatal("flagged credential not written back to the session cookie")
	}
	parsed, err := codec.Parse(persisted)
	if err != nil {
		t.Fatalf("re-issued cookie invalid: %v", err)
	}
	if parsed.LastError != auth.RefreshFailedFlag {
		t.Errorf("persisted LastError = %q", parsed.LastError)
	}
}

func TestAuthorizationHeaderFallback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/calendars/primary/events", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[]}`))
	})
	s, codec := testStack(t, mux)

	token, err := codec.Issue(freshCredential())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/calendar/next", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("code = %d, want 200 via Authorization header", w.Code)
	}
}

func TestChatDemoReplies(t *testing.T) {
	s, _ := testStack(t, nil)

	cases := []struct {
		message string
		want    string
	}{
		{"What's on my schedule today?", "Team Sync"},
		{"도움말 help", "You can ask"},
		{"Save a note: I learned entropy", "Noted."},
		{"hello there", "starter assistant"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/chat",
			strings.NewReader(`{"message":`+jsonString(tc.message)+`}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("chat code = %d", w.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if !strings.Contains(body["reply"], tc.want) {
			t.Errorf("reply to %q = %q, want substring %q", tc.message, body["reply"], tc.want)
		}
	}
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestDebugEnvReportsPresenceOnly(t *testing.T) {
	s, _ := testStack(t, nil)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/debug/env", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["AUTH_SECRET"] != true {
		t.Errorf("AUTH_SECRET = %v, want presence boolean", body["AUTH_SECRET"])
	}
	if strings.Contains(w.Body.String(), "test-secret") {
		t.Error("debug env leaked a secret value")
	}
	if strings.Contains(w.Body.String(), "client-secret") {
		t.Error("debug env leaked the client secret")
	}
}

func TestLoginRedirectsToConsent(t *testing.T) {
	s, _ := testStack(t, nil)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/login", nil))

	if w.Code != http.StatusFound {
		t.Fatalf("code = %d, want 302", w.Code)
	}
	loc := w.Header().Get("Location")
	for _, want := range []string{
		"accounts.google.com",
		"access_type=offline",
		"prompt=consent",
		"calendar.readonly",
	} {
		if !strings.Contains(loc, want) {
			t.Errorf("redirect %q missing %q", loc, want)
		}
	}
}
