package adapthttp

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"ketotrack/internal/identity"
)

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	s := &Server{log: zerolog.New(&buf)}
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("OK"))
	})

	handler := s.loggingMiddleware(nextHandler)

	req := httptest.NewRequest(http.MethodGet, "/test-path", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusTeapot {
		t.Errorf("Expected status %d, got %d", http.StatusTeapot, w.Code)
	}
	if got := w.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("expected request id to be echoed, got %q", got)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if entry["method"] != "GET" || entry["path"] != "/test-path" || entry["status"] != 418.0 {
		t.Errorf("Log output missing expected fields. Got: %s", buf.String())
	}
	if entry["request_id"] != "req-42" {
		t.Errorf("expected request_id req-42, got %v", entry["request_id"])
	}
}

func TestTokenIssuer(t *testing.T) {
	ti := newTokenIssuer([]byte("k1"), time.Hour)

	raw, err := ti.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	uid, err := ti.Parse(raw)
	if err != nil || uid != "user-1" {
		t.Fatalf("expected user-1, got %q (%v)", uid, err)
	}

	other := newTokenIssuer([]byte("k2"), time.Hour)
	if _, err := other.Parse(raw); err == nil {
		t.Error("expected a token signed with another key to be rejected")
	}

	expired := &tokenIssuer{secret: []byte("k1"), ttl: -time.Minute}
	stale, err := expired.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := ti.Parse(stale); err == nil {
		t.Error("expected an expired token to be rejected")
	}
}

func TestRequireSession(t *testing.T) {
	ident := identity.NewProvider()
	s := &Server{
		svc:    Services{Identity: ident},
		tokens: newTokenIssuer([]byte("secret"), time.Hour),
		log:    zerolog.Nop(),
	}
	var seen string
	handler := s.requireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = userFromContext(r)
		w.WriteHeader(http.StatusNoContent)
	}))

	token, err := s.tokens.Issue("u1")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		cookie     string
		signedIn   string
		wantStatus int
	}{
		{"no cookie", "", "u1", http.StatusUnauthorized},
		{"garbage cookie", "not-a-token", "u1", http.StatusUnauthorized},
		{"nobody signed in", token, "", http.StatusUnauthorized},
		{"different user signed in", token, "u2", http.StatusUnauthorized},
		{"matching user", token, "u1", http.StatusNoContent},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.signedIn == "" {
				ident.SignOut()
			} else {
				ident.SignIn(tc.signedIn)
			}
			seen = ""

			req := httptest.NewRequest(http.MethodPost, "/sync/migrate", nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: sessionCookie, Value: tc.cookie})
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, w.Code)
			}
			if tc.wantStatus == http.StatusNoContent && seen != "u1" {
				t.Errorf("expected uid in context, got %q", seen)
			}
		})
	}
}
