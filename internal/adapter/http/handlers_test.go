package adapthttp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	adapthttp "ketotrack/internal/adapter/http"
	"ketotrack/internal/adapter/memory"
	"ketotrack/internal/app"
	"ketotrack/internal/domain"
	"ketotrack/internal/identity"
)

// ---------------------------------------------------------------------------
// Test-server helper
// ---------------------------------------------------------------------------

type testEnv struct {
	ts     *httptest.Server
	client *http.Client
	ident  *identity.Provider
	remote *memory.DB
	coord  *app.Coordinator
}

func newTestServer(t *testing.T) *testEnv {
	t.Helper()

	local := memory.NewKV(0)
	remote := memory.New()
	ident := identity.NewProvider()

	stores := app.Stores{Local: local, Remote: remote, Identity: ident}
	state := app.NewSyncState(local)
	migrator := app.NewMigrator(stores, state, app.MigratorOptions{Timeout: time.Second})
	t.Cleanup(migrator.Close)
	policy := app.NewSyncPolicy(ident, state, migrator)
	repo := app.NewRepository(stores, policy, state, migrator, time.Second)
	coord := app.NewCoordinator(ident, local, policy, migrator)
	stop := coord.Start(context.Background())
	t.Cleanup(stop)

	webDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(webDir, "index.html"), []byte("<html></html>"), 0o600); err != nil {
		t.Fatal(err)
	}

	srv := adapthttp.New(adapthttp.Services{
		Repo:     repo,
		Phases:   app.NewPhaseEngine(repo),
		Charts:   app.NewChartsService(repo),
		Settings: app.NewSettings(local),
		Policy:   policy,
		State:    state,
		Migrator: migrator,
		Auth:     app.NewAuthService(remote, ident),
		Identity: ident,
	}, webDir, []byte("test-secret"), time.Hour)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &testEnv{ts: ts, client: &http.Client{Jar: jar}, ident: ident, remote: remote, coord: coord}
}

func (e *testEnv) do(t *testing.T, method, path string, payload any) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, e.ts.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := e.client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return m
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("expected %d, got %d", want, resp.StatusCode)
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestHealthEndpoint(t *testing.T) {
	env := newTestServer(t)

	resp := env.do(t, http.MethodGet, "/api/health", nil)
	expectStatus(t, resp, http.StatusOK)
	if body := decodeBody(t, resp); body["ok"] != true {
		t.Fatalf("expected ok=true, got %v", body["ok"])
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("expected a request id header")
	}
}

func TestMetricsRoundTrip(t *testing.T) {
	env := newTestServer(t)
	today := domain.Day(time.Now())

	resp := env.do(t, http.MethodPut, "/api/metrics", map[string]any{
		"glucose": 4.5, "ketones": 1.5, "weight": 176.4, "unit": "lb", "energy": 7,
	})
	expectStatus(t, resp, http.StatusOK)

	resp = env.do(t, http.MethodGet, "/api/metrics", nil)
	expectStatus(t, resp, http.StatusOK)
	items, ok := decodeBody(t, resp)["items"].([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("expected 1 item, got %v", items)
	}
	item := items[0].(map[string]any)
	if item["date"] != today {
		t.Errorf("expected date %s, got %v", today, item["date"])
	}
	if item["drBozRatio"] != 3.0 {
		t.Errorf("expected ratio 3, got %v", item["drBozRatio"])
	}
	if w, _ := item["weight"].(float64); w < 79.9 || w > 80.1 {
		t.Errorf("expected weight stored as ~80 kg, got %v", item["weight"])
	}

	resp = env.do(t, http.MethodGet, "/api/metrics/today", nil)
	expectStatus(t, resp, http.StatusOK)
	body := decodeBody(t, resp)
	if body["status"] != "Excellent" || body["color"] != "#10b981" {
		t.Errorf("unexpected today status: %v", body)
	}
}

func TestMetricsPutValidation(t *testing.T) {
	tests := []struct {
		name       string
		payload    map[string]any
		wantStatus int
	}{
		{"valid", map[string]any{"glucose": 5.0, "ketones": 0.5}, http.StatusOK},
		{"energy too high", map[string]any{"energy": 11}, http.StatusBadRequest},
		{"bad date", map[string]any{"date": "03/01/2026"}, http.StatusBadRequest},
		{"bad unit", map[string]any{"weight": 80, "unit": "stone"}, http.StatusBadRequest},
		{"unknown field", map[string]any{"mood": "great"}, http.StatusBadRequest},
	}

	env := newTestServer(t)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPut, "/api/metrics", tc.payload)
			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("expected %d, got %d; body: %v", tc.wantStatus, resp.StatusCode, decodeBody(t, resp))
			}
		})
	}
}

func TestExportAndSampleData(t *testing.T) {
	env := newTestServer(t)

	resp := env.do(t, http.MethodGet, "/api/export.csv", nil)
	expectStatus(t, resp, http.StatusNotFound)

	resp = env.do(t, http.MethodPost, "/api/sample-data", nil)
	expectStatus(t, resp, http.StatusOK)
	if count := decodeBody(t, resp)["count"]; count != 14.0 {
		t.Fatalf("expected 14 sample days, got %v", count)
	}

	resp = env.do(t, http.MethodPost, "/api/sample-data", nil)
	expectStatus(t, resp, http.StatusConflict)

	resp = env.do(t, http.MethodGet, "/api/export.csv?unit=lb", nil)
	expectStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("expected text/csv, got %s", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "keto-tracker-export-") {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	if !strings.Contains(buf.String(), "Weight (lb)") {
		t.Errorf("expected lb header, got %q", buf.String()[:80])
	}
}

func TestProfileAndPhaseCheck(t *testing.T) {
	env := newTestServer(t)

	resp := env.do(t, http.MethodGet, "/api/profile", nil)
	expectStatus(t, resp, http.StatusOK)
	profile := decodeBody(t, resp)["profile"].(map[string]any)
	if profile["currentPhase"] != 1.0 || profile["targetDrBozRatio"] != 80.0 {
		t.Fatalf("unexpected default profile %v", profile)
	}

	started := domain.Day(time.Now().AddDate(0, 0, -8))
	resp = env.do(t, http.MethodPut, "/api/profile", map[string]any{
		"startDate": started, "currentPhase": 1, "phaseStartDate": started, "targetDrBozRatio": 80,
	})
	expectStatus(t, resp, http.StatusOK)

	resp = env.do(t, http.MethodPost, "/api/phase/check", nil)
	expectStatus(t, resp, http.StatusOK)
	body := decodeBody(t, resp)
	if body["advanced"] != true {
		t.Fatalf("expected advancement, got %v", body)
	}
	if p := body["profile"].(map[string]any); p["currentPhase"] != 2.0 {
		t.Errorf("expected phase 2, got %v", p["currentPhase"])
	}
}

func TestThemeSettings(t *testing.T) {
	env := newTestServer(t)

	resp := env.do(t, http.MethodGet, "/api/settings/theme", nil)
	expectStatus(t, resp, http.StatusOK)
	if theme := decodeBody(t, resp)["theme"]; theme != app.DefaultTheme {
		t.Fatalf("expected default theme, got %v", theme)
	}

	resp = env.do(t, http.MethodPut, "/api/settings/theme", map[string]any{
		"theme": "Dark Mode", "customColors": map[string]string{"primary": "#000000"},
	})
	expectStatus(t, resp, http.StatusOK)

	resp = env.do(t, http.MethodGet, "/api/settings/theme", nil)
	body := decodeBody(t, resp)
	if body["theme"] != "Dark Mode" {
		t.Errorf("expected Dark Mode, got %v", body["theme"])
	}
}

func TestSignUpEnablesSyncAndMigrates(t *testing.T) {
	env := newTestServer(t)

	resp := env.do(t, http.MethodPut, "/api/metrics", map[string]any{"glucose": 5.0, "ketones": 1.0})
	expectStatus(t, resp, http.StatusOK)

	resp = env.do(t, http.MethodPut, "/api/sync", map[string]any{"enabled": true})
	expectStatus(t, resp, http.StatusUnauthorized)

	resp = env.do(t, http.MethodPost, "/api/auth/signup", map[string]any{"email": "amy@example.com", "password": "secret1"})
	expectStatus(t, resp, http.StatusOK)
	uid, _ := decodeBody(t, resp)["uid"].(string)
	if uid == "" {
		t.Fatal("expected uid")
	}

	var task *app.MigrationTask
	deadline := time.Now().Add(time.Second)
	for task == nil && time.Now().Before(deadline) {
		task = env.coord.LastMigration()
		time.Sleep(5 * time.Millisecond)
	}
	if task == nil {
		t.Fatal("sign-up did not start a migration")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := task.Wait(ctx); err != nil {
		t.Fatalf("migration failed: %v", err)
	}

	remote, _ := env.remote.ListMetrics(context.Background(), uid)
	if len(remote) != 1 {
		t.Fatalf("expected local metric migrated, got %d remote docs", len(remote))
	}

	resp = env.do(t, http.MethodGet, "/api/sync", nil)
	body := decodeBody(t, resp)
	if body["usingCloud"] != true || body["migrated"] != true {
		t.Errorf("unexpected sync status %v", body)
	}

	resp = env.do(t, http.MethodPost, "/api/sync/migrate", nil)
	expectStatus(t, resp, http.StatusOK)

	resp = env.do(t, http.MethodPost, "/api/auth/signout", nil)
	expectStatus(t, resp, http.StatusOK)
	resp = env.do(t, http.MethodPost, "/api/sync/migrate", nil)
	expectStatus(t, resp, http.StatusUnauthorized)
}

func TestSignInWrongPassword(t *testing.T) {
	env := newTestServer(t)

	resp := env.do(t, http.MethodPost, "/api/auth/signup", map[string]any{"email": "amy@example.com", "password": "secret1"})
	expectStatus(t, resp, http.StatusOK)

	resp = env.do(t, http.MethodPost, "/api/auth/signin", map[string]any{"email": "amy@example.com", "password": "nope"})
	expectStatus(t, resp, http.StatusUnauthorized)

	resp = env.do(t, http.MethodPost, "/api/auth/signup", map[string]any{"email": "amy@example.com", "password": "secret1"})
	expectStatus(t, resp, http.StatusConflict)
}

func TestSSODisabled(t *testing.T) {
	env := newTestServer(t)
	resp := env.do(t, http.MethodGet, "/api/auth/sso/login", nil)
	expectStatus(t, resp, http.StatusNotFound)
}

func TestEventsWebsocket(t *testing.T) {
	env := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(env.ts.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close() //nolint:errcheck

	// The handler subscribes after the upgrade; retry until it is listening.
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	received := make(chan map[string]any, 1)
	go func() {
		var msg map[string]any
		if err := conn.ReadJSON(&msg); err == nil {
			received <- msg
		}
		close(received)
	}()

	deadline := time.After(2 * time.Second)
	tick := time.NewTicker(20 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case msg, ok := <-received:
			if !ok {
				t.Fatal("connection closed before an event arrived")
			}
			if msg["type"] != "signed_in" || msg["uid"] != "ws-user" {
				t.Fatalf("unexpected event %v", msg)
			}
			return
		case <-tick.C:
			env.ident.SignIn("ws-user")
		case <-deadline:
			t.Fatal("no event received")
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"DELETE metrics", http.MethodDelete, "/api/metrics"},
		{"POST metrics/today", http.MethodPost, "/api/metrics/today"},
		{"POST metrics/recent", http.MethodPost, "/api/metrics/recent"},
		{"GET phase/check", http.MethodGet, "/api/phase/check"},
		{"GET sample-data", http.MethodGet, "/api/sample-data"},
		{"DELETE sync", http.MethodDelete, "/api/sync"},
		{"GET auth/signin", http.MethodGet, "/api/auth/signin"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := env.do(t, tc.method, tc.path, nil)
			expectStatus(t, resp, http.StatusMethodNotAllowed)
		})
	}
}
