// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"ketotrack/internal/app"
	"ketotrack/internal/identity"
	"ketotrack/internal/logging"
	"ketotrack/internal/metrics"
)

// Services bundles the application services the server routes to.
type Services struct {
	Repo     *app.Repository
	Phases   *app.PhaseEngine
	Charts   *app.ChartsService
	Settings *app.Settings
	Policy   *app.SyncPolicy
	State    *app.SyncState
	Migrator *app.Migrator
	Auth     *app.AuthService
	Identity *identity.Provider
	// OIDC is nil when single sign-on is not configured.
	OIDC *identity.OIDC
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	svc    Services
	webDir string
	tokens *tokenIssuer
	log    zerolog.Logger
}

// New creates a Server wired to the given application services. Session
// cookies are signed with secret and expire after ttl.
func New(svc Services, webDir string, secret []byte, ttl time.Duration) *Server {
	return &Server{
		svc:    svc,
		webDir: webDir,
		tokens: newTokenIssuer(secret, ttl),
		log:    logging.WithComponent("http"),
	}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	api.HandleFunc("/config", s.handleConfig)

	api.HandleFunc("/metrics", s.handleMetrics)
	api.HandleFunc("/metrics/today", s.handleMetricsToday)
	api.HandleFunc("/metrics/recent", s.handleMetricsRecent)
	api.HandleFunc("/charts/daily", s.handleChartsDaily)
	api.HandleFunc("/export.csv", s.handleExport)
	api.HandleFunc("/sample-data", s.handleSampleData)

	api.HandleFunc("/profile", s.handleProfile)
	api.HandleFunc("/phase/check", s.handlePhaseCheck)

	api.HandleFunc("/sync", s.handleSync)
	api.Handle("/sync/migrate", s.requireSession(http.HandlerFunc(s.handleSyncMigrate)))
	api.HandleFunc("/events", s.handleEvents)

	api.HandleFunc("/settings/theme", s.handleTheme)

	api.HandleFunc("/auth/signup", s.handleSignUp)
	api.HandleFunc("/auth/signin", s.handleSignIn)
	api.HandleFunc("/auth/signout", s.handleSignOut)
	api.HandleFunc("/auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("/auth/sso/callback", s.handleSSOCallback)

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", withNoCache(api)))
	root.Handle("/metrics", metrics.Handler())
	root.Handle("/", spaFromDisk(s.webDir))

	return s.loggingMiddleware(root)
}
