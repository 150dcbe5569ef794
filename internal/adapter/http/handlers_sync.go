package adapthttp

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"ketotrack/internal/app"
	"ketotrack/internal/domain"
	"ketotrack/internal/identity"
)

func (s *Server) syncStatus(r *http.Request) map[string]any {
	ctx := r.Context()
	uid, signedIn := s.svc.Identity.CurrentUser()
	enabled, _ := s.svc.State.CloudSyncEnabled(ctx)
	status := map[string]any{
		"signedIn":   signedIn,
		"uid":        uid,
		"enabled":    enabled,
		"usingCloud": s.svc.Policy.ShouldUseCloud(ctx),
		"migrated":   false,
		"ssoEnabled": s.svc.OIDC != nil,
	}
	if signedIn {
		migrated, _ := s.svc.State.MigrationCompleted(ctx, uid)
		status["migrated"] = migrated
	}
	return status
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.syncStatus(r))

	case http.MethodPut:
		s.requireSession(http.HandlerFunc(s.handleSyncUpdate)).ServeHTTP(w, r)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSyncUpdate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	task, err := s.svc.Policy.SetCloudSync(r.Context(), body.Enabled)
	if err != nil {
		writeAppError(w, err)
		return
	}
	status := s.syncStatus(r)
	status["migrationStarted"] = task != nil
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleSyncMigrate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	err := s.svc.Migrator.Trigger(r.Context())
	var partial *domain.MigrationPartialFailure
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "uid": userFromContext(r)})
	case errors.As(err, &partial):
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":     false,
			"error":  app.UserMessage(err),
			"failed": partial.Failed,
			"total":  partial.Total,
		})
	default:
		s.log.Error().Err(err).Msg("manual migration failed")
		writeJSON(w, http.StatusBadGateway, map[string]any{"ok": false, "error": app.UserMessage(err)})
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

const eventsPingInterval = 25 * time.Second

type eventMessage struct {
	Type      identity.EventType `json:"type"`
	UID       string             `json:"uid"`
	Timestamp time.Time          `json:"timestamp"`
}

// handleEvents streams sign-in and sign-out events over a websocket.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	sub := s.svc.Identity.Subscribe()
	defer s.svc.Identity.Unsubscribe(sub)

	// The read loop ends on client close or error.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(eventsPingInterval)
	defer ping.Stop()

	for {
		select {
		case ev, ok := <-sub:
			if !ok {
				return
			}
			msg := eventMessage{Type: ev.Type, UID: ev.UID, Timestamp: ev.Timestamp}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
