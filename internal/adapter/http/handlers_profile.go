package adapthttp

import (
	"encoding/json"
	"net/http"

	"ketotrack/internal/domain"
)

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		profile := s.svc.Repo.Profile(ctx)
		progress, err := s.svc.Phases.Progress(profile)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"profile": profile, "progress": progress})

	case http.MethodPut:
		var body domain.UserProfile
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := s.svc.Repo.SaveProfile(ctx, body); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"profile": body})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handlePhaseCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()

	before := s.svc.Repo.Profile(ctx)
	after, err := s.svc.Phases.CheckAdvancement(ctx, before)
	if err != nil {
		writeAppError(w, err)
		return
	}
	progress, err := s.svc.Phases.Progress(after)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"profile":  after,
		"advanced": after.CurrentPhase != before.CurrentPhase,
		"progress": progress,
	})
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{
			"theme":        s.svc.Settings.Theme(ctx),
			"customColors": s.svc.Settings.CustomThemeColors(ctx),
		})

	case http.MethodPut:
		var body struct {
			Theme        string          `json:"theme"`
			CustomColors json.RawMessage `json:"customColors"`
		}
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if body.Theme != "" {
			if err := s.svc.Settings.SaveTheme(ctx, body.Theme); err != nil {
				writeAppError(w, err)
				return
			}
		}
		if len(body.CustomColors) > 0 {
			if err := s.svc.Settings.SaveCustomThemeColors(ctx, body.CustomColors); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
