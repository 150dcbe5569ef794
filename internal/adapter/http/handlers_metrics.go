package adapthttp

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"ketotrack/internal/domain"
)

type metricRequest struct {
	Date    string            `json:"date"`
	Glucose *float64          `json:"glucose"`
	Ketones *float64          `json:"ketones"`
	Weight  *float64          `json:"weight"`
	Unit    domain.WeightUnit `json:"unit"`
	Energy  *int              `json:"energy"`
	Clarity *int              `json:"clarity"`
}

func (req metricRequest) toMetric() (domain.DailyMetric, error) {
	unit, err := domain.ParseWeightUnit(string(req.Unit))
	if err != nil {
		return domain.DailyMetric{}, err
	}
	m := domain.DailyMetric{
		Date:    req.Date,
		Glucose: req.Glucose,
		Ketones: req.Ketones,
		Energy:  req.Energy,
		Clarity: req.Clarity,
	}
	if req.Weight != nil {
		kg := domain.ToKilograms(*req.Weight, unit)
		m.Weight = &kg
	}
	return m, nil
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"items": s.svc.Repo.DailyMetrics(ctx)})

	case http.MethodPut:
		var body metricRequest
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		m, err := body.toMetric()
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		items, err := s.svc.Repo.SaveDailyMetric(ctx, m)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleMetricsToday(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	entry := s.svc.Repo.TodayMetric(r.Context())
	var ratio *float64
	if entry != nil {
		ratio = entry.DrBozRatio
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"today":  domain.Day(time.Now()),
		"entry":  entry,
		"status": domain.RatioStatus(ratio),
		"color":  domain.RatioColor(ratio),
	})
}

func (s *Server) handleMetricsRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	days := intQuery(r, "days", 7)
	writeJSON(w, http.StatusOK, map[string]any{
		"days":  days,
		"items": s.svc.Repo.RecentMetrics(r.Context(), days),
	})
}

func (s *Server) handleChartsDaily(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	days := intQuery(r, "days", 30)
	unit, err := domain.ParseWeightUnit(r.URL.Query().Get("unit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	points, err := s.svc.Charts.GetDaily(r.Context(), days, unit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"days":  days,
		"unit":  unit,
		"today": domain.Day(time.Now()),
		"items": points,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	unit, err := domain.ParseWeightUnit(r.URL.Query().Get("unit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	exp, err := s.svc.Repo.ExportCSV(r.Context(), unit)
	if err != nil {
		writeAppError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exp.Filename))
	w.Header().Set("X-Record-Count", strconv.Itoa(exp.Records))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(exp.Data)
}

func (s *Server) handleSampleData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	count, err := s.svc.Repo.GenerateSampleData(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "count": count})
}
