package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"safetour/internal/model"
	"safetour/internal/store"
)

// PoliceAlertsHandler handles GET /api/v1/police/alerts
func (s *Server) PoliceAlertsHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireRole(w, r, "police"); !ok {
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	status := r.URL.Query().Get("status")
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}
	items, err := s.Store.ListAlerts(r.Context(), status, limit)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List alerts failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// PoliceAlertByIDHandler handles /api/v1/police/alerts/{id} and the /call and
// /assign sub-resources.
func (s *Server) PoliceAlertByIDHandler(w http.ResponseWriter, r *http.Request) {
	pr, ok := s.requireRole(w, r, "police")
	if !ok {
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/police/alerts/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		a, err := s.Store.GetAlert(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "alert not found", r.URL.Path)
			return
		}
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Lookup failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, a)

	case action == "" && r.Method == http.MethodPut:
		var upd model.AlertUpdate
		if err := decodeBody(r, &upd); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		a, err := s.Store.UpdateAlert(r.Context(), id, upd)
		if errors.Is(err, store.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "alert not found", r.URL.Path)
			return
		}
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Update alert failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, a)

	case action == "call" && r.Method == http.MethodPost:
		if _, err := s.Store.GetAlert(r.Context(), id); err != nil {
			writeProblem(w, http.StatusNotFound, "Not Found", "alert not found", r.URL.Path)
			return
		}
		// mock call initiation
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "call initiated to tourist for alert " + id,
			"call_id": "CALL-" + id + "-" + pr.UserID,
			"status":  "connecting",
		})

	case action == "assign" && r.Method == http.MethodPost:
		var req struct {
			OfficerID string `json:"officerId"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		a, err := s.Store.UpdateAlert(r.Context(), id, model.AlertUpdate{AssignedOfficerID: req.OfficerID})
		if errors.Is(err, store.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "alert not found", r.URL.Path)
			return
		}
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Assign failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, a)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// PoliceTouristsHandler handles GET /api/v1/police/tourists
func (s *Server) PoliceTouristsHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireRole(w, r, "police"); !ok {
		return
	}
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}
	items, err := s.Store.ListTourists(r.Context(), limit)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List tourists failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// PoliceStatsHandler handles GET /api/v1/police/dashboard/stats
func (s *Server) PoliceStatsHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireRole(w, r, "police"); !ok {
		return
	}
	alertStats, err := s.Store.AlertStats(r.Context())
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Stats failed", err.Error(), r.URL.Path)
		return
	}
	touristStats, err := s.Store.TouristStats(r.Context())
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Stats failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"active_alerts":   alertStats["active_alerts"],
		"resolved_today":  alertStats["resolved_today"],
		"total_incidents": alertStats["total_alerts"],
		"active_tourists": touristStats["active_tourists"],
	})
}
