package api

import (
	"errors"
	"math"
	"net/http"

	"safetour/internal/ai"
	"safetour/internal/metrics"
	"safetour/internal/model"
	"safetour/internal/store"
)

func (s *Server) tourist(w http.ResponseWriter, r *http.Request) (model.Tourist, bool) {
	pr, ok := s.requireRole(w, r, "tourist")
	if !ok {
		return model.Tourist{}, false
	}
	t, err := s.Store.GetTouristByUserID(r.Context(), pr.UserID)
	if errors.Is(err, store.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", "tourist profile not found", r.URL.Path)
		return model.Tourist{}, false
	}
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Lookup failed", err.Error(), r.URL.Path)
		return model.Tourist{}, false
	}
	return t, true
}

// TouristProfileHandler handles GET/PUT /api/v1/tourist/profile
func (s *Server) TouristProfileHandler(w http.ResponseWriter, r *http.Request) {
	t, ok := s.tourist(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, t)
	case http.MethodPut:
		var upd model.TouristUpdate
		if err := decodeBody(r, &upd); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		updated, err := s.Store.UpdateTourist(r.Context(), t.ID, upd)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Update failed", err.Error(), r.URL.Path)
			return
		}
		if upd.SafetyScore != nil {
			s.Notifier.SafetyScoreAlert(updated, *upd.SafetyScore)
		}
		writeJSON(w, http.StatusOK, updated)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// TripHandler handles POST /api/v1/tourist/trip
func (s *Server) TripHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	t, ok := s.tourist(w, r)
	if !ok {
		return
	}
	var req model.TripCreate
	if err := decodeBody(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if req.Destination == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid trip", "destination is required", r.URL.Path)
		return
	}
	trip, err := s.Store.CreateTrip(r.Context(), t.ID, req)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Create trip failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusCreated, trip)
}

// ActiveTripHandler handles GET /api/v1/tourist/trip/active
func (s *Server) ActiveTripHandler(w http.ResponseWriter, r *http.Request) {
	t, ok := s.tourist(w, r)
	if !ok {
		return
	}
	trip, err := s.Store.GetActiveTrip(r.Context(), t.ID)
	if errors.Is(err, store.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", "no active trip found", r.URL.Path)
		return
	}
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Lookup failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// LocationHandler handles POST /api/v1/tourist/location. Persists the point,
// recomputes the mocked AI safety score, and stores it when it drifts more
// than one point from the current score.
func (s *Server) LocationHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	t, ok := s.tourist(w, r)
	if !ok {
		return
	}
	var req model.LocationCreate
	if err := decodeBody(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	loc, err := s.Store.InsertLocation(r.Context(), t.ID, req)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Location update failed", err.Error(), r.URL.Path)
		return
	}
	score := ai.SafetyScore(req.Lat, req.Lng)
	if math.Abs(t.SafetyScore-score) > 1.0 {
		if _, err := s.Store.UpdateSafetyScore(r.Context(), t.ID, score); err == nil {
			s.Notifier.SafetyScoreAlert(t, score)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "location updated", "location": loc, "ai_safety_score": score})
}

// PanicHandler handles POST /api/v1/tourist/panic
func (s *Server) PanicHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	t, ok := s.tourist(w, r)
	if !ok {
		return
	}
	var req struct {
		Location *model.GeoPoint `json:"location,omitempty"`
		Address  string          `json:"address,omitempty"`
	}
	// body is optional; the panic button may carry no payload
	_ = decodeBody(r, &req)
	if req.Location == nil {
		req.Location = t.LastLocation
	}
	alert, err := s.Store.CreateAlert(r.Context(), model.Alert{
		TouristID: t.ID,
		Type:      "panic",
		Priority:  "critical",
		Message:   "Emergency panic button activated",
		Location:  req.Location,
		Address:   req.Address,
		Metadata:  `{"source":"panic_button"}`,
	})
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Panic alert failed", err.Error(), r.URL.Path)
		return
	}
	metrics.AlertsCreated.WithLabelValues("panic").Inc()
	s.Notifier.PanicAlert(t, alert)
	writeJSON(w, http.StatusOK, map[string]any{"message": "panic alert sent", "alert_id": alert.ID})
}

// ChatbotHandler handles POST /api/v1/tourist/chatbot
func (s *Server) ChatbotHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := s.tourist(w, r); !ok {
		return
	}
	var req struct {
		Message string `json:"message"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"response": ai.ChatbotResponse(req.Message)})
}
