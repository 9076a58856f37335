package api

import (
	"fmt"
	"net/http"
	"strings"

	"safetour/internal/model"
)

// TourismTouristsHandler handles GET /api/v1/tourism/tourists
func (s *Server) TourismTouristsHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireRole(w, r, "tourism"); !ok {
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

// TourismStatisticsHandler handles GET /api/v1/tourism/statistics
func (s *Server) TourismStatisticsHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireRole(w, r, "tourism"); !ok {
		return
	}
	stats, err := s.Store.TouristStats(r.Context())
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Stats failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// TourismZonesHandler handles GET/POST /api/v1/tourism/zones
func (s *Server) TourismZonesHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireRole(w, r, "tourism"); !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		zones, err := s.Store.ListSafetyZones(r.Context())
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List zones failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": zones})
	case http.MethodPost:
		var z struct {
			Name        string  `json:"name"`
			ZoneType    string  `json:"zoneType"`
			SafetyScore float64 `json:"safetyScore,omitempty"`
			Description string  `json:"description,omitempty"`
		}
		if err := decodeBody(r, &z); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if z.Name == "" || z.ZoneType == "" {
			writeProblem(w, http.StatusBadRequest, "Invalid zone", "name and zoneType are required", r.URL.Path)
			return
		}
		created, err := s.Store.CreateSafetyZone(r.Context(), model.SafetyZone{
			Name: z.Name, ZoneType: z.ZoneType, SafetyScore: z.SafetyScore, Description: z.Description,
		})
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Create zone failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// TourismAnalyticsHandler handles GET /api/v1/tourism/analytics/{kind}.
// The datasets are static mock analytics, same as the dashboards expect.
func (s *Server) TourismAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireRole(w, r, "tourism"); !ok {
		return
	}
	kind := strings.TrimPrefix(r.URL.Path, "/api/v1/tourism/analytics/")
	switch kind {
	case "influx":
		period := r.URL.Query().Get("period")
		if period == "" {
			period = "day"
		}
		if period != "day" {
			writeJSON(w, http.StatusOK, map[string]any{"period": period, "data": []any{}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"period": "day", "data": influxByHour})
	case "destinations":
		writeJSON(w, http.StatusOK, topDestinations)
	case "languages":
		writeJSON(w, http.StatusOK, languageDistribution)
	default:
		writeProblem(w, http.StatusNotFound, "Not Found", "unknown analytics dataset", r.URL.Path)
	}
}

var influxByHour = []map[string]any{
	{"time": "12 AM", "value": 45}, {"time": "2 AM", "value": 32},
	{"time": "4 AM", "value": 28}, {"time": "6 AM", "value": 65},
	{"time": "8 AM", "value": 89}, {"time": "10 AM", "value": 120},
	{"time": "12 PM", "value": 145}, {"time": "2 PM", "value": 132},
	{"time": "4 PM", "value": 156}, {"time": "6 PM", "value": 134},
	{"time": "8 PM", "value": 98}, {"time": "10 PM", "value": 76},
}

var topDestinations = []map[string]any{
	{"rank": 1, "name": "India Gate", "tourists": 456, "safety": 85},
	{"rank": 2, "name": "Red Fort", "tourists": 387, "safety": 82},
	{"rank": 3, "name": "Qutub Minar", "tourists": 298, "safety": 79},
	{"rank": 4, "name": "Lotus Temple", "tourists": 234, "safety": 91},
	{"rank": 5, "name": "Humayuns Tomb", "tourists": 189, "safety": 88},
}

var languageDistribution = []map[string]any{
	{"language": "English", "count": 6234, "percentage": 39.3},
	{"language": "Hindi", "count": 4123, "percentage": 26.0},
	{"language": "French", "count": 1876, "percentage": 11.8},
	{"language": "German", "count": 1432, "percentage": 9.0},
	{"language": "Other", "count": 2198, "percentage": 13.9},
}
