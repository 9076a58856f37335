package api

import (
	"errors"
	"net/http"
	"os"
	"time"

	"safetour/internal/auth"
	"safetour/internal/buildinfo"
	"safetour/internal/model"
	"safetour/internal/store"
)

// SignupHandler handles POST /api/v1/auth/signup
func (s *Server) SignupHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req model.SignupRequest
	if err := decodeBody(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if req.Email == "" || req.Name == "" || req.Password == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid signup", "email, name, and password are required", r.URL.Path)
		return
	}
	if !validRole(req.Role) {
		writeProblem(w, http.StatusBadRequest, "Invalid signup", "role must be one of tourist, police, tourism", r.URL.Path)
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Signup failed", err.Error(), r.URL.Path)
		return
	}
	u, err := s.Store.CreateUser(r.Context(), req, hash)
	if errors.Is(err, store.ErrDuplicate) {
		writeProblem(w, http.StatusBadRequest, "Signup failed", "email already registered", r.URL.Path)
		return
	}
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Signup failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// LoginHandler handles POST /api/v1/auth/login
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req model.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	u, hash, err := s.Store.GetUserByEmailRole(r.Context(), req.Email, req.Role)
	if errors.Is(err, store.ErrNotFound) || (err == nil && !auth.CheckPassword(hash, req.Password)) {
		writeProblem(w, http.StatusUnauthorized, "Login failed", "incorrect email or password", r.URL.Path)
		return
	}
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Login failed", err.Error(), r.URL.Path)
		return
	}
	if !u.IsActive {
		writeProblem(w, http.StatusBadRequest, "Login failed", "inactive user", r.URL.Path)
		return
	}
	token, err := s.Auth.Issue(auth.Principal{Subject: u.Email, Role: u.Role, UserID: u.ID})
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Login failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"access_token": token, "token_type": "bearer", "user": u})
}

// MeHandler handles GET /api/v1/auth/me
func (s *Server) MeHandler(w http.ResponseWriter, r *http.Request) {
	pr, ok := s.getPrincipal(r)
	if !ok {
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "missing or invalid bearer token", r.URL.Path)
		return
	}
	u, err := s.Store.GetUser(r.Context(), pr.UserID)
	if errors.Is(err, store.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", "user not found", r.URL.Path)
		return
	}
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Lookup failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "healthy"})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (s *Server) DebugHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"build": buildinfo.Info(),
		"time":  time.Now().UTC().Format(time.RFC3339),
		"config": map[string]any{
			"PORT":             os.Getenv("PORT"),
			"AUTH_MODE":        os.Getenv("AUTH_MODE"),
			"GEOFENCE_MIN_LAT": s.GeofenceMinLat,
			"HAS_DATABASE_URL": os.Getenv("DATABASE_URL") != "",
			"HAS_REDIS_URL":    os.Getenv("REDIS_URL") != "",
		},
	})
}

// SeedHandler handles POST /api/v1/seed-data. Creates the three demo users if
// they do not exist yet.
func (s *Server) SeedHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	seeds := []model.SignupRequest{
		{Email: "tourist@test.com", Name: "John Doe", Role: "tourist", Password: "password123"},
		{Email: "police@test.com", Name: "Officer Smith", Role: "police", Password: "password123"},
		{Email: "tourism@test.com", Name: "Tourism Admin", Role: "tourism", Password: "password123"},
	}
	created := 0
	for _, req := range seeds {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Seed failed", err.Error(), r.URL.Path)
			return
		}
		_, err = s.Store.CreateUser(r.Context(), req, hash)
		if errors.Is(err, store.ErrDuplicate) {
			continue
		}
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Seed failed", err.Error(), r.URL.Path)
			return
		}
		created++
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "mock data seeded", "created": created})
}
