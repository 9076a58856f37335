package store

import (
	"context"
	"errors"

	"safetour/internal/model"
)

// Store is the persistence interface used by the API server.
type Store interface {
	// Users & profiles
	CreateUser(ctx context.Context, req model.SignupRequest, hashedPassword string) (model.User, error)
	GetUserByEmailRole(ctx context.Context, email, role string) (model.User, string, error)
	GetUser(ctx context.Context, id string) (model.User, error)

	// Tourists
	GetTouristByUserID(ctx context.Context, userID string) (model.Tourist, error)
	GetTourist(ctx context.Context, id string) (model.Tourist, error)
	UpdateTourist(ctx context.Context, id string, upd model.TouristUpdate) (model.Tourist, error)
	UpdateSafetyScore(ctx context.Context, touristID string, score float64) (model.Tourist, error)
	ListTourists(ctx context.Context, limit int) ([]model.Tourist, error)
	TouristStats(ctx context.Context) (map[string]any, error)

	// Trips
	CreateTrip(ctx context.Context, touristID string, req model.TripCreate) (model.Trip, error)
	GetActiveTrip(ctx context.Context, touristID string) (model.Trip, error)

	// Locations
	InsertLocation(ctx context.Context, touristID string, req model.LocationCreate) (model.Location, error)
	ListLocations(ctx context.Context, touristID string, limit int) ([]model.Location, error)

	// Alerts
	CreateAlert(ctx context.Context, a model.Alert) (model.Alert, error)
	ListAlerts(ctx context.Context, status string, limit int) ([]model.Alert, error)
	GetAlert(ctx context.Context, id string) (model.Alert, error)
	UpdateAlert(ctx context.Context, id string, upd model.AlertUpdate) (model.Alert, error)
	AlertStats(ctx context.Context) (map[string]any, error)

	// Safety zones
	CreateSafetyZone(ctx context.Context, z model.SafetyZone) (model.SafetyZone, error)
	ListSafetyZones(ctx context.Context) ([]model.SafetyZone, error)
}

var ErrNotFound = errors.New("not found")
var ErrDuplicate = errors.New("already exists")
