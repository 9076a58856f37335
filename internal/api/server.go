// Package api implements HTTP handlers and the realtime alert fan-out for the
// tourist safety service.
package api

import (
	"os"
	"strconv"
	"strings"

	"safetour/internal/auth"
	"safetour/internal/store"
)

// defaultGeofenceMinLat marks zones below this latitude unsafe. Placeholder
// policy; override with GEOFENCE_MIN_LAT.
const defaultGeofenceMinLat = 28.5

type Server struct {
	Store          store.Store
	Auth           *auth.Verifier
	Broker         EventBroker
	Registry       *Registry
	Notifier       *Notifier
	GeofenceMinLat float64
}

// NewServer creates a Server. If DATABASE_URL is unset, uses the in-memory
// store; if REDIS_URL is unset, uses the in-process broker.
func NewServer() (*Server, error) {
	dsn := os.Getenv("DATABASE_URL")
	var s store.Store
	if strings.TrimSpace(dsn) == "" {
		s = store.NewMemory()
	} else {
		sp, err := store.NewPostgres(dsn)
		if err != nil {
			return nil, err
		}
		// Run migrations (dev helper)
		if os.Getenv("DB_MIGRATE") != "false" {
			_ = sp.MigrateDir("db/migrations")
		}
		s = sp
	}
	var broker EventBroker
	if os.Getenv("REDIS_URL") != "" {
		if rb, err := NewRedisBroker(); err == nil {
			broker = rb
		} else {
			broker = NewBroker()
		}
	} else {
		broker = NewBroker()
	}
	minLat := defaultGeofenceMinLat
	if v := os.Getenv("GEOFENCE_MIN_LAT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			minLat = f
		}
	}
	return &Server{
		Store:          s,
		Auth:           auth.NewVerifierFromEnv(),
		Broker:         broker,
		Registry:       NewRegistry(),
		Notifier:       NewNotifier(broker, nil),
		GeofenceMinLat: minLat,
	}, nil
}
