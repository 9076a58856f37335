package main

import (
	"bufio"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"safetour/internal/api"
	"safetour/internal/metrics"
)

func main() {
	srv, err := api.NewServer()
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}
	metrics.RegisterDefault()

	limiter := api.NewRateLimiterFromEnv()

	mux := http.NewServeMux()

	// Auth
	mux.HandleFunc("/api/v1/auth/signup", limiter.Wrap(srv.SignupHandler))
	mux.HandleFunc("/api/v1/auth/login", limiter.Wrap(srv.LoginHandler))
	mux.HandleFunc("/api/v1/auth/me", srv.MeHandler)

	// Tourist
	mux.HandleFunc("/api/v1/tourist/profile", srv.TouristProfileHandler)
	mux.HandleFunc("/api/v1/tourist/trip", srv.TripHandler)
	mux.HandleFunc("/api/v1/tourist/trip/active", srv.ActiveTripHandler)
	mux.HandleFunc("/api/v1/tourist/location", srv.LocationHandler)
	mux.HandleFunc("/api/v1/tourist/panic", srv.PanicHandler)
	mux.HandleFunc("/api/v1/tourist/chatbot", srv.ChatbotHandler)

	// Police
	mux.HandleFunc("/api/v1/police/alerts", srv.PoliceAlertsHandler)
	mux.HandleFunc("/api/v1/police/alerts/", srv.PoliceAlertByIDHandler) // includes /call, /assign
	mux.HandleFunc("/api/v1/police/tourists", srv.PoliceTouristsHandler)
	mux.HandleFunc("/api/v1/police/dashboard/stats", srv.PoliceStatsHandler)

	// Tourism department
	mux.HandleFunc("/api/v1/tourism/tourists", srv.TourismTouristsHandler)
	mux.HandleFunc("/api/v1/tourism/statistics", srv.TourismStatisticsHandler)
	mux.HandleFunc("/api/v1/tourism/zones", srv.TourismZonesHandler)
	mux.HandleFunc("/api/v1/tourism/analytics/", srv.TourismAnalyticsHandler)

	// Realtime
	mux.HandleFunc("/api/v1/ws/", srv.WSHandler)

	// Ops
	mux.HandleFunc("/api/v1/seed-data", srv.SeedHandler)
	mux.HandleFunc("/healthz", srv.HealthHandler)
	mux.HandleFunc("/readyz", srv.ReadyHandler)
	mux.HandleFunc("/debug/info", srv.DebugHandler)
	mux.HandleFunc("/openapi.yaml", srv.OpenAPIHandler)
	mux.HandleFunc("/docs", srv.DocsHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	addr := ":8000"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           logMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("API listening on %s", addr)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack is needed so the websocket upgrade works through the middleware.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		dur := time.Since(start)
		metrics.HTTPRequests.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(rec.status)).Inc()
		metrics.HTTPDuration.WithLabelValues(r.Method, r.URL.Path).Observe(dur.Seconds())
		log.Printf("%s %s %s %d %v", r.RemoteAddr, r.Method, r.URL.Path, rec.status, dur)
	})
}
