// Package adminserver exposes the node's health and metrics HTTP surface.
// It is deliberately a thin chi router alongside the fabric's own transport,
// not a replacement for it: GET /health for liveness, GET /health/ready for
// readiness once storage is open, and GET /metrics for Prometheus scraping.
// The router construction follows the corpus's own NewRouter pattern
// (middleware stack, then routed health group).
package adminserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadyCheck reports whether the node is ready to serve fabric traffic.
type ReadyCheck func() error

// NewRouter builds the admin HTTP handler. ready is polled on every
// /health/ready request; a nil ready always reports ready. gatherer is
// scraped for /metrics; pass the same registry the node's metrics were
// registered against (prometheus.DefaultGatherer if unsure).
func NewRouter(ready ReadyCheck, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Route("/health", func(r chi.Router) {
		r.Get("/", liveness)
		r.Get("/ready", readiness(ready))
	})

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}

func liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

func readiness(ready ReadyCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready == nil {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
			return
		}
		if err := ready(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready", "reason": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
