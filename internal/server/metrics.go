// Package server exposes the device over HTTP.
package server

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	activeRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fibdrv_http_active_requests",
		Help: "Current number of active requests",
	})
	totalRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fibdrv_http_requests_total",
		Help: "Requests received by endpoint and status code",
	}, []string{"path", "code"})
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fibdrv_http_cache_lookups_total",
		Help: "Response cache lookups by result",
	}, []string{"result"})
)

// Metrics serves the Prometheus registry and tracks request counts.
type Metrics struct {
	handler http.Handler
}

// NewMetrics creates a Metrics backed by the default registry.
func NewMetrics() *Metrics {
	return &Metrics{handler: promhttp.Handler()}
}

// handleMetrics is the HTTP handler for the /metrics endpoint.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.metrics.handler.ServeHTTP(w, r)
}

// statusRecorder remembers the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware tracks active requests and counts them by status code.
func (s *Server) metricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeRequests.Inc()
		defer activeRequests.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		totalRequests.WithLabelValues(r.URL.Path, strconv.Itoa(rec.status)).Inc()
	}
}
