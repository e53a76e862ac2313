package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/aadhaar-ews-pipeline/internal/domain"
)

// ReadinessChecker reports whether the service has a completed run to serve.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// RunSummary is the payload served on /summary once a run completes.
type RunSummary struct {
	DistrictWeeks int                 `json:"district_weeks"`
	Weights       domain.WeightVector `json:"weights"`
	FinishedAt    time.Time           `json:"finished_at"`
}

// Server exposes health, readiness, metrics, and run-summary HTTP endpoints
// while a batch run is in flight or recently finished.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger

	mu      sync.RWMutex
	summary *RunSummary
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// /summary routes.
func NewServer(addr string, ready ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.HandleFunc("GET /summary", s.handleSummary)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// SetSummary publishes the completed run's summary for /summary.
func (s *Server) SetSummary(summary RunSummary) {
	s.mu.Lock()
	s.summary = &summary
	s.mu.Unlock()
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	summary := s.summary
	s.mu.RUnlock()

	if summary == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no completed run"})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort admin response
}
