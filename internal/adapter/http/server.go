// Package http exposes the QC service's operational endpoints: liveness,
// readiness gated on the pipeline having processed a batch, and Prometheus
// metrics.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// readyProbeTimeout bounds how long a readiness check may take before the
// probe counts as failed.
const readyProbeTimeout = 2 * time.Second

// ReadinessChecker reports whether the QC pipeline is processing batches.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// probeResponse is the JSON body of the health and readiness endpoints.
type probeResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Reason  string `json:"reason,omitempty"`
}

// Server serves /healthz, /readyz, and /metrics.
type Server struct {
	httpServer *http.Server
	pipeline   ReadinessChecker
	logger     *slog.Logger
}

// NewServer builds the operational HTTP server on the given address.
func NewServer(addr string, pipeline ReadinessChecker, logger *slog.Logger) *Server {
	s := &Server{
		pipeline: pipeline,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, probeResponse{Status: "ok", Service: "metdatad"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyProbeTimeout)
	defer cancel()

	if err := s.pipeline.CheckReadiness(ctx); err != nil {
		s.logger.Debug("readiness probe failed", "reason", err)
		s.respond(w, http.StatusServiceUnavailable, probeResponse{
			Status:  "not ready",
			Service: "metdatad",
			Reason:  err.Error(),
		})
		return
	}
	s.respond(w, http.StatusOK, probeResponse{Status: "ready", Service: "metdatad"})
}

func (s *Server) respond(w http.ResponseWriter, status int, body probeResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("write probe response", "error", err)
	}
}
