// Package server is the agent's HTTP query surface.
//
// Endpoints:
//
//	GET /metrics.json  live snapshot plus per-metric rollup summaries
//	GET /status.json   live snapshot, inventory and collector statistics
//	GET /metrics       Prometheus text exposition
//	GET /healthz       liveness probe
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/xtxerr/gridwatch/internal/collector"
	"github.com/xtxerr/gridwatch/internal/logging"
	"github.com/xtxerr/gridwatch/internal/metrics"
	"github.com/xtxerr/gridwatch/internal/series"
	"github.com/xtxerr/gridwatch/internal/state"
)

// shutdownTimeout bounds the drain of in-flight requests.
const shutdownTimeout = 10 * time.Second

// Config configures a Server.
type Config struct {
	Listen  string
	Bundle  *series.Bundle
	Tracker *state.Tracker
	Stats   *collector.Stats

	// Metrics is optional; when nil /metrics returns 404.
	Metrics *metrics.Set
}

// Server serves the query surface. Reads take the bundle's shared lock, so
// any number of requests may run concurrently with each other.
type Server struct {
	cfg  *Config
	http *http.Server
	log  *slog.Logger
}

// New creates a Server.
func New(cfg *Config) *Server {
	s := &Server{
		cfg: cfg,
		log: logging.Component("server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /metrics.json", s.handleMetricsJSON)
	mux.HandleFunc("GET /status.json", s.handleStatusJSON)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics.Handler())
	}

	s.http = &http.Server{
		Addr:    cfg.Listen,
		Handler: mux,
	}
	return s
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()

	s.log.Info("listening", "addr", s.cfg.Listen)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		s.log.Info("server stopped")
		return nil
	}
}

// metricsResponse is the /metrics.json body.
type metricsResponse struct {
	State  state.SystemState         `json:"state"`
	Series map[string]series.Summary `json:"series"`
}

func (s *Server) handleMetricsJSON(w http.ResponseWriter, r *http.Request) {
	resp := metricsResponse{
		State:  s.cfg.Tracker.State(),
		Series: s.cfg.Bundle.Summary(),
	}
	s.writeJSON(w, resp)
}

// statusResponse is the /status.json body.
type statusResponse struct {
	State     state.SystemState  `json:"state"`
	Inventory state.Inventory    `json:"inventory"`
	Collector collector.Snapshot `json:"collector"`
}

func (s *Server) handleStatusJSON(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		State:     s.cfg.Tracker.State(),
		Inventory: s.cfg.Tracker.Inventory(),
	}
	if s.cfg.Stats != nil {
		resp.Collector = s.cfg.Stats.Snapshot()
	}
	s.writeJSON(w, resp)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response", "error", err)
	}
}
