// Package api serves the optional stats side channel: liveness,
// readiness and a JSON dump of the metrics collector.  It never
// touches the acknowledgment listener.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"dredis/internal/metrics"
	"dredis/util"
)

// readHeaderTimeout bounds how long a client may take to send request
// headers.
const readHeaderTimeout = 5 * time.Second

// StatsServer is the HTTP side channel.  Readiness starts false and
// is flipped once the acknowledgment listener is bound.
type StatsServer struct {
	server  *http.Server
	ready   atomic.Bool
	metrics *metrics.Collector
	logger  *util.Logger
}

// NewStatsServer builds a server for addr reporting m.  Nothing is
// bound until Start.
func NewStatsServer(addr string, m *metrics.Collector, logger *util.Logger) *StatsServer {
	mux := http.NewServeMux()
	s := &StatsServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		metrics: m,
		logger:  logger,
	}

	// Not ready until the main listener is bound.
	s.ready.Store(false)

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.HandleFunc("/stats", s.handleStats)

	return s
}

// Handler exposes the mux for tests.
func (s *StatsServer) Handler() http.Handler { return s.server.Handler }

// Start binds synchronously so a bad address fails fast, then serves
// in the background.  It returns the bound address.
func (s *StatsServer) Start() (net.Addr, error) {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return nil, err
	}
	s.logger.Info("stats server listening on %s", ln.Addr())
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("stats server: %v", err)
		}
	}()
	return ln.Addr(), nil
}

// Stop shuts the HTTP server down gracefully, waiting for in-flight
// requests until ctx expires.
func (s *StatsServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// SetReady sets what /ready reports.
func (s *StatsServer) SetReady(ready bool) {
	s.ready.Store(ready)
}

func (s *StatsServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck()
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok")) //nolint:errcheck
}

func (s *StatsServer) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready.Load() {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready")) //nolint:errcheck
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("not ready")) //nolint:errcheck
	}
}

func (s *StatsServer) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(s.metrics.JSON())) //nolint:errcheck
}
