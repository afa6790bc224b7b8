// Package server exposes the metrics core and the record store over
// a JSON HTTP API.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"centerview/internal/config"
	"centerview/internal/db"
)

// VersionInfo holds build-time version metadata.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}

// Server is the HTTP server that serves the metrics REST API.
type Server struct {
	mu      sync.RWMutex
	cfg     config.Config
	db      *db.DB
	mux     *http.ServeMux
	httpSrv *http.Server
	version VersionInfo

	// now is the clock used for dismiss timestamps and default
	// windows, injectable in tests.
	now func() time.Time

	// handlerDelay is injected before each timeout-wrapped
	// handler, used only by tests to guarantee handlers exceed a
	// short timeout. Zero in production.
	handlerDelay time.Duration
}

// New creates a new Server.
func New(cfg config.Config, database *db.DB, opts ...Option) *Server {
	s := &Server{
		cfg: cfg,
		db:  database,
		mux: http.NewServeMux(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// Option configures a Server.
type Option func(*Server)

// WithVersion sets the build-time version metadata.
func WithVersion(v VersionInfo) Option {
	return func(s *Server) { s.version = v }
}

// WithClock overrides the server clock. Nil is ignored.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

func (s *Server) routes() {
	s.mux.Handle("GET /api/v1/metrics/trend", s.withTimeout(s.handleTrend))
	s.mux.Handle("GET /api/v1/metrics/leaderboard", s.withTimeout(s.handleLeaderboard))
	s.mux.Handle("GET /api/v1/metrics/machines", s.withTimeout(s.handleMachines))
	s.mux.Handle("GET /api/v1/metrics/comparison", s.withTimeout(s.handleComparison))

	s.mux.Handle("GET /api/v1/checkins", s.withTimeout(s.handleListCheckins))
	s.mux.Handle(
		"POST /api/v1/checkins/{id}/dismiss",
		s.withTimeout(s.handleDismissCheckin),
	)

	s.mux.Handle("GET /api/v1/stats", s.withTimeout(s.handleGetStats))
	s.mux.Handle("GET /api/v1/version", s.withTimeout(s.handleGetVersion))
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

func (s *Server) handleGetVersion(
	w http.ResponseWriter, _ *http.Request,
) {
	writeJSON(w, http.StatusOK, s.version)
}

func (s *Server) handleHealthz(
	w http.ResponseWriter, _ *http.Request,
) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// UpdateConfig swaps in a reloaded configuration. Only the
// request-shaping fields (trend window, leaderboard limit, write
// timeout) take effect without a restart; the listen address does
// not.
func (s *Server) UpdateConfig(cfg config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.TrendWindowDays = cfg.TrendWindowDays
	s.cfg.LeaderboardLimit = cfg.LeaderboardLimit
	s.cfg.WriteTimeout = cfg.WriteTimeout
}

// snapshotCfg returns the current config under the read lock.
func (s *Server) snapshotCfg() config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Handler returns the http.Handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return instrumentMiddleware(logMiddleware(s.mux))
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 120 * time.Second,
	}
	s.mu.Lock()
	s.httpSrv = srv
	s.mu.Unlock()
	log.Printf("Starting server at http://%s", addr)
	return srv.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv := s.httpSrv
	s.mu.RUnlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// FindAvailablePort finds an available port starting from the given
// port, binding to the specified host.
func FindAvailablePort(host string, start int) int {
	for port := start; port < start+100; port++ {
		addr := net.JoinHostPort(host, strconv.Itoa(port))
		ln, err := net.Listen("tcp", addr)
		if err == nil {
			ln.Close()
			return port
		}
	}
	return start
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}
