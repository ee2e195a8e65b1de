// Package server provides the HTTP gateway for the gesture control system.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tusharNova/hgr/internal/detector"
	"github.com/tusharNova/hgr/internal/device"
	"github.com/tusharNova/hgr/internal/hub"
	"github.com/tusharNova/hgr/internal/metrics"
	"github.com/tusharNova/hgr/internal/server/api"
	"github.com/tusharNova/hgr/internal/settings"
	"github.com/tusharNova/hgr/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Registry  *device.Registry
	Settings  *settings.Manager
	Hub       *hub.Hub
	Store     *store.Store
	Detector  detector.Detector
	Metrics   *metrics.Metrics

	// MotionEnabled turns on per-session frame gating; MotionThreshold is
	// the changed-pixel percentage below which a frame is skipped.
	MotionEnabled   bool
	MotionThreshold float64

	Logger *slog.Logger
}

// Server is the HTTP gateway: REST control surface plus the gesture
// WebSocket endpoint.
type Server struct {
	config Config
	logger *slog.Logger
	mux    *http.ServeMux
	start  time.Time

	// sessions counts live WebSocket sessions only; the hub also carries
	// non-session subscribers such as the tray.
	sessions atomic.Int64
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config: config,
		logger: logger.With("component", "server"),
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	devicesHandler := api.NewDevicesHandler(s.config.Registry)
	s.mux.Handle("/api/devices", devicesHandler)
	s.mux.Handle("/api/devices/", devicesHandler)

	s.mux.Handle("/api/settings", api.NewSettingsHandler(s.config.Settings))

	// History requires persistence; the journal is optional.
	if s.config.Store != nil {
		s.mux.Handle("/api/history", api.NewHistoryHandler(s.config.Store.Events()))
	}

	if s.config.Metrics != nil {
		s.mux.Handle("/metrics", s.config.Metrics.Handler())
	}

	s.mux.Handle("/ws/gesture", s.newGestureHandler())

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status":             "ok",
		"uptime":             time.Since(s.start).String(),
		"timestamp":          time.Now().Format(time.RFC3339Nano),
		"total_devices":      s.config.Registry.Len(),
		"active_connections": s.sessions.Load(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
