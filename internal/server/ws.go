package server

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/tusharNova/hgr/internal/session"
	"github.com/tusharNova/hgr/internal/store"
	"github.com/tusharNova/hgr/internal/vision"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// gestureHandler upgrades /ws/gesture requests and runs one session per
// connection until the peer disconnects.
type gestureHandler struct {
	server *Server
}

func (s *Server) newGestureHandler() *gestureHandler {
	return &gestureHandler{server: s}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *gestureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s := h.server

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	var events *store.EventRepository
	if s.config.Store != nil {
		events = s.config.Store.Events()
	}

	// Each session gets its own motion baseline; frames from different
	// clients must never be compared against each other.
	var motion session.MotionGate
	if s.config.MotionEnabled {
		motion = vision.NewGate(s.config.MotionThreshold)
	}

	s.sessions.Add(1)
	defer s.sessions.Add(-1)
	s.config.Metrics.SessionStarted()
	defer s.config.Metrics.SessionEnded()

	sess := session.New(session.Config{
		Conn:     conn,
		Registry: s.config.Registry,
		Hub:      s.config.Hub,
		Settings: s.config.Settings,
		Detector: s.config.Detector,
		Events:   events,
		Metrics:  s.config.Metrics,
		Motion:   motion,
		Logger:   s.logger,
	})
	sess.Run(r.Context())
}
