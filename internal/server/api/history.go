package api

import (
	"net/http"
	"strconv"

	"github.com/tusharNova/hgr/internal/store"
)

// HistoryHandler serves the recent action event journal.
type HistoryHandler struct {
	events *store.EventRepository
}

// NewHistoryHandler creates a new HistoryHandler backed by the event repository.
func NewHistoryHandler(events *store.EventRepository) *HistoryHandler {
	return &HistoryHandler{events: events}
}

type eventResponse struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	DeviceID  string `json:"device_id"`
	Gesture   string `json:"gesture"`
	Action    string `json:"action"`
	CreatedAt string `json:"created_at"`
}

type listEventsResponse struct {
	Events []eventResponse `json:"events"`
}

// ServeHTTP handles GET /api/history?limit=N, newest events first.
func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	events, err := h.events.ListRecent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}

	response := listEventsResponse{Events: make([]eventResponse, 0, len(events))}
	for _, e := range events {
		response.Events = append(response.Events, eventResponse{
			ID:        e.ID,
			SessionID: e.SessionID,
			DeviceID:  e.DeviceID,
			Gesture:   e.Gesture,
			Action:    e.Action,
			CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	writeJSON(w, http.StatusOK, response)
}
