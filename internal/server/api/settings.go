package api

import (
	"encoding/json"
	"net/http"

	"github.com/tusharNova/hgr/internal/settings"
)

// SettingsHandler handles HTTP requests for the gesture detection settings.
type SettingsHandler struct {
	manager *settings.Manager
}

// NewSettingsHandler creates a new SettingsHandler backed by the manager.
func NewSettingsHandler(m *settings.Manager) *SettingsHandler {
	return &SettingsHandler{manager: m}
}

// ServeHTTP implements the http.Handler interface.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPost:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// get handles GET /api/settings and returns the current settings.
func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Get())
}

// update handles POST /api/settings and applies a partial update. Omitted
// fields keep their current value; a rejected update changes nothing.
func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var patch settings.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	updated, err := h.manager.Update(patch)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, updated)
}
