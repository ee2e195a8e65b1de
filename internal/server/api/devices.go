// Package api provides HTTP API handlers for the gesture control server.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/tusharNova/hgr/internal/device"
)

// DevicesHandler handles HTTP requests for device resources.
type DevicesHandler struct {
	registry *device.Registry
}

// NewDevicesHandler creates a new DevicesHandler backed by the registry.
func NewDevicesHandler(r *device.Registry) *DevicesHandler {
	return &DevicesHandler{registry: r}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *DevicesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/devices, /api/devices/{id},
	// /api/devices/{id}/toggle, /api/devices/{id}/state
	path := strings.TrimPrefix(r.URL.Path, "/api/devices")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	id, action, _ := strings.Cut(path, "/")

	switch action {
	case "":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.get(w, r, id)
	case "toggle":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.toggle(w, r, id)
	case "state":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.setState(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

type deviceResponse struct {
	DeviceID string `json:"device_id"`
	device.Device
}

type setStateRequest struct {
	State *bool `json:"state"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/devices and returns all devices keyed by id.
func (h *DevicesHandler) list(w http.ResponseWriter, r *http.Request) {
	devices := h.registry.List()

	response := make(map[string]device.Device, len(devices))
	for _, d := range devices {
		response[d.ID] = d
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/devices/{id} and returns a single device.
func (h *DevicesHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	d, err := h.registry.Get(id)
	if err != nil {
		if errors.Is(err, device.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Device not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get device")
		return
	}

	writeJSON(w, http.StatusOK, deviceResponse{DeviceID: d.ID, Device: d})
}

// toggle handles POST /api/devices/{id}/toggle and flips the device state.
func (h *DevicesHandler) toggle(w http.ResponseWriter, r *http.Request, id string) {
	d, err := h.registry.Toggle(id)
	if err != nil {
		if errors.Is(err, device.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Device not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to toggle device")
		return
	}

	writeJSON(w, http.StatusOK, deviceResponse{DeviceID: d.ID, Device: d})
}

// setState handles POST /api/devices/{id}/state and sets the state explicitly.
func (h *DevicesHandler) setState(w http.ResponseWriter, r *http.Request, id string) {
	var req setStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.State == nil {
		writeError(w, http.StatusBadRequest, "State is required")
		return
	}

	d, err := h.registry.SetState(id, *req.State)
	if err != nil {
		if errors.Is(err, device.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Device not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to set device state")
		return
	}

	writeJSON(w, http.StatusOK, deviceResponse{DeviceID: d.ID, Device: d})
}
