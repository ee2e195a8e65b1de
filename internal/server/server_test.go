package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tusharNova/hgr/internal/device"
	"github.com/tusharNova/hgr/internal/hub"
	"github.com/tusharNova/hgr/internal/metrics"
	"github.com/tusharNova/hgr/internal/settings"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := hub.New(logger, nil)
	t.Cleanup(h.Close)

	return New(Config{
		Registry: device.NewRegistry(device.DefaultCatalog(), h),
		Settings: settings.NewManager(settings.Default()),
		Hub:      h,
		Metrics:  metrics.New(),
		Logger:   logger,
	})
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var response struct {
		Status            string `json:"status"`
		Uptime            string `json:"uptime"`
		Timestamp         string `json:"timestamp"`
		TotalDevices      int    `json:"total_devices"`
		ActiveConnections int    `json:"active_connections"`
	}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Status != "ok" {
		t.Errorf("expected status ok, got %q", response.Status)
	}
	if response.Uptime == "" || response.Timestamp == "" {
		t.Error("expected uptime and timestamp to be set")
	}
	if response.TotalDevices != 4 {
		t.Errorf("expected 4 devices, got %d", response.TotalDevices)
	}
	if response.ActiveConnections != 0 {
		t.Errorf("expected 0 connections, got %d", response.ActiveConnections)
	}
}

func TestServer_ActiveConnectionsCountsSessionsOnly(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := hub.New(logger, nil)
	t.Cleanup(h.Close)

	srv := New(Config{
		Registry: device.NewRegistry(device.DefaultCatalog(), h),
		Settings: settings.NewManager(settings.Default()),
		Hub:      h,
		Metrics:  metrics.New(),
		Logger:   logger,
	})

	// A non-session hub subscriber, like the tray, must not be reported
	// as a connection.
	h.Subscribe(context.Background())
	srv.sessions.Add(1)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	var response struct {
		ActiveConnections int `json:"active_connections"`
	}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.ActiveConnections != 1 {
		t.Errorf("active_connections = %d, want 1", response.ActiveConnections)
	}
}

func TestServer_HealthMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/health", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

func TestServer_DevicesRouted(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/devices/device_1", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

func TestServer_SettingsRouted(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

func TestServer_HistoryAbsentWithoutStore(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 without a store, got %d", w.Code)
	}
}

func TestServer_MetricsExposed(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}
