package e2e

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tusharNova/hgr/internal/detector"
	"github.com/tusharNova/hgr/internal/device"
	"github.com/tusharNova/hgr/internal/hub"
	"github.com/tusharNova/hgr/internal/metrics"
	"github.com/tusharNova/hgr/internal/server"
	"github.com/tusharNova/hgr/internal/settings"
	"github.com/tusharNova/hgr/internal/store"
)

type env struct {
	ts       *httptest.Server
	detector *detector.MockDetector
	store    *store.Store
}

func newEnv(t *testing.T) *env {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := hub.New(logger, nil)
	t.Cleanup(h.Close)

	mock := detector.NewMockDetector()

	srv := server.New(server.Config{
		Registry: device.NewRegistry(device.DefaultCatalog(), h),
		Settings: settings.NewManager(settings.Settings{
			Enabled:    true,
			Confidence: 0.7,
			HoldTime:   100 * time.Millisecond,
			MaxHands:   1,
		}),
		Hub:      h,
		Store:    s,
		Detector: mock,
		Metrics:  metrics.New(),
		Logger:   logger,
	})

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return &env{ts: ts, detector: mock, store: s}
}

func (e *env) dial(t *testing.T) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(e.ts.URL, "http") + "/ws/gesture"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// sendFrame pushes one frame and waits for its gesture_result.
func (e *env) sendFrame(t *testing.T, conn *websocket.Conn, fingers int) map[string]any {
	t.Helper()

	e.detector.SetHands([]detector.HandLandmarks{detector.CountLandmarks(fingers)})

	payload := base64.StdEncoding.EncodeToString([]byte("jpeg-frame"))
	if err := conn.WriteJSON(map[string]string{"type": "frame", "data": payload}); err != nil {
		t.Fatalf("write frame error = %v", err)
	}

	return readUntil(t, conn, "gesture_result")
}

// readUntil reads messages until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, wanted string) map[string]any {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg map[string]any
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("waiting for %s: %v", wanted, err)
		}
		if msg["type"] == wanted {
			return msg
		}
	}
}

func TestE2E_GestureWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	e := newEnv(t)

	connA := e.dial(t)
	connB := e.dial(t)

	t.Run("Ping", func(t *testing.T) {
		if err := connA.WriteJSON(map[string]string{"type": "ping"}); err != nil {
			t.Fatalf("write ping error = %v", err)
		}
		readUntil(t, connA, "pong")
	})

	t.Run("SelectByGesture", func(t *testing.T) {
		res := e.sendFrame(t, connA, 2)
		if res["gesture"] != "TWO FINGERS" {
			t.Errorf("gesture = %v, want TWO FINGERS", res["gesture"])
		}
		if res["device_selected"] != "device_2" {
			t.Errorf("device_selected = %v, want device_2", res["device_selected"])
		}
	})

	t.Run("HoldFiresActionOnce", func(t *testing.T) {
		var actions []string
		for i := 0; i < 5; i++ {
			res := e.sendFrame(t, connA, 5)
			if a, ok := res["action_triggered"].(string); ok && a != "" {
				actions = append(actions, a)
				if res["device_id"] != "device_2" {
					t.Errorf("device_id = %v, want device_2", res["device_id"])
				}
			}
			time.Sleep(60 * time.Millisecond)
		}

		if len(actions) != 1 {
			t.Fatalf("expected exactly 1 action, got %d", len(actions))
		}
		if actions[0] != "turned_on" {
			t.Errorf("action = %q, want turned_on", actions[0])
		}
	})

	t.Run("OtherSessionSeesUpdate", func(t *testing.T) {
		update := readUntil(t, connB, "device_update")
		if update["device_id"] != "device_2" {
			t.Errorf("device_id = %v, want device_2", update["device_id"])
		}
		dev, _ := update["device"].(map[string]any)
		if dev["state"] != true {
			t.Errorf("state = %v, want true", dev["state"])
		}

		resp, err := e.ts.Client().Get(e.ts.URL + "/api/devices/device_2")
		if err != nil {
			t.Fatalf("get device error = %v", err)
		}
		defer resp.Body.Close()

		var d struct {
			State bool `json:"state"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
			t.Fatalf("decode device error = %v", err)
		}
		if !d.State {
			t.Error("registry state not updated")
		}
	})

	t.Run("ExplicitSelect", func(t *testing.T) {
		if err := connB.WriteJSON(map[string]string{"type": "select_device", "device_id": "device_3"}); err != nil {
			t.Fatalf("write select error = %v", err)
		}
		selected := readUntil(t, connB, "device_selected")
		if selected["device_id"] != "device_3" {
			t.Errorf("device_id = %v, want device_3", selected["device_id"])
		}
	})

	t.Run("UnknownSelectReportsError", func(t *testing.T) {
		if err := connB.WriteJSON(map[string]string{"type": "select_device", "device_id": "device_99"}); err != nil {
			t.Fatalf("write select error = %v", err)
		}
		readUntil(t, connB, "error")
	})

	t.Run("ActionJournaled", func(t *testing.T) {
		resp, err := e.ts.Client().Get(e.ts.URL + "/api/history")
		if err != nil {
			t.Fatalf("get history error = %v", err)
		}
		defer resp.Body.Close()

		var history struct {
			Events []struct {
				DeviceID string `json:"device_id"`
				Action   string `json:"action"`
			} `json:"events"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
			t.Fatalf("decode history error = %v", err)
		}
		if len(history.Events) != 1 {
			t.Fatalf("expected 1 journaled event, got %d", len(history.Events))
		}
		if history.Events[0].DeviceID != "device_2" || history.Events[0].Action != "turned_on" {
			t.Errorf("unexpected event: %+v", history.Events[0])
		}
	})
}

func TestE2E_RestControlSurface(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	e := newEnv(t)
	client := e.ts.Client()

	t.Run("ToggleBroadcasts", func(t *testing.T) {
		conn := e.dial(t)

		resp, err := client.Post(e.ts.URL+"/api/devices/device_1/toggle", "application/json", nil)
		if err != nil {
			t.Fatalf("toggle error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("toggle status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		update := readUntil(t, conn, "device_update")
		if update["device_id"] != "device_1" {
			t.Errorf("device_id = %v, want device_1", update["device_id"])
		}
	})

	t.Run("InvalidSettingsRejected", func(t *testing.T) {
		resp, err := client.Post(
			e.ts.URL+"/api/settings",
			"application/json",
			strings.NewReader(`{"confidence": 1.5}`),
		)
		if err != nil {
			t.Fatalf("post settings error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
		}

		resp, err = client.Get(e.ts.URL + "/api/settings")
		if err != nil {
			t.Fatalf("get settings error = %v", err)
		}
		defer resp.Body.Close()

		var s struct {
			Confidence float64 `json:"confidence"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
			t.Fatalf("decode settings error = %v", err)
		}
		if s.Confidence != 0.7 {
			t.Errorf("confidence = %v, rejected update must retain prior value", s.Confidence)
		}
	})

	t.Run("MalformedMessageClosesConnection", func(t *testing.T) {
		conn := e.dial(t)

		if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type": "bogus"}`)); err != nil {
			t.Fatalf("write error = %v", err)
		}

		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
					t.Errorf("expected policy violation close, got %v", err)
				}
				return
			}
		}
	})
}
