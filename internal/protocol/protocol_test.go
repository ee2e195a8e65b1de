package protocol

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tusharNova/hgr/internal/gesture"
)

func TestParseInbound(t *testing.T) {
	t.Run("frame", func(t *testing.T) {
		msg, err := ParseInbound([]byte(`{"type":"frame","data":"aGVsbG8="}`))
		require.NoError(t, err)
		assert.Equal(t, TypeFrame, msg.Type)
		assert.Equal(t, "aGVsbG8=", msg.Data)
	})

	t.Run("ping", func(t *testing.T) {
		msg, err := ParseInbound([]byte(`{"type":"ping"}`))
		require.NoError(t, err)
		assert.Equal(t, TypePing, msg.Type)
	})

	t.Run("select_device", func(t *testing.T) {
		msg, err := ParseInbound([]byte(`{"type":"select_device","device_id":"device_2"}`))
		require.NoError(t, err)
		assert.Equal(t, "device_2", msg.DeviceID)
	})

	t.Run("fails closed", func(t *testing.T) {
		cases := map[string]string{
			"malformed json":       `{"type":`,
			"missing type":         `{"data":"x"}`,
			"unknown type":         `{"type":"shutdown"}`,
			"frame without data":   `{"type":"frame"}`,
			"select without id":    `{"type":"select_device"}`,
			"non-object payload":   `"frame"`,
		}
		for name, raw := range cases {
			_, err := ParseInbound([]byte(raw))
			assert.Error(t, err, name)
		}
	})
}

func TestInbound_FrameBytes(t *testing.T) {
	payload := []byte{0xff, 0xd8, 0xff, 0xe0}
	encoded := base64.StdEncoding.EncodeToString(payload)

	t.Run("raw base64", func(t *testing.T) {
		m := &Inbound{Type: TypeFrame, Data: encoded}
		got, err := m.FrameBytes()
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	})

	t.Run("data URL", func(t *testing.T) {
		m := &Inbound{Type: TypeFrame, Data: "data:image/jpeg;base64," + encoded}
		got, err := m.FrameBytes()
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	})

	t.Run("undecodable payload errors", func(t *testing.T) {
		m := &Inbound{Type: TypeFrame, Data: "not-base64!!!"}
		_, err := m.FrameBytes()
		assert.Error(t, err)
	})
}

func TestNewGestureResult(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sample := gesture.Sample{
		Label:        gesture.LabelOpenPalm,
		FingerCount:  5,
		HandDetected: true,
		ObservedAt:   at,
	}

	res := NewGestureResult(sample, 1500*time.Millisecond)

	data, err := json.Marshal(res)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, "gesture_result", wire["type"])
	assert.Equal(t, "OPEN PALM (ON)", wire["gesture"])
	assert.Equal(t, float64(5), wire["finger_count"])
	assert.Equal(t, true, wire["hand_detected"])
	assert.Equal(t, 1.5, wire["hold_duration"])

	// Optional fields stay off the wire until set.
	assert.NotContains(t, wire, "action_triggered")
	assert.NotContains(t, wire, "device_id")
	assert.NotContains(t, wire, "device_selected")
}

func TestOutboundTypes(t *testing.T) {
	pong, _ := json.Marshal(NewPong())
	assert.JSONEq(t, `{"type":"pong"}`, string(pong))

	selected, _ := json.Marshal(NewDeviceSelected("device_3"))
	assert.JSONEq(t, `{"type":"device_selected","device_id":"device_3"}`, string(selected))

	errMsg, _ := json.Marshal(NewError("device not found"))
	assert.JSONEq(t, `{"type":"error","error":"device not found"}`, string(errMsg))
}
