// Package protocol defines the WebSocket message contract between client
// and server: one closed tagged union per direction. Unknown or malformed
// inbound shapes are rejected rather than silently ignored.
package protocol

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tusharNova/hgr/internal/device"
	"github.com/tusharNova/hgr/internal/gesture"
)

// Inbound message types.
const (
	TypeFrame        = "frame"
	TypePing         = "ping"
	TypeSelectDevice = "select_device"
)

// Outbound message types.
const (
	TypeGestureResult  = "gesture_result"
	TypeDeviceUpdate   = "device_update"
	TypeDeviceSelected = "device_selected"
	TypePong           = "pong"
	TypeError          = "error"
)

// Inbound is a decoded client message. Exactly the fields for its type are
// populated.
type Inbound struct {
	Type     string `json:"type"`
	Data     string `json:"data,omitempty"`
	DeviceID string `json:"device_id,omitempty"`
}

// ParseInbound decodes and validates one client message. It fails closed:
// malformed JSON, an unknown type, or a type missing its required field is
// an error, never a silent no-op.
func ParseInbound(raw []byte) (*Inbound, error) {
	var msg Inbound
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}

	switch msg.Type {
	case TypeFrame:
		if msg.Data == "" {
			return nil, fmt.Errorf("frame message without data")
		}
	case TypeSelectDevice:
		if msg.DeviceID == "" {
			return nil, fmt.Errorf("select_device message without device_id")
		}
	case TypePing:
	case "":
		return nil, fmt.Errorf("message without type")
	default:
		return nil, fmt.Errorf("unknown message type %q", msg.Type)
	}

	return &msg, nil
}

// FrameBytes decodes the frame payload. Clients send either a raw base64
// string or a browser data URL ("data:image/jpeg;base64,..."). A decode
// failure degrades the frame, it does not terminate the session.
func (m *Inbound) FrameBytes() ([]byte, error) {
	data := m.Data
	if i := strings.IndexByte(data, ','); i >= 0 && strings.HasPrefix(data, "data:") {
		data = data[i+1:]
	}

	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode frame payload: %w", err)
	}
	return decoded, nil
}

// GestureResult reports one processed frame back to its session.
type GestureResult struct {
	Type            string  `json:"type"`
	Gesture         string  `json:"gesture"`
	FingerCount     int     `json:"finger_count"`
	HandDetected    bool    `json:"hand_detected"`
	Timestamp       string  `json:"timestamp"`
	HoldDuration    float64 `json:"hold_duration"`
	ActionTriggered string  `json:"action_triggered,omitempty"`
	DeviceID        string  `json:"device_id,omitempty"`
	DeviceSelected  string  `json:"device_selected,omitempty"`
}

// NewGestureResult builds a gesture_result from a tracker outcome.
func NewGestureResult(sample gesture.Sample, holdDuration time.Duration) GestureResult {
	return GestureResult{
		Type:         TypeGestureResult,
		Gesture:      sample.Label.String(),
		FingerCount:  sample.FingerCount,
		HandDetected: sample.HandDetected,
		Timestamp:    sample.ObservedAt.Format(time.RFC3339Nano),
		HoldDuration: holdDuration.Seconds(),
	}
}

// DeviceUpdate notifies a session of a committed device mutation.
type DeviceUpdate struct {
	Type     string        `json:"type"`
	DeviceID string        `json:"device_id"`
	Device   device.Device `json:"device"`
}

// NewDeviceUpdate wraps a hub notification for the wire.
func NewDeviceUpdate(u device.Update) DeviceUpdate {
	return DeviceUpdate{
		Type:     TypeDeviceUpdate,
		DeviceID: u.DeviceID,
		Device:   u.Device,
	}
}

// DeviceSelected confirms a device selection to the requesting session.
type DeviceSelected struct {
	Type     string `json:"type"`
	DeviceID string `json:"device_id"`
}

// NewDeviceSelected builds a device_selected message.
func NewDeviceSelected(deviceID string) DeviceSelected {
	return DeviceSelected{Type: TypeDeviceSelected, DeviceID: deviceID}
}

// Pong answers a keep-alive ping.
type Pong struct {
	Type string `json:"type"`
}

// NewPong builds a pong message.
func NewPong() Pong {
	return Pong{Type: TypePong}
}

// ErrorMessage surfaces a per-session failure, such as selecting an unknown
// device, to the caller only.
type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// NewError builds an error message.
func NewError(msg string) ErrorMessage {
	return ErrorMessage{Type: TypeError, Error: msg}
}
