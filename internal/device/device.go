// Package device provides the registry of controllable devices and their
// state change notifications.
package device

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested device does not exist.
var ErrNotFound = errors.New("device not found")

// Type categorizes a device.
type Type string

const (
	TypeLight Type = "light"
	TypeFan   Type = "fan"
	TypeTV    Type = "tv"
	TypeAC    Type = "ac"
)

// Valid reports whether the type is one of the known device types.
func (t Type) Valid() bool {
	switch t {
	case TypeLight, TypeFan, TypeTV, TypeAC:
		return true
	}
	return false
}

// Device is one controllable device. The id is immutable after startup and
// travels on the wire as a separate device_id field, never inside the body.
type Device struct {
	ID          string     `json:"-"`
	Name        string     `json:"name"`
	Type        Type       `json:"type"`
	State       bool       `json:"state"`
	LastUpdated *time.Time `json:"last_updated"`
}

// Update is a device-state change notification delivered to sessions.
type Update struct {
	DeviceID string `json:"device_id"`
	Device   Device `json:"device"`
}

// DefaultCatalog returns the built-in device set used when no catalog is
// configured.
func DefaultCatalog() []Device {
	return []Device{
		{ID: "device_1", Name: "Living Room Light", Type: TypeLight},
		{ID: "device_2", Name: "Bedroom Fan", Type: TypeFan},
		{ID: "device_3", Name: "Kitchen Light", Type: TypeLight},
		{ID: "device_4", Name: "TV", Type: TypeTV},
	}
}
