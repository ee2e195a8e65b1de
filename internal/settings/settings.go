// Package settings holds the process-wide gesture detection settings behind
// a manager that validates every update before swapping it in.
package settings

import (
	"encoding/json"
	"errors"
	"sync"
	"time"
)

var (
	// ErrConfidenceRange is returned when confidence falls outside [0, 1].
	ErrConfidenceRange = errors.New("confidence must be between 0 and 1")
	// ErrHoldTimeRange is returned when hold_time is not positive.
	ErrHoldTimeRange = errors.New("hold_time must be positive")
	// ErrMaxHandsRange is returned when max_hands is below 1.
	ErrMaxHandsRange = errors.New("max_hands must be at least 1")
)

// Settings are the gesture detection parameters read by the classifier and
// the hold-time tracker.
type Settings struct {
	Enabled    bool
	Confidence float64
	HoldTime   time.Duration
	MaxHands   int
}

// Default returns the startup settings.
func Default() Settings {
	return Settings{
		Enabled:    true,
		Confidence: 0.7,
		HoldTime:   1500 * time.Millisecond,
		MaxHands:   1,
	}
}

// Validate checks every field against its allowed range.
func (s Settings) Validate() error {
	if s.Confidence < 0 || s.Confidence > 1 {
		return ErrConfidenceRange
	}
	if s.HoldTime <= 0 {
		return ErrHoldTimeRange
	}
	if s.MaxHands < 1 {
		return ErrMaxHandsRange
	}
	return nil
}

// wireSettings is the external JSON shape; hold_time travels as float
// seconds.
type wireSettings struct {
	Enabled    bool    `json:"enabled"`
	Confidence float64 `json:"confidence"`
	HoldTime   float64 `json:"hold_time"`
	MaxHands   int     `json:"max_hands"`
}

// MarshalJSON renders the external settings shape.
func (s Settings) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireSettings{
		Enabled:    s.Enabled,
		Confidence: s.Confidence,
		HoldTime:   s.HoldTime.Seconds(),
		MaxHands:   s.MaxHands,
	})
}

// Patch is a partial settings update; nil fields keep their current value.
// HoldTime is given in seconds to match the wire shape.
type Patch struct {
	Enabled    *bool    `json:"enabled"`
	Confidence *float64 `json:"confidence"`
	HoldTime   *float64 `json:"hold_time"`
	MaxHands   *int     `json:"max_hands"`
}

// Manager guards the process-wide settings value. Reads return snapshots;
// updates validate the merged candidate and swap atomically only on
// success, so a rejected update leaves the prior settings untouched.
type Manager struct {
	mu      sync.RWMutex
	current Settings
}

// NewManager creates a manager holding the given initial settings.
func NewManager(initial Settings) *Manager {
	return &Manager{current: initial}
}

// Get returns a snapshot of the current settings.
func (m *Manager) Get() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Update merges the patch into the current settings, validates the result
// and installs it. On validation failure the prior settings are retained
// and the reason is returned.
func (m *Manager) Update(p Patch) (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	candidate := m.current
	if p.Enabled != nil {
		candidate.Enabled = *p.Enabled
	}
	if p.Confidence != nil {
		candidate.Confidence = *p.Confidence
	}
	if p.HoldTime != nil {
		candidate.HoldTime = time.Duration(*p.HoldTime * float64(time.Second))
	}
	if p.MaxHands != nil {
		candidate.MaxHands = *p.MaxHands
	}

	if err := candidate.Validate(); err != nil {
		return m.current, err
	}

	m.current = candidate
	return candidate, nil
}

// SetEnabled flips only the enabled flag. Used by the tray toggle.
func (m *Manager) SetEnabled(enabled bool) Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current.Enabled = enabled
	return m.current
}
