// Package config loads the server configuration from YAML with environment
// variable expansion, defaults and validation.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tusharNova/hgr/internal/device"
	"github.com/tusharNova/hgr/internal/settings"
)

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Store    StoreConfig    `yaml:"store"`
	Detector DetectorConfig `yaml:"detector"`
	Motion   MotionConfig   `yaml:"motion"`
	Gesture  GestureConfig  `yaml:"gesture"`
	Devices  []DeviceConfig `yaml:"devices"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StoreConfig configures the action history database. An empty path
// disables history persistence.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// DetectorConfig configures the hand landmark service.
type DetectorConfig struct {
	Script                string  `yaml:"script"`
	Python                string  `yaml:"python"`
	MaxHands              int     `yaml:"max_hands"`
	MinConfidence         float64 `yaml:"min_confidence"`
	MinTrackingConfidence float64 `yaml:"min_tracking_confidence"`
}

// MotionConfig configures the per-session motion gate.
type MotionConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Threshold float64 `yaml:"threshold"`
}

// GestureConfig holds the startup gesture settings. Enabled and Confidence
// are pointers so an omitted key gets its default while an explicit false or
// zero is honored.
type GestureConfig struct {
	Enabled    *bool    `yaml:"enabled"`
	Confidence *float64 `yaml:"confidence"`
	HoldTime   float64  `yaml:"hold_time"`
	MaxHands   int      `yaml:"max_hands"`
}

// DeviceConfig declares one device in the catalog.
type DeviceConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// Load reads, expands and parses the YAML file at path, applies defaults
// and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Detector.MaxHands == 0 {
		c.Detector.MaxHands = 2
	}
	if c.Detector.MinConfidence == 0 {
		c.Detector.MinConfidence = 0.5
	}
	if c.Detector.MinTrackingConfidence == 0 {
		c.Detector.MinTrackingConfidence = 0.5
	}
	if c.Motion.Threshold == 0 {
		c.Motion.Threshold = 1.0
	}
	if c.Gesture.Enabled == nil {
		enabled := true
		c.Gesture.Enabled = &enabled
	}
	if c.Gesture.Confidence == nil {
		confidence := 0.7
		c.Gesture.Confidence = &confidence
	}
	if c.Gesture.HoldTime == 0 {
		c.Gesture.HoldTime = 1.5
	}
	if c.Gesture.MaxHands == 0 {
		c.Gesture.MaxHands = 1
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if err := c.Settings().Validate(); err != nil {
		return fmt.Errorf("gesture: %w", err)
	}

	if c.Motion.Threshold < 0 {
		return fmt.Errorf("motion: threshold must not be negative")
	}

	seen := make(map[string]bool, len(c.Devices))
	for i, d := range c.Devices {
		if d.ID == "" {
			return fmt.Errorf("devices[%d]: id is required", i)
		}
		if seen[d.ID] {
			return fmt.Errorf("devices[%d]: duplicate id %q", i, d.ID)
		}
		seen[d.ID] = true
		if d.Name == "" {
			return fmt.Errorf("devices[%d]: name is required", i)
		}
		if !device.Type(d.Type).Valid() {
			return fmt.Errorf("devices[%d]: unknown type %q", i, d.Type)
		}
	}

	return nil
}

// Settings converts the gesture section to runtime settings.
func (c *Config) Settings() settings.Settings {
	confidence := 0.7
	if c.Gesture.Confidence != nil {
		confidence = *c.Gesture.Confidence
	}

	return settings.Settings{
		Enabled:    c.Gesture.Enabled == nil || *c.Gesture.Enabled,
		Confidence: confidence,
		HoldTime:   time.Duration(c.Gesture.HoldTime * float64(time.Second)),
		MaxHands:   c.Gesture.MaxHands,
	}
}

// Catalog converts the devices section to the registry seed, falling back
// to the built-in catalog when no devices are configured.
func (c *Config) Catalog() []device.Device {
	if len(c.Devices) == 0 {
		return device.DefaultCatalog()
	}

	catalog := make([]device.Device, 0, len(c.Devices))
	for _, d := range c.Devices {
		catalog = append(catalog, device.Device{
			ID:   d.ID,
			Name: d.Name,
			Type: device.Type(d.Type),
		})
	}
	return catalog
}
