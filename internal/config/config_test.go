package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tusharNova/hgr/internal/device"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)

	s := cfg.Settings()
	assert.True(t, s.Enabled)
	assert.Equal(t, 0.7, s.Confidence)
	assert.Equal(t, 1500*time.Millisecond, s.HoldTime)
	assert.Equal(t, 1, s.MaxHands)

	catalog := cfg.Catalog()
	require.Len(t, catalog, 4)
	assert.Equal(t, "device_1", catalog[0].ID)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
log:
  level: debug
  format: json
store:
  path: /tmp/hgr.db
gesture:
  enabled: false
  confidence: 0.8
  hold_time: 2.0
devices:
  - id: lamp
    name: Desk Lamp
    type: light
  - id: cooler
    name: Window AC
    type: ac
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/hgr.db", cfg.Store.Path)

	s := cfg.Settings()
	assert.False(t, s.Enabled, "explicit enabled:false is honored")
	assert.Equal(t, 0.8, s.Confidence)
	assert.Equal(t, 2*time.Second, s.HoldTime)

	catalog := cfg.Catalog()
	require.Len(t, catalog, 2)
	assert.Equal(t, "lamp", catalog[0].ID)
	assert.Equal(t, device.TypeAC, catalog[1].Type)
}

func TestLoad_ZeroConfidenceIsHonored(t *testing.T) {
	path := writeConfig(t, "gesture:\n  confidence: 0\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.0, cfg.Settings().Confidence,
		"an explicit zero is a valid threshold, not an omitted key")
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("HGR_TEST_ADDR", ":7777")
	path := writeConfig(t, "server:\n  addr: \"${HGR_TEST_ADDR}\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7777", cfg.Server.Addr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"confidence out of range": "gesture:\n  confidence: 1.5\n",
		"negative hold time":      "gesture:\n  hold_time: -1\n",
		"bad device type":         "devices:\n  - id: x\n    name: X\n    type: toaster\n",
		"duplicate device id":     "devices:\n  - id: x\n    name: X\n    type: light\n  - id: x\n    name: Y\n    type: fan\n",
		"device without name":     "devices:\n  - id: x\n    type: light\n",
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}
