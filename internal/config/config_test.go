package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-dose-monitor/internal/core/constants"
	"github.com/penwyp/go-dose-monitor/internal/data/aggregator"
)

func TestDefault(t *testing.T) {
	c := Default()

	assert.Equal(t, DefaultStorePath, c.Store.Path)
	assert.Equal(t, "Local", c.Timezone)
	assert.Equal(t, "24h", c.TimeFormat)
	assert.Equal(t, "7d", c.Window)
	assert.Equal(t, "table", c.Output)
	assert.Equal(t, constants.DefaultDayHeight, c.Timeline.DayHeight)
	assert.Equal(t, constants.DefaultNowRefreshInterval, c.Timeline.RefreshInterval)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "text", c.Log.Format)
	assert.Equal(t, DefaultAddr, c.Server.Addr)
	assert.NoError(t, c.Validate())
}

func TestParse(t *testing.T) {
	data := []byte(`
store:
  path: /tmp/doses.jsonl
timezone: UTC
time_format: 12h
window: 30d
output: summary
timeline:
  days: 3
  day_height: 720
  refresh_interval: 30s
log:
  level: debug
  format: json
server:
  addr: 127.0.0.1:8080
`)
	c, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/doses.jsonl", c.Store.Path)
	assert.Equal(t, "UTC", c.Timezone)
	assert.Equal(t, "12h", c.TimeFormat)
	assert.Equal(t, aggregator.Window30d, c.StatsWindow())
	assert.Equal(t, "summary", c.Output)
	assert.Equal(t, 3, c.Timeline.Days)
	assert.Equal(t, 720.0, c.Timeline.DayHeight)
	assert.Equal(t, 30*time.Second, c.Timeline.RefreshInterval)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "json", c.Log.Format)
	assert.Equal(t, DefaultLogFile, c.Log.File)
	assert.Equal(t, "127.0.0.1:8080", c.Server.Addr)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "window: [7"},
		{"unsupported window", "window: 5d"},
		{"bad time format", "time_format: 36h"},
		{"unknown timezone", "timezone: Mars/Olympus"},
		{"bad log format", "log:\n  format: xml"},
		{"negative days", "timeline:\n  days: -1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window: 14\n"), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, aggregator.Window14d, c.StatsWindow())

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadOptional_MissingFile(t *testing.T) {
	c, err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestMonitor(t *testing.T) {
	c, err := Parse([]byte("timezone: UTC\nwindow: 3d\ntimeline:\n  days: 2\n"))
	require.NoError(t, err)

	mc := c.Monitor()
	assert.Equal(t, "UTC", mc.Timezone)
	assert.Equal(t, aggregator.Window3d, mc.Window)
	assert.Equal(t, 2, mc.Days)
	assert.Equal(t, constants.DefaultDayHeight, mc.DayHeight)
	assert.NoError(t, mc.Validate())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "x", "y.yaml"), ExpandPath("~/x/y.yaml"))
	assert.True(t, filepath.IsAbs(ExpandPath("relative/file")))
}
