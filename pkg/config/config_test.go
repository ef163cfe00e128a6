package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/itohio/comfort/pkg/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, time.Millisecond, cfg.Scheduler.TickInterval)
	assert.Equal(t, 100*time.Microsecond, cfg.Scheduler.IdleSleep)
	assert.Equal(t, scheduler.Thresholds{Fast: 5, Medium: 10, Slow: 100, VerySlow: 1000}, cfg.Scheduler.Thresholds)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Console)
	assert.Empty(t, cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Empty(t, cfg.Store.Path)
	assert.Equal(t, 20, cfg.Thermostat.ReportEvery)
	assert.Equal(t, float64(30), cfg.Thermostat.FanOnAbove)
	assert.Equal(t, float64(29), cfg.Thermostat.FanOffBelow)
	assert.Equal(t, "@every 10s", cfg.Diagnostics.Schedule)
	assert.False(t, cfg.Watchdog.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Mock.TimeConstant)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, Default(), cfg)
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_ValidYAML(t *testing.T) {
	path := writeTemp(t, `
scheduler:
  tick_interval: 2ms
  idle_sleep: 50us
  thresholds:
    fast: 3
    medium: 7
    slow: 20
    very_slow: 500

logging:
  level: debug
  console: false

serial:
  port: "/dev/ttyACM0"
  baud_rate: 9600

store:
  path: /var/lib/comfort/readings.db

thermostat:
  report_every: 5
  fan_on_above: 27.5
  fan_off_below: 26

diagnostics:
  schedule: "@every 1m"
  warn_per_second: 3

watchdog:
  enabled: true

mock:
  ambient: 20
  fail_every: 7
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2*time.Millisecond, cfg.Scheduler.TickInterval)
	assert.Equal(t, 50*time.Microsecond, cfg.Scheduler.IdleSleep)
	assert.Equal(t, scheduler.Thresholds{Fast: 3, Medium: 7, Slow: 20, VerySlow: 500}, cfg.Scheduler.Thresholds)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Console)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)
	assert.Equal(t, "/var/lib/comfort/readings.db", cfg.Store.Path)
	assert.Equal(t, 5, cfg.Thermostat.ReportEvery)
	assert.Equal(t, 27.5, cfg.Thermostat.FanOnAbove)
	assert.Equal(t, float64(26), cfg.Thermostat.FanOffBelow)
	assert.Equal(t, "@every 1m", cfg.Diagnostics.Schedule)
	assert.Equal(t, 3, cfg.Diagnostics.WarnPerSecond)
	assert.True(t, cfg.Watchdog.Enabled)
	assert.Equal(t, float64(20), cfg.Mock.Ambient)
	assert.Equal(t, 7, cfg.Mock.FailEvery)
	// Not in file, default kept
	assert.Equal(t, float64(55), cfg.Mock.Humidity)
}

func TestLoad_PartialThresholdsKeepDefaults(t *testing.T) {
	path := writeTemp(t, `
scheduler:
  thresholds:
    very_slow: 2000
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, scheduler.Thresholds{Fast: 5, Medium: 10, Slow: 100, VerySlow: 2000}, cfg.Scheduler.Thresholds)
}

func TestLoad_EnsureDefaults(t *testing.T) {
	path := writeTemp(t, `
scheduler:
  tick_interval: 0s
logging:
  level: ""
thermostat:
  report_every: 0
diagnostics:
  schedule: ""
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, time.Millisecond, cfg.Scheduler.TickInterval)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 20, cfg.Thermostat.ReportEvery)
	assert.Equal(t, "@every 10s", cfg.Diagnostics.Schedule)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeTemp(t, "scheduler: [unclosed")

	cfg, err := Load(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_InvalidThresholds(t *testing.T) {
	path := writeTemp(t, `
scheduler:
  thresholds:
    fast: 50
    medium: 10
    slow: 100
    very_slow: 1000
`)

	cfg, err := Load(path)
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.ErrorIs(t, err, scheduler.ErrThresholdOrder)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{name: "default", modify: func(c *Config) {}},
		{name: "zero tick", modify: func(c *Config) { c.Scheduler.TickInterval = 0 }, wantErr: true},
		{name: "zero fast", modify: func(c *Config) { c.Scheduler.Thresholds.Fast = 0 }, wantErr: true},
		{name: "zero report", modify: func(c *Config) { c.Thermostat.ReportEvery = 0 }, wantErr: true},
		{name: "inverted hysteresis", modify: func(c *Config) {
			c.Thermostat.FanOnAbove = 25
			c.Thermostat.FanOffBelow = 26
		}, wantErr: true},
		{name: "no hysteresis", modify: func(c *Config) {
			c.Thermostat.FanOnAbove = 25
			c.Thermostat.FanOffBelow = 25
		}, wantErr: true},
		{name: "negative baud", modify: func(c *Config) { c.Serial.BaudRate = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")

	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB0"
	cfg.Scheduler.Thresholds = scheduler.Thresholds{Fast: 2, Medium: 4, Slow: 40, VerySlow: 400}
	cfg.Store.Path = "history.db"

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
