// Package config loads and validates the YAML application configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/itohio/comfort/pkg/scheduler"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config represents the application configuration.
type Config struct {
	Scheduler   SchedulerConfig   `yaml:"scheduler"`
	Logging     LoggingConfig     `yaml:"logging"`
	Serial      SerialConfig      `yaml:"serial"`
	Store       StoreConfig       `yaml:"store"`
	Thermostat  ThermostatConfig  `yaml:"thermostat"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
	Watchdog    WatchdogConfig    `yaml:"watchdog"`
	Mock        MockConfig        `yaml:"mock"`
}

// SchedulerConfig contains tick and tier period configuration.
type SchedulerConfig struct {
	TickInterval time.Duration        `yaml:"tick_interval"`
	IdleSleep    time.Duration        `yaml:"idle_sleep"` // Dispatcher sleep when nothing is pending
	Thresholds   scheduler.Thresholds `yaml:"thresholds"` // Tier periods in ticks
}

// LoggingConfig contains logger configuration.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
}

// SerialConfig contains the report serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"` // Empty writes reports to stdout
	BaudRate int    `yaml:"baud_rate"`
}

// StoreConfig contains reading history configuration.
type StoreConfig struct {
	Path string `yaml:"path"` // Empty disables history
}

// ThermostatConfig contains climate control parameters.
type ThermostatConfig struct {
	ReportEvery int     `yaml:"report_every"`  // Very slow task runs between reports
	FanOnAbove  float64 `yaml:"fan_on_above"`  // Switch fan on above this temperature (°C)
	FanOffBelow float64 `yaml:"fan_off_below"` // Switch fan off below this temperature (°C)
}

// DiagnosticsConfig contains missed-task monitoring configuration.
type DiagnosticsConfig struct {
	Schedule      string `yaml:"schedule"`        // Cron spec for summaries, e.g. "@every 10s"
	WarnPerSecond int    `yaml:"warn_per_second"` // Missed task warning rate limit
}

// WatchdogConfig contains service watchdog configuration.
type WatchdogConfig struct {
	Enabled bool `yaml:"enabled"`
}

// MockConfig contains simulated hardware configuration.
type MockConfig struct {
	Ambient      float64       `yaml:"ambient"`       // Ambient temperature (°C)
	Humidity     float64       `yaml:"humidity"`      // Relative humidity (%)
	NoiseLevel   float64       `yaml:"noise_level"`   // Temperature noise amplitude (°C)
	HeatGain     float64       `yaml:"heat_gain"`     // Room heating above ambient (°C)
	FanCooling   float64       `yaml:"fan_cooling"`   // Temperature drop with fan on (°C)
	TimeConstant time.Duration `yaml:"time_constant"` // Thermal time constant
	MCUOffset    float64       `yaml:"mcu_offset"`    // MCU self heating over ambient (°C)
	SoundEvery   int           `yaml:"sound_every"`   // Loud noise once per N samples (0 = never)
	FailEvery    int           `yaml:"fail_every"`    // Sensor failure once per N reads (0 = never)
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Scheduler: SchedulerConfig{
			TickInterval: time.Millisecond,
			IdleSleep:    100 * time.Microsecond,
			Thresholds:   scheduler.DefaultThresholds(),
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
		},
		Serial: SerialConfig{
			Port:     "",
			BaudRate: 115200,
		},
		Thermostat: ThermostatConfig{
			ReportEvery: 20,
			FanOnAbove:  30,
			FanOffBelow: 29,
		},
		Diagnostics: DiagnosticsConfig{
			Schedule:      "@every 10s",
			WarnPerSecond: 1,
		},
		Mock: MockConfig{
			Ambient:      24.0,
			Humidity:     55.0,
			NoiseLevel:   0.2,
			HeatGain:     8.0,
			FanCooling:   6.0,
			TimeConstant: 30 * time.Second,
			MCUOffset:    4.0,
			SoundEvery:   500,
			FailEvery:    0,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Scheduler.TickInterval <= 0 {
		return fmt.Errorf("%w: scheduler.tick_interval must be positive", ErrInvalid)
	}
	if err := c.Scheduler.Thresholds.Validate(); err != nil {
		return fmt.Errorf("%w: scheduler.thresholds: %w", ErrInvalid, err)
	}
	if c.Thermostat.ReportEvery <= 0 {
		return fmt.Errorf("%w: thermostat.report_every must be positive", ErrInvalid)
	}
	if c.Thermostat.FanOffBelow >= c.Thermostat.FanOnAbove {
		return fmt.Errorf("%w: thermostat.fan_off_below (%v) must be below fan_on_above (%v)",
			ErrInvalid, c.Thermostat.FanOffBelow, c.Thermostat.FanOnAbove)
	}
	if c.Serial.BaudRate < 0 {
		return fmt.Errorf("%w: serial.baud_rate must not be negative", ErrInvalid)
	}
	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Scheduler.TickInterval == 0 {
		c.Scheduler.TickInterval = def.Scheduler.TickInterval
	}
	if c.Scheduler.Thresholds == (scheduler.Thresholds{}) {
		c.Scheduler.Thresholds = def.Scheduler.Thresholds
	}

	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}

	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Thermostat.ReportEvery == 0 {
		c.Thermostat.ReportEvery = def.Thermostat.ReportEvery
	}
	if c.Thermostat.FanOnAbove == 0 && c.Thermostat.FanOffBelow == 0 {
		c.Thermostat.FanOnAbove = def.Thermostat.FanOnAbove
		c.Thermostat.FanOffBelow = def.Thermostat.FanOffBelow
	}

	if c.Diagnostics.Schedule == "" {
		c.Diagnostics.Schedule = def.Diagnostics.Schedule
	}
	if c.Diagnostics.WarnPerSecond == 0 {
		c.Diagnostics.WarnPerSecond = def.Diagnostics.WarnPerSecond
	}

	if c.Mock.TimeConstant == 0 {
		c.Mock.TimeConstant = def.Mock.TimeConstant
	}
}
