// Package config loads daemon settings from defaults, an optional YAML file
// and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/sweeney/cooling-monitor/internal/gpio"
	"github.com/sweeney/cooling-monitor/internal/lcd"
	"github.com/sweeney/cooling-monitor/internal/logic"
	"github.com/sweeney/cooling-monitor/internal/sensor"
)

// Config is the full daemon configuration.
type Config struct {
	Interval    time.Duration  `yaml:"interval"`
	Threshold   float64        `yaml:"threshold"`
	HistorySize int            `yaml:"history_size"`
	HTTP        string         `yaml:"http"`
	Sensor      SensorConfig   `yaml:"sensor"`
	Actuator    ActuatorConfig `yaml:"actuator"`
	LCD         LCDConfig      `yaml:"lcd"`
	MQTT        MQTTConfig     `yaml:"mqtt"`
	Log         LogConfig      `yaml:"log"`
}

// SensorConfig selects the IIO device of the DHT22.
type SensorConfig struct {
	Device string `yaml:"device"`
}

// ActuatorConfig selects the MOSFET gate line.
type ActuatorConfig struct {
	Chip string `yaml:"chip"`
	Pin  int    `yaml:"pin"`
}

// LCDConfig selects the I2C character display.
type LCDConfig struct {
	Enabled bool   `yaml:"enabled"`
	Bus     string `yaml:"bus"`
	Address int    `yaml:"address"`
}

// MQTTConfig configures telemetry publishing. An empty Broker disables MQTT.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Interval:    2 * time.Second,
		Threshold:   logic.DefaultThreshold,
		HistorySize: logic.DefaultHistorySize,
		HTTP:        ":5000",
		Sensor:      SensorConfig{Device: sensor.DefaultDevice},
		Actuator:    ActuatorConfig{Chip: gpio.DefaultChip, Pin: gpio.DefaultPin},
		LCD:         LCDConfig{Enabled: true, Bus: lcd.DefaultBus, Address: lcd.DefaultAddress},
		MQTT:        MQTTConfig{ClientID: "cooling-monitor"},
		Log:         LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads a YAML file on top of Default(). Unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", c.Interval)
	}
	if c.HistorySize < 1 {
		return fmt.Errorf("history_size must be at least 1, got %d", c.HistorySize)
	}
	if c.Sensor.Device == "" {
		return errors.New("sensor.device must be set")
	}
	if c.Actuator.Chip == "" {
		return errors.New("actuator.chip must be set")
	}
	if c.Actuator.Pin < 0 {
		return fmt.Errorf("actuator.pin must not be negative, got %d", c.Actuator.Pin)
	}
	if c.LCD.Enabled {
		if c.LCD.Bus == "" {
			return errors.New("lcd.bus must be set when the lcd is enabled")
		}
		if c.LCD.Address < 0x03 || c.LCD.Address > 0x77 {
			return fmt.Errorf("lcd.address %#x is not a 7-bit i2c address", c.LCD.Address)
		}
	}
	if c.MQTT.Broker != "" && c.MQTT.ClientID == "" {
		return errors.New("mqtt.client_id must be set when a broker is configured")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
	return nil
}
