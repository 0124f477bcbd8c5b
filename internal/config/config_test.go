package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Interval != 2*time.Second {
		t.Errorf("Interval: got %v, want 2s", cfg.Interval)
	}
	if cfg.Threshold != 20.0 {
		t.Errorf("Threshold: got %v, want 20", cfg.Threshold)
	}
	if cfg.HistorySize != 100 {
		t.Errorf("HistorySize: got %d, want 100", cfg.HistorySize)
	}
	if cfg.LCD.Address != 0x27 {
		t.Errorf("LCD.Address: got %#x, want 0x27", cfg.LCD.Address)
	}
	if cfg.MQTT.Broker != "" {
		t.Errorf("expected MQTT disabled by default, got %q", cfg.MQTT.Broker)
	}
}

func TestParseNoArgs(t *testing.T) {
	cfg, opts, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg != Default() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
	if opts.ReadOnce || opts.ConfigPath != "" {
		t.Errorf("unexpected options: %+v", opts)
	}
}

func TestParseFlags(t *testing.T) {
	cfg, opts, err := Parse([]string{
		"--interval", "5s",
		"--threshold", "24.5",
		"--pin", "17",
		"--lcd-addr", "0x3f",
		"--lcd=false",
		"--broker", "tcp://10.0.0.2:1883",
		"--read-once",
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Interval != 5*time.Second {
		t.Errorf("Interval: got %v", cfg.Interval)
	}
	if cfg.Threshold != 24.5 {
		t.Errorf("Threshold: got %v", cfg.Threshold)
	}
	if cfg.Actuator.Pin != 17 {
		t.Errorf("Pin: got %d", cfg.Actuator.Pin)
	}
	if cfg.LCD.Address != 0x3f {
		t.Errorf("LCD.Address: got %#x", cfg.LCD.Address)
	}
	if cfg.LCD.Enabled {
		t.Error("expected LCD disabled")
	}
	if cfg.MQTT.Broker != "tcp://10.0.0.2:1883" {
		t.Errorf("Broker: got %q", cfg.MQTT.Broker)
	}
	if !opts.ReadOnce {
		t.Error("expected ReadOnce")
	}
}

func TestParseHelp(t *testing.T) {
	_, _, err := Parse([]string{"--help"})
	if !errors.Is(err, pflag.ErrHelp) {
		t.Errorf("expected ErrHelp, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
interval: 3s
threshold: 22
history_size: 50
sensor:
  device: /tmp/iio
actuator:
  pin: 18
mqtt:
  broker: tcp://broker:1883
log:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Interval != 3*time.Second {
		t.Errorf("Interval: got %v", cfg.Interval)
	}
	if cfg.Threshold != 22 {
		t.Errorf("Threshold: got %v", cfg.Threshold)
	}
	if cfg.HistorySize != 50 {
		t.Errorf("HistorySize: got %d", cfg.HistorySize)
	}
	if cfg.Sensor.Device != "/tmp/iio" {
		t.Errorf("Sensor.Device: got %q", cfg.Sensor.Device)
	}
	if cfg.Actuator.Pin != 18 {
		t.Errorf("Actuator.Pin: got %d", cfg.Actuator.Pin)
	}
	// Unset keys keep their defaults
	if cfg.Actuator.Chip != "gpiochip0" {
		t.Errorf("Actuator.Chip: got %q, want default", cfg.Actuator.Chip)
	}
	if cfg.HTTP != ":5000" {
		t.Errorf("HTTP: got %q, want default", cfg.HTTP)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level: got %q", cfg.Log.Level)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeFile(t, ""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("expected defaults for empty file, got %+v", cfg)
	}
}

func TestLoadUnknownKey(t *testing.T) {
	_, err := Load(writeFile(t, "treshold: 22\n"))
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestFlagsOverrideFile(t *testing.T) {
	path := writeFile(t, "threshold: 22\ninterval: 3s\nhttp: ':8080'\n")

	cfg, opts, err := Parse([]string{"--config", path, "--threshold", "25"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if opts.ConfigPath != path {
		t.Errorf("ConfigPath: got %q", opts.ConfigPath)
	}
	if cfg.Threshold != 25 {
		t.Errorf("Threshold: got %v, want flag value 25", cfg.Threshold)
	}
	if cfg.Interval != 3*time.Second {
		t.Errorf("Interval: got %v, want file value 3s", cfg.Interval)
	}
	if cfg.HTTP != ":8080" {
		t.Errorf("HTTP: got %q, want file value", cfg.HTTP)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero interval", func(c *Config) { c.Interval = 0 }, "interval"},
		{"zero history", func(c *Config) { c.HistorySize = 0 }, "history_size"},
		{"empty sensor", func(c *Config) { c.Sensor.Device = "" }, "sensor.device"},
		{"empty chip", func(c *Config) { c.Actuator.Chip = "" }, "actuator.chip"},
		{"negative pin", func(c *Config) { c.Actuator.Pin = -1 }, "actuator.pin"},
		{"bad lcd address", func(c *Config) { c.LCD.Address = 0x80 }, "lcd.address"},
		{"empty lcd bus", func(c *Config) { c.LCD.Bus = "" }, "lcd.bus"},
		{"broker without client id", func(c *Config) { c.MQTT.Broker = "tcp://x:1883"; c.MQTT.ClientID = "" }, "client_id"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestValidateLCDDisabledIgnoresAddress(t *testing.T) {
	cfg := Default()
	cfg.LCD.Enabled = false
	cfg.LCD.Address = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParseInvalid(t *testing.T) {
	if _, _, err := Parse([]string{"--interval", "-1s"}); err == nil {
		t.Error("expected error for negative interval")
	}
	if _, _, err := Parse([]string{"--bogus"}); err == nil {
		t.Error("expected error for unknown flag")
	}
}
