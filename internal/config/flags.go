package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Options are command-line switches that are not part of Config.
type Options struct {
	ConfigPath string
	ReadOnce   bool
}

// bindFlags registers every Config field on fs. Flag defaults are the
// current values in c, so binding never clobbers them.
func bindFlags(fs *pflag.FlagSet, c *Config) {
	fs.DurationVar(&c.Interval, "interval", c.Interval, "Control loop period")
	fs.Float64Var(&c.Threshold, "threshold", c.Threshold, "Temperature (°C) above which cooling switches on")
	fs.IntVar(&c.HistorySize, "history", c.HistorySize, "Number of temperatures kept for max/min/avg")
	fs.StringVar(&c.HTTP, "http", c.HTTP, "HTTP status address (empty to disable)")
	fs.StringVar(&c.Sensor.Device, "sensor", c.Sensor.Device, "IIO device directory of the DHT22")
	fs.StringVar(&c.Actuator.Chip, "gpio-chip", c.Actuator.Chip, "GPIO chip of the MOSFET gate")
	fs.IntVar(&c.Actuator.Pin, "pin", c.Actuator.Pin, "BCM pin number of the MOSFET gate")
	fs.BoolVar(&c.LCD.Enabled, "lcd", c.LCD.Enabled, "Drive the I2C character LCD")
	fs.StringVar(&c.LCD.Bus, "lcd-bus", c.LCD.Bus, "I2C adapter of the LCD")
	fs.IntVar(&c.LCD.Address, "lcd-addr", c.LCD.Address, "I2C address of the LCD backpack")
	fs.StringVar(&c.MQTT.Broker, "broker", c.MQTT.Broker, "MQTT broker address (empty to disable)")
	fs.StringVar(&c.MQTT.ClientID, "client-id", c.MQTT.ClientID, "MQTT client ID")
	fs.StringVar(&c.Log.Level, "log-level", c.Log.Level, "Log level: debug, info, warn, error")
	fs.StringVar(&c.Log.Format, "log-format", c.Log.Format, "Log format: json or console")
}

// Parse resolves the configuration from args (without the program name).
// Returns pflag.ErrHelp when -h/--help was given.
func Parse(args []string) (Config, Options, error) {
	var opts Options
	cfg := Default()

	fs := pflag.NewFlagSet("cooling-monitor", pflag.ContinueOnError)
	fs.StringVarP(&opts.ConfigPath, "config", "c", "", "YAML config file")
	fs.BoolVar(&opts.ReadOnce, "read-once", false, "Read the sensor once, print it and exit")
	bindFlags(fs, &cfg)

	if err := fs.Parse(args); err != nil {
		return Config{}, opts, err
	}

	if opts.ConfigPath != "" {
		fileCfg, err := Load(opts.ConfigPath)
		if err != nil {
			return Config{}, opts, err
		}

		// Replay explicitly set flags over the file.
		over := pflag.NewFlagSet("override", pflag.ContinueOnError)
		bindFlags(over, &fileCfg)
		var setErr error
		fs.Visit(func(f *pflag.Flag) {
			if over.Lookup(f.Name) == nil || setErr != nil {
				return
			}
			if err := over.Set(f.Name, f.Value.String()); err != nil {
				setErr = fmt.Errorf("flag --%s: %w", f.Name, err)
			}
		})
		if setErr != nil {
			return Config{}, opts, setErr
		}
		cfg = fileCfg
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, opts, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, opts, nil
}
