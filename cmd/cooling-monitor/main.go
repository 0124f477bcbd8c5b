// Command cooling-monitor reads a DHT22, switches a cooling fan above a
// temperature threshold and serves the current state over HTTP and MQTT.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sweeney/cooling-monitor/internal/config"
	"github.com/sweeney/cooling-monitor/internal/control"
	"github.com/sweeney/cooling-monitor/internal/gpio"
	"github.com/sweeney/cooling-monitor/internal/lcd"
	"github.com/sweeney/cooling-monitor/internal/logic"
	"github.com/sweeney/cooling-monitor/internal/metrics"
	"github.com/sweeney/cooling-monitor/internal/mqtt"
	"github.com/sweeney/cooling-monitor/internal/sensor"
	"github.com/sweeney/cooling-monitor/internal/status"
	"github.com/sweeney/cooling-monitor/internal/web"
)

func main() {
	cfg, opts, err := config.Parse(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "cooling-monitor: %v\n", err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cooling-monitor: init logger: %v\n", err)
		os.Exit(2)
	}
	defer logger.Sync()

	if opts.ReadOnce {
		if err := readOnce(cfg, os.Stdout); err != nil {
			logger.Fatal("read failed", zap.Error(err))
		}
		return
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("fatal", zap.Error(err))
	}
}

// newLogger builds a production JSON logger, or a development console
// logger when format is "console".
func newLogger(lc config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	if lc.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func readOnce(cfg config.Config, w io.Writer) error {
	reader, err := sensor.NewIIOReader(cfg.Sensor.Device)
	if err != nil {
		return fmt.Errorf("init sensor: %w", err)
	}
	defer reader.Close()

	temp, hum, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read sensor: %w", err)
	}
	fmt.Fprintln(w, formatReading(temp, hum))
	return nil
}

func formatReading(temp, hum logic.Value) string {
	return fmt.Sprintf("Temperature: %s°C, Humidity: %s%%", valueString(temp), valueString(hum))
}

func valueString(v logic.Value) string {
	if !v.Valid {
		return "--"
	}
	return fmt.Sprintf("%.1f", v.V)
}

func run(cfg config.Config, logger *zap.Logger) error {
	reader, err := sensor.NewIIOReader(cfg.Sensor.Device)
	if err != nil {
		return fmt.Errorf("init sensor: %w", err)
	}
	defer reader.Close()

	output, err := gpio.NewRealOutput(cfg.Actuator.Chip, cfg.Actuator.Pin)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer func() {
		if err := output.Close(); err != nil {
			logger.Warn("gpio close failed", zap.Error(err))
		}
	}()

	display := openDisplay(cfg.LCD, logger)
	if display != nil {
		defer display.Close()
	}

	publisher := newPublisher(cfg.MQTT, logger)
	defer publisher.Close()

	m := metrics.New()
	store := status.NewStore()

	if cfg.HTTP != "" {
		srv := web.New(cfg.HTTP, store, m.Handler(), logger)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", zap.Error(err))
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
		logger.Info("http status server listening", zap.String("addr", cfg.HTTP))
	}

	publishSystem(publisher, logger, mqtt.SystemEvent{
		Timestamp: time.Now(),
		Event:     "STARTUP",
		Threshold: cfg.Threshold,
	})

	loop := control.New(control.Config{
		Interval:    cfg.Interval,
		Threshold:   cfg.Threshold,
		HistorySize: cfg.HistorySize,
	}, control.Deps{
		Sensor:    reader,
		Actuator:  output,
		Display:   display,
		Store:     store,
		Publisher: publisher,
		Metrics:   m,
		Logger:    logger,
	})

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)
	stop := cancelOnSignal(cancel, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := loop.Run(ctx); err != nil {
		return err
	}

	reason := signalName(context.Cause(ctx))
	logger.Info("shutting down", zap.String("reason", reason))
	publishSystem(publisher, logger, mqtt.SystemEvent{
		Timestamp: time.Now(),
		Event:     "SHUTDOWN",
		Reason:    reason,
	})
	return nil
}

// openDisplay returns nil when the LCD is disabled or cannot be opened; the
// daemon runs headless in that case.
func openDisplay(lc config.LCDConfig, logger *zap.Logger) lcd.Display {
	if !lc.Enabled {
		return nil
	}
	d, err := lcd.OpenI2C(lc.Bus, lc.Address)
	if err != nil {
		logger.Warn("lcd unavailable, continuing without display",
			zap.String("bus", lc.Bus), zap.Int("address", lc.Address), zap.Error(err))
		return nil
	}
	return d
}

func newPublisher(mc config.MQTTConfig, logger *zap.Logger) mqtt.Publisher {
	if mc.Broker == "" {
		logger.Info("mqtt disabled")
		return mqtt.Discard{}
	}
	return mqtt.NewRealPublisher(mc.Broker, mc.ClientID, logger)
}

func publishSystem(p mqtt.Publisher, logger *zap.Logger, event mqtt.SystemEvent) {
	if err := p.PublishSystem(event); err != nil {
		logger.Warn("failed to publish system event", zap.String("event", event.Event), zap.Error(err))
		return
	}
	logger.Info("published system event", zap.String("event", event.Event))
}

// signalError carries the received signal as a context cancellation cause.
type signalError struct {
	sig os.Signal
}

func (e signalError) Error() string {
	return "received " + e.sig.String()
}

// cancelOnSignal cancels with a signalError when one of sigs arrives.
// The returned func stops signal delivery.
func cancelOnSignal(cancel context.CancelCauseFunc, sigs ...os.Signal) func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	done := make(chan struct{})
	go func() {
		select {
		case s := <-ch:
			cancel(signalError{sig: s})
		case <-done:
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}

// signalName maps a cancellation cause to the SHUTDOWN reason.
func signalName(cause error) string {
	var se signalError
	if !errors.As(cause, &se) {
		return "UNKNOWN"
	}
	switch se.sig {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
