// Package control runs the periodic sample -> decide -> publish loop.
package control

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sweeney/cooling-monitor/internal/gpio"
	"github.com/sweeney/cooling-monitor/internal/lcd"
	"github.com/sweeney/cooling-monitor/internal/logic"
	"github.com/sweeney/cooling-monitor/internal/metrics"
	"github.com/sweeney/cooling-monitor/internal/mqtt"
	"github.com/sweeney/cooling-monitor/internal/sensor"
	"github.com/sweeney/cooling-monitor/internal/status"
)

// ShutdownMessage is shown on the LCD when the loop stops.
const ShutdownMessage = "Shutting Down..."

// Config holds loop parameters.
type Config struct {
	Interval    time.Duration
	Threshold   float64
	HistorySize int
}

// Deps are the loop's collaborators. Display, Publisher and Metrics are
// optional.
type Deps struct {
	Sensor    sensor.Reader
	Actuator  gpio.Output
	Display   lcd.Display
	Store     *status.Store
	Publisher mqtt.Publisher
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	Now       func() time.Time
}

// Loop is the single producer of status snapshots. The history window and
// controller are private to it.
type Loop struct {
	cfg  Config
	deps Deps
	log  *zap.Logger

	window     *logic.Window
	controller *logic.Controller

	tick  uint64
	stats logic.Stats
	displ string

	out      *outbox
	shutdown sync.Once
}

// New creates a Loop and starts its publishing goroutine, which Shutdown
// stops. Missing optional deps are replaced with no-ops.
func New(cfg Config, deps Deps) *Loop {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Publisher == nil {
		deps.Publisher = mqtt.Discard{}
	}
	if deps.Store == nil {
		deps.Store = status.NewStore()
	}
	if cfg.HistorySize < 1 {
		cfg.HistorySize = logic.DefaultHistorySize
	}

	return &Loop{
		cfg:        cfg,
		deps:       deps,
		log:        deps.Logger,
		window:     logic.NewWindow(cfg.HistorySize),
		controller: logic.NewController(cfg.Threshold),
		out:        newOutbox(outboxSize),
	}
}

// Store returns the snapshot store the loop publishes to.
func (l *Loop) Store() *status.Store {
	return l.deps.Store
}

// Run ticks immediately and then every Interval until ctx is cancelled,
// then runs Shutdown. It always returns nil after a cancellation.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.cfg.Interval)
	defer ticker.Stop()
	return l.run(ctx, ticker.C)
}

func (l *Loop) run(ctx context.Context, tick <-chan time.Time) error {
	l.log.Info("control loop started",
		zap.Duration("interval", l.cfg.Interval),
		zap.Float64("threshold", l.cfg.Threshold),
		zap.Int("history", l.cfg.HistorySize))

	if ctx.Err() == nil {
		l.Step(l.deps.Now())
	}
	for {
		select {
		case <-ctx.Done():
			l.log.Info("control loop stopping", zap.NamedError("cause", context.Cause(ctx)))
			l.Shutdown()
			return nil
		case <-tick:
			l.Step(l.deps.Now())
		}
	}
}

// Step performs one tick at time now and returns the published snapshot.
func (l *Loop) Step(now time.Time) status.Snapshot {
	l.tick++
	reading := l.read(now)

	if reading.Temperature.Valid {
		l.stats = l.window.Push(reading.Temperature.V)
	}

	prev := l.controller.State()
	act := l.controller.Evaluate(reading.Temperature, now)
	l.drive(act.On)
	summary := logic.SummaryFor(act.On)

	if reading.Temperature.Valid && reading.Humidity.Valid {
		l.show(logic.FormatDisplay(reading.Temperature.V, reading.Humidity.V, summary))
		l.displ = logic.DisplayText(reading.Temperature.V, reading.Humidity.V)
	}

	snap := status.Snapshot{
		Tick:        l.tick,
		At:          now,
		Temperature: reading.Temperature,
		Humidity:    reading.Humidity,
		Actuator:    act,
		Displ:       l.displ,
		Summary:     summary,
		Stats:       l.stats,
	}
	l.publish(snap)

	if ev, ok := logic.Transition(prev, act); ok {
		l.log.Info("actuator transition",
			zap.String("event", string(ev)),
			zap.Float64("temperature", reading.Temperature.V),
			zap.Bool("temperature_valid", reading.Temperature.Valid))
		if l.deps.Metrics != nil {
			l.deps.Metrics.Transition(ev)
		}
		event := logic.Event{
			Timestamp:   now,
			Type:        ev,
			Temperature: reading.Temperature,
		}
		l.send(func() {
			if err := l.deps.Publisher.PublishEvent(event); err != nil {
				l.log.Warn("publish event failed", zap.String("event", string(event.Type)), zap.Error(err))
				l.driverError(metrics.DriverMQTT)
			}
		})
	}

	return snap
}

// Flush waits until every MQTT publish queued by earlier ticks has been
// attempted. It must be called from the goroutine driving Step.
func (l *Loop) Flush() {
	l.out.flush()
}

// Shutdown drives the actuator off, blanks the display and publishes a final
// OFF snapshot. Only the first call has any effect.
func (l *Loop) Shutdown() {
	l.shutdown.Do(func() {
		l.drive(false)

		if l.deps.Display != nil {
			if err := l.deps.Display.Clear(); err != nil {
				l.log.Warn("display clear failed", zap.Error(err))
			}
			if err := l.deps.Display.WriteLine(0, logic.FitLine(ShutdownMessage)); err != nil {
				l.log.Warn("display write failed", zap.Error(err))
			}
		}

		last := l.deps.Store.Read()
		last.Actuator = logic.ActuatorState{}
		last.Summary = logic.SummaryNormal
		last.At = l.deps.Now()
		l.deps.Store.Publish(last)
		l.out.close()

		l.log.Info("control loop stopped", zap.Uint64("ticks", l.tick))
	})
}

func (l *Loop) read(now time.Time) logic.Reading {
	temp, hum, err := l.deps.Sensor.Read()
	st := sensor.Classify(err)
	if l.deps.Metrics != nil {
		l.deps.Metrics.Reading(st)
	}

	switch st {
	case logic.ReadingOK:
		return logic.Reading{Temperature: temp, Humidity: hum, Status: st, At: now}
	case logic.ReadingUnavailable:
		l.log.Warn("sensor reading unavailable", zap.Error(err))
	default:
		l.log.Error("sensor fault", zap.Error(err))
	}
	return logic.Reading{Status: st, At: now}
}

func (l *Loop) drive(on bool) {
	if err := l.deps.Actuator.Set(on); err != nil {
		l.log.Error("actuator set failed", zap.Bool("on", on), zap.Error(err))
		l.driverError(metrics.DriverActuator)
	}
}

func (l *Loop) show(d logic.Display) {
	if l.deps.Display == nil {
		return
	}
	for row, text := range d.Lines() {
		if err := l.deps.Display.WriteLine(row, text); err != nil {
			l.log.Warn("display write failed", zap.Int("row", row), zap.Error(err))
			l.driverError(metrics.DriverDisplay)
			return
		}
	}
}

func (l *Loop) publish(snap status.Snapshot) {
	l.deps.Store.Publish(snap)
	if l.deps.Metrics != nil {
		l.deps.Metrics.Observe(snap)
		if cs, ok := l.deps.Publisher.(mqtt.ConnectionStatus); ok {
			l.deps.Metrics.MQTTConnected(cs.IsConnected())
		}
	}
	l.send(func() {
		if err := l.deps.Publisher.PublishTelemetry(snap); err != nil {
			if errors.Is(err, mqtt.ErrNotConnected) {
				l.log.Debug("telemetry skipped", zap.Error(err))
				return
			}
			l.log.Warn("publish telemetry failed", zap.Error(err))
			l.driverError(metrics.DriverMQTT)
		}
	})
}

// send queues an MQTT publish. A full queue drops the message.
func (l *Loop) send(job func()) {
	if !l.out.enqueue(job) {
		l.log.Warn("mqtt publish queue full, dropping message", zap.Int("capacity", outboxSize))
		l.driverError(metrics.DriverMQTT)
	}
}

func (l *Loop) driverError(driver string) {
	if l.deps.Metrics != nil {
		l.deps.Metrics.DriverError(driver)
	}
}
