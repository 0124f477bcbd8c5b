// Package metrics exposes the published state as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sweeney/cooling-monitor/internal/logic"
	"github.com/sweeney/cooling-monitor/internal/status"
)

const namespace = "cooling_monitor"

// Driver labels for DriverError.
const (
	DriverActuator = "actuator"
	DriverDisplay  = "display"
	DriverMQTT     = "mqtt"
)

// Metrics holds the daemon's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	temperature   prometheus.Gauge
	humidity      prometheus.Gauge
	actuatorOn    prometheus.Gauge
	actuatorOnSec prometheus.Gauge
	stats         *prometheus.GaugeVec
	ticks         prometheus.Counter
	readings      *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	driverErrors  *prometheus.CounterVec
	mqttConnected prometheus.Gauge
}

// New creates and registers all collectors, plus the Go runtime and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "temperature_celsius",
			Help:      "Last valid temperature reading",
		}),
		humidity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "humidity_percent",
			Help:      "Last valid relative humidity reading",
		}),
		actuatorOn: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "actuator_on",
			Help:      "1 while the cooling MOSFET is driven on",
		}),
		actuatorOnSec: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "actuator_on_seconds",
			Help:      "Seconds since the actuator last switched on, 0 when off",
		}),
		stats: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "temperature_window_celsius",
			Help:      "Aggregate over the rolling temperature window",
		}, []string{"stat"}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Control loop ticks",
		}),
		readings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sensor_readings_total",
			Help:      "Sensor reads by outcome",
		}, []string{"status"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actuator_transitions_total",
			Help:      "Actuator edges by event",
		}, []string{"event"}),
		driverErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "driver_errors_total",
			Help:      "Failed calls to output drivers",
		}, []string{"driver"}),
		mqttConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mqtt_connected",
			Help:      "1 while the MQTT client has an open broker connection",
		}),
	}

	m.registry.MustRegister(
		m.temperature,
		m.humidity,
		m.actuatorOn,
		m.actuatorOnSec,
		m.stats,
		m.ticks,
		m.readings,
		m.transitions,
		m.driverErrors,
		m.mqttConnected,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Observe records a published snapshot. Absent sensor values leave the
// gauges at their last valid value.
func (m *Metrics) Observe(snap status.Snapshot) {
	m.ticks.Inc()
	if snap.Temperature.Valid {
		m.temperature.Set(snap.Temperature.V)
	}
	if snap.Humidity.Valid {
		m.humidity.Set(snap.Humidity.V)
	}
	if snap.Actuator.On {
		m.actuatorOn.Set(1)
	} else {
		m.actuatorOn.Set(0)
	}
	m.actuatorOnSec.Set(float64(snap.Actuator.OnSeconds()))

	setStat(m.stats, "max", snap.Stats.Max)
	setStat(m.stats, "min", snap.Stats.Min)
	setStat(m.stats, "avg", snap.Stats.Avg)
}

func setStat(g *prometheus.GaugeVec, name string, v logic.Value) {
	if v.Valid {
		g.WithLabelValues(name).Set(v.V)
	}
}

// Reading counts one sensor read by outcome.
func (m *Metrics) Reading(s logic.ReadingStatus) {
	m.readings.WithLabelValues(string(s)).Inc()
}

// Transition counts one actuator edge.
func (m *Metrics) Transition(e logic.EventType) {
	m.transitions.WithLabelValues(string(e)).Inc()
}

// DriverError counts a failed driver call.
func (m *Metrics) DriverError(driver string) {
	m.driverErrors.WithLabelValues(driver).Inc()
}

// MQTTConnected records the broker connection state.
func (m *Metrics) MQTTConnected(connected bool) {
	if connected {
		m.mqttConnected.Set(1)
		return
	}
	m.mqttConnected.Set(0)
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
