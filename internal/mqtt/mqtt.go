// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/sweeney/cooling-monitor/internal/logic"
	"github.com/sweeney/cooling-monitor/internal/status"
)

// Topics.
const (
	TopicTelemetry = "climate/cooler/telemetry"
	TopicEvents    = "climate/cooler/events"
	TopicSystem    = "climate/cooler/system"
)

// ErrNotConnected is returned for telemetry published while the broker is
// unreachable. Telemetry is superseded every tick so it is not buffered.
var ErrNotConnected = errors.New("mqtt: not connected")

// Publisher publishes daemon state to MQTT.
type Publisher interface {
	// PublishTelemetry sends the snapshot as retained telemetry.
	PublishTelemetry(snap status.Snapshot) error

	// PublishEvent sends an actuator transition.
	PublishEvent(event logic.Event) error

	// PublishSystem sends a system lifecycle event.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (startup, shutdown).
type SystemEvent struct {
	Timestamp time.Time
	Event     string // e.g., "STARTUP", "SHUTDOWN"
	Reason    string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	Threshold float64
}

// EventPayload is the MQTT payload for actuator transitions.
type EventPayload struct {
	Cooler CoolerPayload `json:"cooler"`
}

// CoolerPayload contains the transition details.
type CoolerPayload struct {
	Timestamp   string      `json:"timestamp"`
	Event       string      `json:"event"`
	Temperature logic.Value `json:"temperature"`
}

// FormatEventPayload creates the JSON payload for an actuator transition.
func FormatEventPayload(event logic.Event) ([]byte, error) {
	return json.Marshal(EventPayload{
		Cooler: CoolerPayload{
			Timestamp:   event.Timestamp.UTC().Format(time.RFC3339),
			Event:       string(event.Type),
			Temperature: event.Temperature,
		},
	})
}

// SystemPayload is the MQTT payload for system events.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string   `json:"timestamp,omitempty"`
	Event     string   `json:"event"`
	Reason    string   `json:"reason,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// Threshold is included for STARTUP only.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	inner := SystemPayloadInner{
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
		Event:     event.Event,
		Reason:    event.Reason,
	}
	if event.Event == "STARTUP" {
		th := event.Threshold
		inner.Threshold = &th
	}
	return json.Marshal(SystemPayload{System: inner})
}

// willPayload is the Last Will published by the broker if the daemon drops
// off without a clean disconnect.
func willPayload() []byte {
	data, _ := json.Marshal(SystemPayload{System: SystemPayloadInner{Event: "OFFLINE"}})
	return data
}

// Discard is a Publisher that drops everything; used when MQTT is disabled.
type Discard struct{}

func (Discard) PublishTelemetry(status.Snapshot) error { return nil }
func (Discard) PublishEvent(logic.Event) error         { return nil }
func (Discard) PublishSystem(SystemEvent) error        { return nil }
func (Discard) Close() error                           { return nil }
