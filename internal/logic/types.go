// Package logic contains pure business logic for the cooling monitor.
// This package has NO external dependencies (no GPIO, I2C, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import (
	"encoding/json"
	"strconv"
	"time"
)

// Value is a float that may be absent, e.g. when the sensor failed this tick.
type Value struct {
	V     float64
	Valid bool
}

// Some returns a present Value.
func Some(v float64) Value {
	return Value{V: v, Valid: true}
}

// None is the absent Value.
var None = Value{}

// MarshalJSON encodes an absent value as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.V)
}

// UnmarshalJSON decodes null as an absent value.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = None
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}

// ReadingStatus tags the outcome of one sensor read.
type ReadingStatus string

const (
	ReadingOK          ReadingStatus = "OK"
	ReadingUnavailable ReadingStatus = "UNAVAILABLE" // transient, try again next tick
	ReadingFault       ReadingStatus = "FAULT"       // hardware fault reported by the driver
)

// Reading is a single timestamped sample.
// Temperature and Humidity are both absent unless Status is ReadingOK.
type Reading struct {
	Temperature Value
	Humidity    Value
	Status      ReadingStatus
	At          time.Time
}

// Stats are aggregates over the current history window.
// All fields are absent while the window is empty.
type Stats struct {
	Max Value
	Min Value
	Avg Value
}

// Summary is the human label published alongside the actuator state.
type Summary string

const (
	SummaryNormal  Summary = "Normal"
	SummaryCooling Summary = "Cooling"
)

// SummaryFor returns the label matching an actuator state.
func SummaryFor(on bool) Summary {
	if on {
		return SummaryCooling
	}
	return SummaryNormal
}

// ActuatorState is the output of the threshold controller.
// When On is false, StartedAt is zero and OnDuration is 0.
type ActuatorState struct {
	On         bool
	StartedAt  time.Time
	OnDuration time.Duration
}

// OnSeconds returns the whole seconds the actuator has been on.
func (s ActuatorState) OnSeconds() int64 {
	return int64(s.OnDuration / time.Second)
}

// EventType represents an actuator transition.
type EventType string

const (
	EventCoolingOn  EventType = "COOLING_ON"
	EventCoolingOff EventType = "COOLING_OFF"
)

// Event is an actuator edge to be published.
type Event struct {
	Timestamp   time.Time
	Type        EventType
	Temperature Value
}

// round1 rounds the exact binary value of f to one decimal place, ties to
// even, and returns the float64 nearest that decimal.
func round1(f float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(f, 'f', 1, 64), 64)
	return r
}
