package logic

import "time"

// DefaultThreshold is the temperature above which cooling switches on.
const DefaultThreshold = 20.0

// Controller is a two-state (OFF/ON) threshold machine.
// It only computes state; the caller drives the physical output.
type Controller struct {
	threshold float64
	state     ActuatorState
}

// NewController creates a Controller in the OFF state.
func NewController(threshold float64) *Controller {
	return &Controller{threshold: threshold}
}

// Threshold returns the switching temperature.
func (c *Controller) Threshold() float64 {
	return c.threshold
}

// Evaluate applies the threshold policy to temp at time now.
// StartedAt is captured only on the OFF->ON edge. An absent temperature or
// one at or below the threshold switches OFF.
func (c *Controller) Evaluate(temp Value, now time.Time) ActuatorState {
	if !temp.Valid || temp.V <= c.threshold {
		c.state = ActuatorState{}
		return c.state
	}

	if !c.state.On {
		c.state = ActuatorState{On: true, StartedAt: now}
		return c.state
	}

	// Clock stepped backwards: hold the previous duration.
	if d := now.Sub(c.state.StartedAt); d > c.state.OnDuration {
		c.state.OnDuration = d
	}
	return c.state
}

// State returns the most recently evaluated state.
func (c *Controller) State() ActuatorState {
	return c.state
}

// Transition reports the event for an edge between prev and next, if any.
func Transition(prev, next ActuatorState) (EventType, bool) {
	switch {
	case !prev.On && next.On:
		return EventCoolingOn, true
	case prev.On && !next.On:
		return EventCoolingOff, true
	}
	return "", false
}
