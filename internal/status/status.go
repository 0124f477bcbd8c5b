// Package status holds the current published state of the cooling monitor.
// It is written by the control loop and read by HTTP handlers, metrics and MQTT.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/cooling-monitor/internal/logic"
)

// Snapshot is the complete state produced by one control-loop tick.
// It is a value type with no shared references, safe to use after the lock
// is released.
type Snapshot struct {
	Tick        uint64
	At          time.Time
	Temperature logic.Value
	Humidity    logic.Value
	Actuator    logic.ActuatorState
	Displ       string
	Summary     logic.Summary
	Stats       logic.Stats
}

// Initial is the snapshot visible before the first tick.
func Initial() Snapshot {
	return Snapshot{Summary: logic.SummaryNormal}
}

// Consistent reports whether Summary agrees with the actuator state.
func (s Snapshot) Consistent() bool {
	return s.Summary == logic.SummaryFor(s.Actuator.On)
}

// Store holds the current snapshot behind an RWMutex.
// Publish replaces the whole value; fields are never updated in place.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewStore creates a Store holding Initial().
func NewStore() *Store {
	return &Store{snap: Initial()}
}

// Publish makes s the current snapshot for all subsequent reads.
func (st *Store) Publish(s Snapshot) {
	st.mu.Lock()
	st.snap = s
	st.mu.Unlock()
}

// Read returns a copy of the most recently published snapshot.
func (st *Store) Read() Snapshot {
	st.mu.RLock()
	s := st.snap
	st.mu.RUnlock()
	return s
}
