package gpio

import "sync"

// FakeOutput is a test double that records driven values.
type FakeOutput struct {
	mu sync.Mutex

	// History contains every value passed to Set, in order.
	History []bool

	// On is the last value set.
	On bool

	// Closed tracks if Close was called
	Closed bool

	// SetError, if set, will be returned by Set() (the value is still recorded).
	SetError error
}

// NewFakeOutput creates a FakeOutput in the off state.
func NewFakeOutput() *FakeOutput {
	return &FakeOutput{}
}

// Set records the value.
func (f *FakeOutput) Set(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.History = append(f.History, on)
	f.On = on
	return f.SetError
}

// Close drives the output off and marks it closed.
func (f *FakeOutput) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.On = false
	f.Closed = true
	return nil
}

// Snapshot returns a copy of the recorded history and current value.
func (f *FakeOutput) Snapshot() ([]bool, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.History...), f.On
}
