package lcd

import "sync"

// FakeDisplay is a test double that keeps the visible rows in memory.
type FakeDisplay struct {
	mu sync.Mutex

	// Rows holds the current text of each row.
	Rows [Rows]string

	// Writes counts WriteLine calls.
	Writes int

	// Clears counts Clear calls.
	Clears int

	// Closed tracks if Close was called
	Closed bool

	// WriteError, if set, will be returned by WriteLine().
	WriteError error
}

// NewFakeDisplay creates a blank FakeDisplay.
func NewFakeDisplay() *FakeDisplay {
	return &FakeDisplay{}
}

// WriteLine records text on row.
func (f *FakeDisplay) WriteLine(row int, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Writes++
	if row >= 0 && row < Rows {
		f.Rows[row] = text
	}
	return nil
}

// Clear blanks both rows.
func (f *FakeDisplay) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Clears++
	f.Rows = [Rows]string{}
	return nil
}

// Close marks the display as closed.
func (f *FakeDisplay) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Lines returns the current rows.
func (f *FakeDisplay) Lines() [Rows]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Rows
}
