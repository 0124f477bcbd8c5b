package sensor

import (
	"errors"
	"sync"

	"github.com/sweeney/cooling-monitor/internal/logic"
)

// FakeReader is a test double that returns scripted readings.
type FakeReader struct {
	mu sync.Mutex

	// Samples contains scripted readings to return.
	// Each call to Read() consumes the next sample.
	Samples []Sample

	// index tracks current position in Samples
	index int

	// Reads counts calls to Read.
	Reads int

	// Closed tracks if Close was called
	Closed bool
}

// Sample is a single scripted reading. If Err is set it is returned instead.
type Sample struct {
	Temperature logic.Value
	Humidity    logic.Value
	Err         error
}

// OK returns a successful sample.
func OK(temp, hum float64) Sample {
	return Sample{Temperature: logic.Some(temp), Humidity: logic.Some(hum)}
}

// Fail returns a sample whose read fails with err.
func Fail(err error) Sample {
	return Sample{Err: err}
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples ...Sample) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeReader) Read() (logic.Value, logic.Value, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Reads++
	if len(f.Samples) == 0 {
		return logic.None, logic.None, errors.New("no samples configured")
	}

	s := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	if s.Err != nil {
		return logic.None, logic.None, s.Err
	}
	return s.Temperature, s.Humidity, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}
