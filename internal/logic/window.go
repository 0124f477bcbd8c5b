package logic

// DefaultHistorySize is the number of temperatures kept for statistics.
const DefaultHistorySize = 100

// Window is a fixed-capacity FIFO of recent temperatures.
// Not safe for concurrent use; owned by the control loop.
type Window struct {
	buf      []float64
	capacity int
	head     int // next write position
	count    int
}

// NewWindow creates a Window holding at most capacity values.
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{
		buf:      make([]float64, capacity),
		capacity: capacity,
	}
}

// Push appends v, evicting the oldest value when full, and returns the
// statistics over the resulting contents.
func (w *Window) Push(v float64) Stats {
	// When full, head already points at the oldest value.
	w.buf[w.head] = v
	w.head = (w.head + 1) % w.capacity
	if w.count < w.capacity {
		w.count++
	}
	return w.Stats()
}

// Stats computes max, min and the mean rounded to one decimal.
func (w *Window) Stats() Stats {
	if w.count == 0 {
		return Stats{}
	}

	start := w.start()
	first := w.buf[start]
	lo, hi, sum := first, first, 0.0
	for i := 0; i < w.count; i++ {
		v := w.buf[(start+i)%w.capacity]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
		sum += v
	}

	// For readings on the sensor's 0.1 grid the rounded mean stays within
	// [lo, hi].
	return Stats{
		Max: Some(hi),
		Min: Some(lo),
		Avg: Some(round1(sum / float64(w.count))),
	}
}

// Values returns a copy of the window contents, oldest first.
func (w *Window) Values() []float64 {
	if w.count == 0 {
		return nil
	}
	out := make([]float64, w.count)
	start := w.start()
	for i := 0; i < w.count; i++ {
		out[i] = w.buf[(start+i)%w.capacity]
	}
	return out
}

// Len returns the number of values held.
func (w *Window) Len() int {
	return w.count
}

// Cap returns the window capacity.
func (w *Window) Cap() int {
	return w.capacity
}

// Oldest value sits at (head - count) mod capacity.
func (w *Window) start() int {
	return (w.head - w.count + w.capacity) % w.capacity
}
