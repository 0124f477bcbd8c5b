package logic

import (
	"math"
	"testing"
)

func TestNewWindowEmpty(t *testing.T) {
	w := NewWindow(10)
	if w.Len() != 0 {
		t.Errorf("Len: got %d, want 0", w.Len())
	}
	if w.Cap() != 10 {
		t.Errorf("Cap: got %d, want 10", w.Cap())
	}
	if got := w.Values(); got != nil {
		t.Errorf("expected nil values, got %v", got)
	}

	s := w.Stats()
	if s.Max.Valid || s.Min.Valid || s.Avg.Valid {
		t.Errorf("expected all-absent stats for empty window, got %+v", s)
	}
}

func TestNewWindowClampsCapacity(t *testing.T) {
	w := NewWindow(0)
	if w.Cap() != 1 {
		t.Fatalf("Cap: got %d, want 1", w.Cap())
	}
	w.Push(1)
	w.Push(2)
	if got := w.Values(); len(got) != 1 || got[0] != 2 {
		t.Errorf("Values: got %v, want [2]", got)
	}
}

func TestWindowSinglePush(t *testing.T) {
	w := NewWindow(DefaultHistorySize)
	s := w.Push(21.5)

	if s.Max != Some(21.5) || s.Min != Some(21.5) || s.Avg != Some(21.5) {
		t.Errorf("stats: got %+v, want all 21.5", s)
	}
}

// Pushes [15.0, 22.0, 18.0]: avg 18.333... rounds to 18.3.
func TestWindowScenarioA(t *testing.T) {
	w := NewWindow(DefaultHistorySize)
	var s Stats
	for _, v := range []float64{15.0, 22.0, 18.0} {
		s = w.Push(v)
	}

	if s.Max != Some(22.0) {
		t.Errorf("Max: got %+v, want 22.0", s.Max)
	}
	if s.Min != Some(15.0) {
		t.Errorf("Min: got %+v, want 15.0", s.Min)
	}
	if s.Avg != Some(18.3) {
		t.Errorf("Avg: got %+v, want 18.3", s.Avg)
	}
}

// 101 pushes of 1..101 evict the 1.
func TestWindowScenarioB(t *testing.T) {
	w := NewWindow(DefaultHistorySize)
	var s Stats
	for i := 1; i <= 101; i++ {
		s = w.Push(float64(i))
	}

	if w.Len() != 100 {
		t.Fatalf("Len: got %d, want 100", w.Len())
	}
	vals := w.Values()
	for i, v := range vals {
		if v != float64(i+2) {
			t.Fatalf("Values[%d]: got %v, want %v", i, v, i+2)
		}
	}
	if s.Min != Some(2) {
		t.Errorf("Min: got %+v, want 2", s.Min)
	}
	if s.Max != Some(101) {
		t.Errorf("Max: got %+v, want 101", s.Max)
	}
	if s.Avg != Some(51.5) {
		t.Errorf("Avg: got %+v, want 51.5", s.Avg)
	}
}

func TestWindowMatchesDirectComputation(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		n        int
	}{
		{"under capacity", 10, 7},
		{"exactly capacity", 10, 10},
		{"one over", 10, 11},
		{"many wraps", 10, 57},
		{"default size", DefaultHistorySize, 250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWindow(tt.capacity)
			var all []float64
			var s Stats
			for i := 0; i < tt.n; i++ {
				// deterministic but non-monotonic sequence
				v := float64((i*37)%23*10+i%7) / 10
				all = append(all, v)
				s = w.Push(v)
			}

			keep := tt.n
			if keep > tt.capacity {
				keep = tt.capacity
			}
			want := all[len(all)-keep:]

			got := w.Values()
			if len(got) != len(want) {
				t.Fatalf("len: got %d, want %d", len(got), len(want))
			}
			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("Values[%d]: got %v, want %v", i, got[i], want[i])
				}
			}

			lo, hi, sum := want[0], want[0], 0.0
			for _, v := range want {
				lo = math.Min(lo, v)
				hi = math.Max(hi, v)
				sum += v
			}
			if s.Min != Some(lo) {
				t.Errorf("Min: got %+v, want %v", s.Min, lo)
			}
			if s.Max != Some(hi) {
				t.Errorf("Max: got %+v, want %v", s.Max, hi)
			}
			if s.Avg != Some(round1(sum/float64(len(want)))) {
				t.Errorf("Avg: got %+v, want %v", s.Avg, sum/float64(len(want)))
			}
			if s.Min.V > s.Avg.V || s.Avg.V > s.Max.V {
				t.Errorf("expected min <= avg <= max, got %+v", s)
			}
		})
	}
}

func TestWindowRepeatedPushesConverge(t *testing.T) {
	w := NewWindow(DefaultHistorySize)
	w.Push(35.0)
	w.Push(-5.0)

	var s Stats
	for i := 0; i < DefaultHistorySize; i++ {
		s = w.Push(23.4)
	}
	if s.Avg != Some(23.4) {
		t.Errorf("Avg: got %+v, want exactly 23.4", s.Avg)
	}
	if s.Min != Some(23.4) || s.Max != Some(23.4) {
		t.Errorf("expected old extremes evicted, got %+v", s)
	}
}

func TestWindowAvgRounding(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want float64
	}{
		{"tie goes to even below", []float64{18.2, 18.3}, 18.2},
		{"tie goes to even below again", []float64{20.1, 20.2}, 20.1},
		{"tie resolved by binary value", []float64{21.5, 21.6}, 21.6},
		{"finer than a tenth", []float64{0.15}, 0.1},
		{"rounds to zero", []float64{0.04}, 0},
		{"negative", []float64{-0.05}, -0.1},
		{"repeated finer values", []float64{20.04, 20.04, 20.04, 20.04}, 20.0},
		{"four readings", []float64{19.9, 20.0, 20.1, 20.3}, 20.1},
		{"accumulated error", []float64{23.4, 23.4, 23.4}, 23.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWindow(DefaultHistorySize)
			var s Stats
			for _, v := range tt.in {
				s = w.Push(v)
			}
			if s.Avg != Some(tt.want) {
				t.Errorf("Avg of %v: got %v, want %v", tt.in, s.Avg.V, tt.want)
			}
		})
	}
}

func TestWindowDeterministic(t *testing.T) {
	seq := []float64{19.2, 20.1, 20.1, 18.7, 25.3, 22.0}
	a, b := NewWindow(4), NewWindow(4)
	for _, v := range seq {
		sa, sb := a.Push(v), b.Push(v)
		if sa != sb {
			t.Fatalf("push %v: got %+v and %+v", v, sa, sb)
		}
	}
}

func TestWindowValuesIsCopy(t *testing.T) {
	w := NewWindow(3)
	w.Push(1)
	w.Push(2)

	vals := w.Values()
	vals[0] = 99

	if w.Values()[0] != 1 {
		t.Error("Values should return a copy")
	}
}
