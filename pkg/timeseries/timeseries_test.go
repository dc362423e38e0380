package timeseries

import (
	"testing"
	"time"
)

func ts(offset int) time.Time {
	return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(offset) * time.Second)
}

func TestShift(t *testing.T) {
	s := New(2)
	s.Append(ts(0), 1.0)
	s.Append(ts(60), 2.0)

	shifted := s.Shift(-30 * time.Second)

	if got, want := shifted.Times[0], ts(-30); !got.Equal(want) {
		t.Errorf("shifted time[0] = %v, want %v", got, want)
	}
	if got, want := shifted.Times[1], ts(30); !got.Equal(want) {
		t.Errorf("shifted time[1] = %v, want %v", got, want)
	}
	// Original is untouched.
	if got := s.Times[0]; !got.Equal(ts(0)) {
		t.Errorf("original mutated: time[0] = %v", got)
	}
}

func TestDropLeading(t *testing.T) {
	s := New(3)
	s.Append(ts(0), 1.0)
	s.Append(ts(1), 2.0)
	s.Append(ts(2), 3.0)

	trimmed := s.DropLeading(2)
	if trimmed.Len() != 1 || trimmed.Values[0] != 3.0 {
		t.Errorf("DropLeading(2) = %v, want single sample 3.0", trimmed)
	}

	empty := s.DropLeading(5)
	if !empty.IsEmpty() {
		t.Errorf("DropLeading(5) should be empty, got %d samples", empty.Len())
	}
}

func TestSort(t *testing.T) {
	s := New(3)
	s.Append(ts(2), 3.0)
	s.Append(ts(0), 1.0)
	s.Append(ts(1), 2.0)

	s.Sort()

	for i := 0; i < s.Len(); i++ {
		if got, want := s.Values[i], float64(i+1); got != want {
			t.Errorf("values[%d] = %v, want %v", i, got, want)
		}
	}
}
