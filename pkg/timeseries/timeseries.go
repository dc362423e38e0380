// Package timeseries provides a minimal ordered timestamp-to-value series
// used by the analysis and report packages.
package timeseries

import (
	"sort"
	"time"
)

// Series is an ordered mapping from timestamp to float64 value. Times and
// Values are parallel slices; Times is expected to be ascending.
type Series struct {
	Times  []time.Time
	Values []float64
}

// New returns an empty series with capacity n.
func New(n int) Series {
	return Series{
		Times:  make([]time.Time, 0, n),
		Values: make([]float64, 0, n),
	}
}

// Len returns the number of samples.
func (s Series) Len() int {
	return len(s.Times)
}

// IsEmpty reports whether the series holds no samples.
func (s Series) IsEmpty() bool {
	return len(s.Times) == 0
}

// Append adds a sample to the end of the series.
func (s *Series) Append(t time.Time, v float64) {
	s.Times = append(s.Times, t)
	s.Values = append(s.Values, v)
}

// Last returns the newest sample. Must not be called on an empty series.
func (s Series) Last() (time.Time, float64) {
	return s.Times[len(s.Times)-1], s.Values[len(s.Values)-1]
}

// Shift moves every timestamp by d and returns the shifted series. The
// receiver is not modified.
func (s Series) Shift(d time.Duration) Series {
	out := New(s.Len())
	for i, t := range s.Times {
		out.Append(t.Add(d), s.Values[i])
	}
	return out
}

// DropLeading returns the series without its first n samples. If the series
// has n samples or fewer the result is empty.
func (s Series) DropLeading(n int) Series {
	if n >= s.Len() {
		return Series{}
	}
	return Series{
		Times:  s.Times[n:],
		Values: s.Values[n:],
	}
}

// Sort orders the samples by timestamp, oldest first.
func (s Series) Sort() {
	sort.Sort(byTime(s))
}

type byTime Series

func (s byTime) Len() int           { return len(s.Times) }
func (s byTime) Less(i, j int) bool { return s.Times[i].Before(s.Times[j]) }
func (s byTime) Swap(i, j int) {
	s.Times[i], s.Times[j] = s.Times[j], s.Times[i]
	s.Values[i], s.Values[j] = s.Values[j], s.Values[i]
}
