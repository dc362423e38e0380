package analysis

import (
	"math"
	"testing"
	"time"
)

func day(n int) time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestRollingDurationEmpty(t *testing.T) {
	mean, median := RollingDuration(nil, 10)
	if !mean.IsEmpty() || !median.IsEmpty() {
		t.Errorf("expected empty series for empty input, got %d/%d samples", mean.Len(), median.Len())
	}
}

func TestRollingDurationWindowing(t *testing.T) {
	// One sample per day; a 2-day backward window covers the current and the
	// previous day only.
	samples := []Sample{
		{T: day(0), V: 10},
		{T: day(1), V: 20},
		{T: day(2), V: 60},
		{T: day(3), V: 40},
	}

	mean, median := RollingDuration(samples, 2)

	wantMeans := []float64{10, 15, 40, 50}
	if mean.Len() != len(wantMeans) {
		t.Fatalf("mean has %d samples, want %d", mean.Len(), len(wantMeans))
	}
	for i, want := range wantMeans {
		if math.Abs(mean.Values[i]-want) > 1e-9 {
			t.Errorf("mean[%d] = %v, want %v", i, mean.Values[i], want)
		}
	}

	wantMedians := []float64{10, 15, 40, 50}
	for i, want := range wantMedians {
		if math.Abs(median.Values[i]-want) > 1e-9 {
			t.Errorf("median[%d] = %v, want %v", i, median.Values[i], want)
		}
	}
}

func TestRollingDurationNoRecentering(t *testing.T) {
	samples := []Sample{
		{T: day(0), V: 10},
		{T: day(1), V: 20},
	}

	mean, median := RollingDuration(samples, 10)

	// Trend series stay keyed at the raw sample timestamps: no shift, no
	// leading trim.
	for i, s := range samples {
		if !mean.Times[i].Equal(s.T) {
			t.Errorf("mean time[%d] = %v, want raw timestamp %v", i, mean.Times[i], s.T)
		}
		if !median.Times[i].Equal(s.T) {
			t.Errorf("median time[%d] = %v, want raw timestamp %v", i, median.Times[i], s.T)
		}
	}
}

func TestRollingDurationMedianRobustness(t *testing.T) {
	// An outlier dominates the mean but not the median.
	samples := []Sample{
		{T: day(0), V: 10},
		{T: day(1), V: 12},
		{T: day(2), V: 11},
		{T: day(3), V: 10000},
	}

	mean, median := RollingDuration(samples, 30)

	lastMean := mean.Values[mean.Len()-1]
	lastMedian := median.Values[median.Len()-1]
	if lastMean < 1000 {
		t.Errorf("mean = %v, expected outlier-dominated value", lastMean)
	}
	if lastMedian > 20 {
		t.Errorf("median = %v, expected outlier-robust value", lastMedian)
	}
}

func TestRollingDurationSortsInput(t *testing.T) {
	samples := []Sample{
		{T: day(2), V: 30},
		{T: day(0), V: 10},
		{T: day(1), V: 20},
	}

	mean, _ := RollingDuration(samples, 1)

	for i := 1; i < mean.Len(); i++ {
		if !mean.Times[i].After(mean.Times[i-1]) {
			t.Fatalf("output not sorted by time at %d", i)
		}
	}
	// 1-day window covers only the sample itself here.
	for i, want := range []float64{10, 20, 30} {
		if mean.Values[i] != want {
			t.Errorf("mean[%d] = %v, want %v", i, mean.Values[i], want)
		}
	}
}
