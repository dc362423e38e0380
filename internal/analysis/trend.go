package analysis

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/sirupsen/logrus"

	"cistat/pkg/timeseries"
)

// Sample is one (timestamp, value) observation, e.g. a build's start time and
// duration. Entries without a duration carry no durational information and
// must be excluded by the caller before trend computation.
type Sample struct {
	T time.Time
	V float64
}

// RollingDuration computes the rolling mean and median of the samples over a
// backward-looking window of windowDays, keyed at the raw sample timestamps.
//
// Unlike the rate estimator there is no re-centering and no leading trim:
// trend lines are plotted against raw build time, and the under-windowed
// leading samples are tolerated for duration trends.
func RollingDuration(samples []Sample, windowDays int) (mean, median timeseries.Series) {
	window := time.Duration(windowDays) * 24 * time.Hour
	logrus.Infof("calculate rolling duration trend (window: %d days, %d samples)", windowDays, len(samples))

	sorted := make([]Sample, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].T.Before(sorted[j].T) })

	values := make([]float64, len(sorted))
	for i, s := range sorted {
		values[i] = s.V
	}

	mean = timeseries.New(len(sorted))
	median = timeseries.New(len(sorted))

	j := 0
	for i := range sorted {
		leftBound := sorted[i].T.Add(-window)
		for !sorted[j].T.After(leftBound) {
			j++
		}
		win := stats.Float64Data(values[j : i+1])

		m, err := stats.Mean(win)
		if err != nil {
			continue
		}
		md, err := stats.Median(win)
		if err != nil {
			continue
		}
		mean.Append(sorted[i].T, m)
		median.Append(sorted[i].T, md)
	}

	return mean, median
}
