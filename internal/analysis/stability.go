package analysis

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"cistat/pkg/timeseries"
)

// StabilityRatio divides the rolling rate of passed builds by the rolling
// rate of all builds, approximating the fraction of builds passing within
// each window. The passed subset is zero-upsampled to its latest timestamp so
// that failure-only periods read as zero passed-rate rather than "no data".
//
// The ratio is nominally bounded in [0, ~1] but is not clamped: numerator and
// denominator are binned and windowed independently, so it may transiently
// exceed 1. That is a known approximation artifact, not a bug.
func StabilityRatio(all, passed []time.Time, windowDays int) (timeseries.Series, error) {
	if len(passed) == 0 {
		return timeseries.Series{}, fmt.Errorf("stability ratio: no passed builds")
	}
	window := time.Duration(windowDays) * 24 * time.Hour

	latestPassed := passed[0]
	for _, t := range passed[1:] {
		if t.After(latestPassed) {
			latestPassed = t
		}
	}

	passedRate, err := RollingEventRate(passed, window, RateOptions{
		UpsampleWithZeros: true,
		UpsampleUntil:     latestPassed,
	})
	if err != nil {
		return timeseries.Series{}, fmt.Errorf("stability ratio: passed-build rate: %w", err)
	}

	allRate, err := RollingEventRate(all, window, RateOptions{})
	if err != nil {
		return timeseries.Series{}, fmt.Errorf("stability ratio: all-build rate: %w", err)
	}

	return divideAligned(passedRate, allRate), nil
}

// divideAligned divides num by den pointwise on the intersection of their
// timestamps. Samples with a zero denominator are skipped.
func divideAligned(num, den timeseries.Series) timeseries.Series {
	denByTime := make(map[int64]float64, den.Len())
	for i, t := range den.Times {
		denByTime[t.UnixNano()] = den.Values[i]
	}

	out := timeseries.New(num.Len())
	skipped := 0
	for i, t := range num.Times {
		d, ok := denByTime[t.UnixNano()]
		if !ok || d == 0 {
			skipped++
			continue
		}
		out.Append(t, num.Values[i]/d)
	}
	if skipped > 0 {
		logrus.Debugf("stability ratio: skipped %d unaligned or zero-denominator samples", skipped)
	}
	return out
}
