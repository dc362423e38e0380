// Package analysis implements the time-windowed statistics behind the
// report: rolling event rates, duration trends and the stability ratio.
package analysis

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"cistat/pkg/timeseries"
)

// BinWidth is the resolution events are downsampled to before windowing.
const BinWidth = time.Hour

// RateOptions controls gap handling in RollingEventRate.
type RateOptions struct {
	// UpsampleWithZeros fills temporal gaps between bins with explicit
	// zero-count samples, so windows covering quiet periods read as a low
	// rate instead of "no data".
	UpsampleWithZeros bool

	// UpsampleUntil optionally extends the zero-upsampled series with a
	// synthetic zero-count sample at this reference timestamp, and
	// forward-fills the final rate value up through it. It must not predate
	// the latest observed event.
	UpsampleUntil time.Time
}

// RollingEventRate converts an irregular stream of event timestamps into a
// smoothed events-per-day series over a backward-looking rolling window:
//
//  1. aggregate events into one count per distinct timestamp;
//  2. downsample into one-hour bins (gaps remain);
//  3. optionally zero-upsample gaps, anchored at UpsampleUntil;
//  4. rolling sum over the window width, normalized to events per day;
//  5. re-center by half the window width (the naive sum is right-aligned,
//     centering makes series of different window widths comparable);
//  6. drop the leading samples for which the window had not yet filled (they
//     are systematically biased low);
//  7. optionally forward-fill the last value up through UpsampleUntil;
//  8. shift the index by one second so samples never land exactly on round
//     bin boundaries (avoids axis-alignment ambiguities across subplots).
func RollingEventRate(events []time.Time, windowWidth time.Duration, opts RateOptions) (timeseries.Series, error) {
	if len(events) == 0 {
		return timeseries.Series{}, errors.New("rolling event rate: no events")
	}
	if windowWidth <= 0 {
		return timeseries.Series{}, fmt.Errorf("rolling event rate: non-positive window width %s", windowWidth)
	}
	logrus.Infof("calculate event rate over rolling window (width: %.0f s)", windowWidth.Seconds())

	sorted := make([]time.Time, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })
	latest := sorted[len(sorted)-1]

	// Sum event counts per bin. Aggregation per distinct timestamp is
	// subsumed: multiple events in one second land in one bin anyway.
	bins := map[time.Time]float64{}
	for _, t := range sorted {
		bins[t.Truncate(BinWidth)]++
	}

	upsampleUntil := opts.UpsampleUntil
	if opts.UpsampleWithZeros && !upsampleUntil.IsZero() {
		if upsampleUntil.Before(latest) {
			return timeseries.Series{}, &ContractError{
				Msg: fmt.Sprintf("rolling event rate: reference end timestamp %s predates latest observed sample %s",
					upsampleUntil.Format(time.RFC3339), latest.Format(time.RFC3339)),
			}
		}
		if upsampleUntil.After(latest) {
			// Synthetic zero-count sample at the reference timestamp.
			bin := upsampleUntil.Truncate(BinWidth)
			if _, ok := bins[bin]; !ok {
				bins[bin] = 0
			}
		}
	}

	counts := binSeries(bins, opts.UpsampleWithZeros)

	// Backward-looking rolling sum over (t - windowWidth, t], at least one
	// sample per window (the sample itself), normalized to events per day.
	rates := timeseries.New(counts.Len())
	sum := 0.0
	j := 0
	for i := 0; i < counts.Len(); i++ {
		sum += counts.Values[i]
		leftBound := counts.Times[i].Add(-windowWidth)
		for !counts.Times[j].After(leftBound) {
			sum -= counts.Values[j]
			j++
		}
		rates.Append(counts.Times[i], 86400*sum/windowWidth.Seconds())
	}

	// The naive rolling value is assigned to the newest timestamp in the
	// window; shift to (approximately) the temporal window center.
	rates = rates.Shift(-windowWidth / 2)

	// The leftmost samples cover windows not yet fully overlapping the data.
	rates = rates.DropLeading(int(windowWidth / BinWidth))

	if opts.UpsampleWithZeros && !upsampleUntil.IsZero() && !rates.IsEmpty() {
		rates = forwardFill(rates, upsampleUntil)
	}

	return rates.Shift(time.Second), nil
}

// binSeries flattens the bin map into an ordered series. With upsampling the
// series covers the full bin grid between the first and last bin, zeros where
// no events fell; without it, gaps remain.
func binSeries(bins map[time.Time]float64, upsample bool) timeseries.Series {
	keys := make([]time.Time, 0, len(bins))
	for t := range bins {
		keys = append(keys, t)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	out := timeseries.New(len(keys))
	if !upsample {
		for _, t := range keys {
			out.Append(t, bins[t])
		}
		return out
	}

	last := keys[len(keys)-1]
	for t := keys[0]; !t.After(last); t = t.Add(BinWidth) {
		out.Append(t, bins[t])
	}
	return out
}

// forwardFill extends the series at bin resolution with its final value, up
// to and including a sample at the reference timestamp. This represents "rate
// holds steady until the last known data point".
func forwardFill(s timeseries.Series, until time.Time) timeseries.Series {
	last, lastVal := s.Last()
	if !until.After(last) {
		return s
	}
	for t := last.Add(BinWidth); t.Before(until); t = t.Add(BinWidth) {
		s.Append(t, lastVal)
	}
	s.Append(until, lastVal)
	return s
}
