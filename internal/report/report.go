package report

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"cistat/internal/analysis"
	"cistat/internal/build"
	"cistat/pkg/timeseries"
)

// Generate runs all analyses over the normalized builds and writes the
// figures and the step-key table. Individual analyses that cannot be
// computed (no data, or an estimator contract violation) are logged and
// skipped; only I/O failures abort the report.
func Generate(c *ReportContext, builds []build.Build) error {
	passed := build.FilterPassed(builds)
	logrus.Infof("builds passed: %d", len(passed))

	logrus.Info("identify the set of step keys observed across passed builds")
	counts, jobsByKey := build.TopStepKeys(passed)

	if table := build.StepKeyTable(counts, c.Opts.TopN); table != "" {
		fmt.Fprintf(c.Stdout, "\n\n%s\n", table)
	}

	if lo, hi, ok := startTimeExtent(passed); ok {
		c.SetXLimit(lo, hi)
	}

	annotation := c.Opts.Org + "/" + c.Opts.Pipeline
	var panels []panel

	// Pipeline duration trend, in hours.
	if trend, ok := durationTrend(buildDurationSamples(passed), c.Opts.DurationWindowDays,
		"pipeline duration (hours)", "pipeline start time", annotation); ok {
		if !c.Opts.MultiPlotOnly {
			if err := c.writeTrendFigures(trend, "pipeline_duration", "pipeline duration_seconds"); err != nil {
				return err
			}
		}
		panels = append(panels, panel{renderable: trend})
	}

	// Duration trends for the busiest step keys, plus explicitly requested
	// extras in the multi-panel figure.
	topKeys := build.MostCommon(counts, c.Opts.ChartTopN)
	for _, kc := range topKeys {
		trend, ok := durationTrend(jobDurationSamples(jobsByKey[kc.Key]), c.Opts.DurationWindowDays,
			"job duration (hours)", fmt.Sprintf("job start time (%s)", kc.Key), annotation)
		if !ok {
			continue
		}
		if !c.Opts.MultiPlotOnly {
			figID := "step_" + slugify(kc.Key)
			if err := c.writeTrendFigures(trend, figID, kc.Key+" duration_seconds"); err != nil {
				return err
			}
		}
	}
	for _, key := range c.Opts.ExtraStepKeys {
		trend, ok := durationTrend(jobDurationSamples(jobsByKey[key]), c.Opts.DurationWindowDays,
			"job duration (hours)", fmt.Sprintf("job start time (%s)", key), annotation)
		if !ok {
			logrus.Warnf("no duration data for requested step key %q", key)
			continue
		}
		panels = append(panels, panel{renderable: trend})
	}

	allStarts := startTimes(builds)
	passedStarts := startTimes(passed)

	if rate, ok := buildRate(allStarts, passedStarts, c.Opts.RateWindowDays, annotation); ok {
		if !c.Opts.MultiPlotOnly {
			if _, err := c.WriteFigure(rate, "build_rate", fmt.Sprintf("%s build rate", annotation), false); err != nil {
				return err
			}
		}
		panels = append(panels, panel{renderable: rate})
	}

	if stab, ok := stability(allStarts, passedStarts, c.Opts.StabilityWindowDays, annotation); ok {
		if !c.Opts.MultiPlotOnly {
			if _, err := c.WriteFigure(stab, "stability", fmt.Sprintf("%s stability", annotation), false); err != nil {
				return err
			}
		}
		panels = append(panels, panel{renderable: stab})
	}

	if len(panels) == 0 {
		logrus.Warn("no analysis produced data, skipping multi-panel figure")
		return nil
	}
	_, err := c.WriteMultiPanel(panels, "summary", fmt.Sprintf("%s summary", annotation))
	return err
}

func (c *ReportContext) writeTrendFigures(trend DurationTrend, figID, title string) error {
	if _, err := c.WriteFigure(trend, figID+"_linscale", c.Opts.Org+" "+c.Opts.Pipeline+" "+title+" linscale", false); err != nil {
		return err
	}
	if _, err := c.WriteFigure(trend, figID+"_logscale", c.Opts.Org+" "+c.Opts.Pipeline+" "+title+" logscale", true); err != nil {
		return err
	}
	return nil
}

// durationTrend computes the rolling trend for the samples; ok is false when
// there is nothing to plot.
func durationTrend(samples []analysis.Sample, windowDays int, ylabel, xlabel, annotation string) (DurationTrend, bool) {
	if len(samples) == 0 {
		return DurationTrend{}, false
	}
	mean, median := analysis.RollingDuration(samples, windowDays)
	return DurationTrend{
		Raw:        samples,
		Mean:       mean,
		Median:     median,
		WindowDays: windowDays,
		YLabel:     ylabel,
		XLabel:     xlabel,
		Annotation: annotation,
	}, true
}

func buildRate(allStarts, passedStarts []time.Time, windowDays int, annotation string) (BuildRate, bool) {
	window := time.Duration(windowDays) * 24 * time.Hour
	rate := BuildRate{
		Series:     map[string]timeseries.Series{},
		WindowDays: windowDays,
		Annotation: annotation,
	}

	for descr, starts := range map[string][]time.Time{
		"all builds":    allStarts,
		"passed builds": passedStarts,
	} {
		if len(starts) == 0 {
			continue
		}
		logrus.Infof("analyze build rate: %s", descr)
		s, err := analysis.RollingEventRate(starts, window, analysis.RateOptions{})
		if err != nil {
			logAnalysisError("build rate "+descr, err)
			continue
		}
		rate.Series[descr] = s
	}

	return rate, len(rate.Series) > 0
}

func stability(allStarts, passedStarts []time.Time, windowDays int, annotation string) (Stability, bool) {
	if len(allStarts) == 0 || len(passedStarts) == 0 {
		return Stability{}, false
	}
	s, err := analysis.StabilityRatio(allStarts, passedStarts, windowDays)
	if err != nil {
		logAnalysisError("stability ratio", err)
		return Stability{}, false
	}
	if s.IsEmpty() {
		return Stability{}, false
	}
	return Stability{Series: s, WindowDays: windowDays, Annotation: annotation}, true
}

// logAnalysisError distinguishes contract violations (a bug in how the
// estimator was invoked) from plain missing-data conditions; both abort only
// the affected analysis.
func logAnalysisError(step string, err error) {
	if analysis.IsContractError(err) {
		logrus.WithError(err).Errorf("%s: estimator contract violated, skipping analysis", step)
		return
	}
	logrus.WithError(err).Warnf("%s: skipping analysis", step)
}

// buildDurationSamples returns (start time, duration in hours) samples for
// builds carrying both. Non-positive durations are dropped: they are upstream
// anomalies and would break the log-scale variants.
func buildDurationSamples(builds []build.Build) []analysis.Sample {
	var samples []analysis.Sample
	for _, b := range builds {
		if b.StartedAt == nil || b.DurationSeconds == nil || *b.DurationSeconds <= 0 {
			continue
		}
		samples = append(samples, analysis.Sample{T: *b.StartedAt, V: *b.DurationSeconds / 3600.0})
	}
	return samples
}

func jobDurationSamples(jobs []build.Job) []analysis.Sample {
	var samples []analysis.Sample
	for _, j := range jobs {
		if j.StartedAt == nil || j.DurationSeconds == nil || *j.DurationSeconds <= 0 {
			continue
		}
		samples = append(samples, analysis.Sample{T: *j.StartedAt, V: *j.DurationSeconds / 3600.0})
	}
	return samples
}

func startTimes(builds []build.Build) []time.Time {
	var times []time.Time
	for _, b := range builds {
		if b.StartedAt != nil {
			times = append(times, *b.StartedAt)
		}
	}
	return times
}

func startTimeExtent(builds []build.Build) (lo, hi time.Time, ok bool) {
	for _, b := range builds {
		if b.StartedAt == nil {
			continue
		}
		t := *b.StartedAt
		if !ok {
			lo, hi, ok = t, t, true
			continue
		}
		if t.Before(lo) {
			lo = t
		}
		if t.After(hi) {
			hi = t
		}
	}
	return lo, hi, ok
}
