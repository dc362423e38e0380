// Package report orchestrates the analyses and renders figures and the
// step-key table for one pipeline.
package report

import (
	"io"
	"os"
	"time"
)

// Options are the parsed report settings for one run.
type Options struct {
	Org      string
	Pipeline string

	// OutputDir receives the figure files.
	OutputDir string

	// TopN is the number of rows in the step-key table; ChartTopN the number
	// of busiest step keys charted individually.
	TopN      int
	ChartTopN int

	DurationWindowDays  int
	RateWindowDays      int
	StabilityWindowDays int

	// MultiPlotOnly skips the individual figure files and writes only the
	// combined multi-panel figure.
	MultiPlotOnly bool

	// ExtraStepKeys names additional step keys to chart in the multi-panel
	// figure.
	ExtraStepKeys []string
}

// ReportContext carries the options plus the state shared across renderer
// calls: the common x-axis bounds and the figure-file registry.
type ReportContext struct {
	Opts  Options
	Today string

	// Shared x-axis limits, applied to every figure once set.
	XMin, XMax time.Time

	// FigurePaths maps figure IDs to the written file base names.
	FigurePaths map[string]string

	// Stdout receives the markdown table; defaults to os.Stdout.
	Stdout io.Writer
}

// NewContext returns a context for the given options.
func NewContext(opts Options) *ReportContext {
	return &ReportContext{
		Opts:        opts,
		Today:       time.Now().UTC().Format("2006-01-02"),
		FigurePaths: map[string]string{},
		Stdout:      os.Stdout,
	}
}

// SetXLimit sets the x-axis bounds shared by all figures.
func (c *ReportContext) SetXLimit(lower, upper time.Time) {
	c.XMin = lower
	c.XMax = upper
}

func (c *ReportContext) hasXLimit() bool {
	return !c.XMin.IsZero() && !c.XMax.IsZero()
}
