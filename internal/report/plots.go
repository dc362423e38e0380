package report

import (
	"fmt"
	"image/color"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"cistat/internal/analysis"
	"cistat/pkg/timeseries"
)

// Renderable draws one chart onto a prepared plot surface.
type Renderable interface {
	Render(p *plot.Plot) error
}

var (
	colorMean    = color.RGBA{R: 0xe0, G: 0x5f, B: 0x4e, A: 0xff}
	colorMedian  = color.RGBA{A: 0xff}
	colorScatter = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
)

// DurationTrend plots raw durations as dots with rolling mean and median
// lines on top.
type DurationTrend struct {
	Raw          []analysis.Sample
	Mean, Median timeseries.Series
	WindowDays   int
	YLabel       string
	XLabel       string
	Annotation   string
}

func (d DurationTrend) Render(p *plot.Plot) error {
	p.X.Label.Text = d.XLabel
	p.Y.Label.Text = d.YLabel

	if len(d.Raw) > 0 {
		scatter, err := plotter.NewScatter(sampleXYs(d.Raw))
		if err != nil {
			return fmt.Errorf("raw duration scatter: %w", err)
		}
		scatter.GlyphStyle.Color = colorScatter
		scatter.GlyphStyle.Radius = vg.Points(1.2)
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(scatter)
		p.Legend.Add("individual builds", scatter)
	}

	if !d.Median.IsEmpty() {
		line, err := plotter.NewLine(seriesXYs(d.Median))
		if err != nil {
			return fmt.Errorf("median line: %w", err)
		}
		line.Color = colorMedian
		line.Width = vg.Points(1.3)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("rolling window median (%d days)", d.WindowDays), line)
	}

	if !d.Mean.IsEmpty() {
		line, err := plotter.NewLine(seriesXYs(d.Mean))
		if err != nil {
			return fmt.Errorf("mean line: %w", err)
		}
		line.Color = colorMean
		line.Width = vg.Points(1.3)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("rolling window mean (%d days)", d.WindowDays), line)
	}

	annotate(p, d.Annotation)
	return nil
}

// BuildRate plots one or more rolling build-rate series (events per day).
type BuildRate struct {
	// Series maps a legend description (e.g. "all builds") to its rate series.
	Series     map[string]timeseries.Series
	WindowDays int
	Annotation string
}

func (b BuildRate) Render(p *plot.Plot) error {
	p.X.Label.Text = "build time"
	p.Y.Label.Text = "build rate [1/d]"

	descrs := make([]string, 0, len(b.Series))
	for descr := range b.Series {
		descrs = append(descrs, descr)
	}
	sort.Strings(descrs)

	for i, descr := range descrs {
		line, err := plotter.NewLine(seriesXYs(b.Series[descr]))
		if err != nil {
			return fmt.Errorf("rate line %q: %w", descr, err)
		}
		line.Color = plotutilColor(i)
		line.Width = vg.Points(1.3)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("%s, rolling window mean (%d days)", descr, b.WindowDays), line)
	}

	annotate(p, b.Annotation)
	return nil
}

// Stability plots the passed/all rate ratio, axis fixed to [0, 1.15] so the
// nominal bound of 1 is visible.
type Stability struct {
	Series     timeseries.Series
	WindowDays int
	Annotation string
}

func (s Stability) Render(p *plot.Plot) error {
	p.X.Label.Text = "build time"
	p.Y.Label.Text = "build stability (max: 1)"
	p.Y.Min = 0
	p.Y.Max = 1.15

	line, err := plotter.NewLine(seriesXYs(s.Series))
	if err != nil {
		return fmt.Errorf("stability line: %w", err)
	}
	line.Width = vg.Points(1.3)
	p.Add(line)
	p.Legend.Add(fmt.Sprintf("rolling window mean (%d days)", s.WindowDays), line)

	annotate(p, s.Annotation)
	return nil
}

func seriesXYs(s timeseries.Series) plotter.XYs {
	xys := make(plotter.XYs, s.Len())
	for i, t := range s.Times {
		xys[i].X = float64(t.Unix())
		xys[i].Y = s.Values[i]
	}
	return xys
}

func sampleXYs(samples []analysis.Sample) plotter.XYs {
	xys := make(plotter.XYs, len(samples))
	for i, s := range samples {
		xys[i].X = float64(s.T.Unix())
		xys[i].Y = s.V
	}
	return xys
}

// annotate puts the org/pipeline context string below the plot title.
func annotate(p *plot.Plot, text string) {
	if text == "" {
		return
	}
	if p.Title.Text == "" {
		p.Title.Text = text
	} else {
		p.Title.Text += "\n" + text
	}
}

// plotutilColor cycles a small fixed palette for multi-series plots.
func plotutilColor(i int) color.Color {
	palette := []color.RGBA{
		{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
		{R: 0xe0, G: 0x5f, B: 0x4e, A: 0xff},
		{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
		{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
	}
	return palette[i%len(palette)]
}
