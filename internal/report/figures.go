package report

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	figureWidth  = 10 * vg.Inch
	figureHeight = 4.2 * vg.Inch
)

var nonAlnum = regexp.MustCompile("[^a-z0-9]+")

// slugify lowercases the title and joins its alphanumeric runs with dashes,
// yielding a safe file name component.
func slugify(title string) string {
	return strings.Trim(nonAlnum.ReplaceAllString(strings.ToLower(title), "-"), "-")
}

// panel pairs a renderable with its axis scale for multi-panel figures.
type panel struct {
	renderable Renderable
	logY       bool
}

func (c *ReportContext) newPlot(logY bool) *plot.Plot {
	p := plot.New()
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	if logY {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	if c.hasXLimit() {
		p.X.Min = float64(c.XMin.Unix())
		p.X.Max = float64(c.XMax.Unix())
	}
	p.Legend.Top = true
	return p
}

// WriteFigure renders r into a single PNG figure file named after the date
// and the slugified title, records it under figID and returns the base name.
func (c *ReportContext) WriteFigure(r Renderable, figID, title string, logY bool) (string, error) {
	p := c.newPlot(logY)
	if err := r.Render(p); err != nil {
		return "", err
	}

	fname := c.Today + "_" + slugify(title) + ".png"
	fpath := filepath.Join(c.Opts.OutputDir, fname)
	logrus.Infof("writing PNG figure to %s", fpath)
	if err := p.Save(figureWidth, figureHeight, fpath); err != nil {
		return "", fmt.Errorf("saving figure %s: %w", fpath, err)
	}

	if figID != "" {
		c.FigurePaths[figID] = fname
	}
	return fname, nil
}

// WriteMultiPanel stacks the panels vertically into one combined PNG.
func (c *ReportContext) WriteMultiPanel(panels []panel, figID, title string) (string, error) {
	if len(panels) == 0 {
		return "", fmt.Errorf("multi-panel figure: no panels")
	}

	plots := make([][]*plot.Plot, len(panels))
	for i, pn := range panels {
		p := c.newPlot(pn.logY)
		if err := pn.renderable.Render(p); err != nil {
			return "", err
		}
		plots[i] = []*plot.Plot{p}
	}

	img := vgimg.New(figureWidth, figureHeight*vg.Length(len(panels)))
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: len(panels),
		Cols: 1,
		PadY: vg.Millimeter * 2,
	}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	fname := c.Today + "_" + slugify(title) + ".png"
	fpath := filepath.Join(c.Opts.OutputDir, fname)
	logrus.Infof("writing multi-panel PNG figure to %s", fpath)

	f, err := os.Create(fpath)
	if err != nil {
		return "", fmt.Errorf("creating figure file: %w", err)
	}
	defer f.Close()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return "", fmt.Errorf("writing figure %s: %w", fpath, err)
	}

	if figID != "" {
		c.FigurePaths[figID] = fname
	}
	return fname, nil
}
