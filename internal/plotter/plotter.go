// Package plotter renders stored timeseries as PNG line charts.
package plotter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/repotally/repotally/schema"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Default chart dimensions.
const (
	plotWidth  = 8 * vg.Inch
	plotHeight = 4 * vg.Inch
)

// Plotter renders one PNG per (repo, metric) series into a directory.
type Plotter struct {
	dir string
}

// New returns a Plotter writing images under dir.
func New(dir string) *Plotter {
	return &Plotter{dir: dir}
}

// RenderYLabel substitutes the {name} placeholder in a y-label template.
func RenderYLabel(template, repoName string) string {
	return strings.ReplaceAll(template, "{name}", repoName)
}

// PlotFilePath returns the output path for a (repo, metric) chart.
func (p *Plotter) PlotFilePath(repo string, metric schema.MetricName) string {
	return filepath.Join(p.dir, fmt.Sprintf("%s_%s.png", repo, metric))
}

// Plot renders the series as a dated line chart and writes it as a PNG.
// It returns the written file path.
func (p *Plotter) Plot(ts schema.Timeseries, ylabel string) (string, error) {
	if ts.IsEmpty() {
		return "", fmt.Errorf("no points to plot for %s/%s", ts.Repo, ts.Metric)
	}

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create plots directory %s: %w", p.dir, err)
	}

	chart := plot.New()
	chart.Title.Text = ts.Repo
	chart.X.Label.Text = "Date"
	chart.Y.Label.Text = RenderYLabel(ylabel, ts.Repo)
	chart.X.Tick.Marker = plot.TimeTicks{Format: schema.DateFormat}
	chart.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(ts.Points))
	for i, point := range ts.Points {
		pts[i].X = float64(point.Date.Unix())
		pts[i].Y = point.Value
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return "", fmt.Errorf("failed to build line for %s/%s: %w", ts.Repo, ts.Metric, err)
	}
	line.LineStyle.Width = vg.Points(1.5)
	chart.Add(line)

	outPath := p.PlotFilePath(ts.Repo, ts.Metric)
	if err := chart.Save(plotWidth, plotHeight, outPath); err != nil {
		return "", fmt.Errorf("failed to save plot %s: %w", outPath, err)
	}
	return outPath, nil
}
