// Package plot renders a session's reaction-time series as a PNG chart.
package plot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrNoReactionTimes is returned when there is nothing to plot.
var ErrNoReactionTimes = errors.New("no reaction times to plot")

const (
	title  = "Reaction Time Over Trials (Button Presses)"
	xLabel = "Button Press Number"
	yLabel = "Reaction Time (ms)"
)

// Build returns the chart for rts, press number on X starting at 1.
func Build(rts []int) (*plot.Plot, error) {
	if len(rts) == 0 {
		return nil, ErrNoReactionTimes
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(rts))
	for i, rt := range rts {
		pts[i].X = float64(i + 1)
		pts[i].Y = float64(rt)
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, fmt.Errorf("build series: %w", err)
	}
	points.Shape = draw.CircleGlyph{}
	p.Add(line, points)
	return p, nil
}

// Save writes the chart for rts to dir/<base>.png and returns the path.
func Save(dir, base string, rts []int) (string, error) {
	p, err := Build(rts)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dir, base+".png")
	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return "", fmt.Errorf("save plot: %w", err)
	}
	return path, nil
}
