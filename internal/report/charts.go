package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/jonesrussell/simsweep/internal/compare"
)

// palette cycles across scenarios so multi-scenario charts stay readable.
var palette = []color.RGBA{
	{0, 114, 178, 255},   // blue
	{213, 94, 0, 255},    // vermillion
	{0, 158, 115, 255},   // green
	{204, 121, 167, 255}, // purple
	{230, 159, 0, 255},   // orange
	{86, 180, 233, 255},  // sky blue
}

// MetricChart plots one metric against transmit power, one line per
// scenario. Scenarios lacking the metric entirely are left off the chart.
func MetricChart(path string, cmp compare.Table, metric string) error {
	p := plot.New()
	p.Title.Text = MetricLabel(metric) + " vs Tx Power"
	p.X.Label.Text = "Tx power (dBm)"
	p.Y.Label.Text = MetricLabel(metric)
	p.Legend.Top = true

	plotted := 0
	for i, scn := range cmp.Scenarios {
		var pts plotter.XYs
		for _, power := range cmp.Powers {
			row, ok := cmp.Cells[power][scn]
			if !ok {
				continue
			}
			v, present := MetricValue(row, metric)
			if !present {
				continue
			}
			pts = append(pts, plotter.XY{X: float64(power), Y: v})
		}
		if len(pts) == 0 {
			continue
		}

		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return fmt.Errorf("plot %s: %w", scn, err)
		}
		c := palette[i%len(palette)]
		line.Color = c
		line.Width = vg.Points(2)
		points.Color = c

		p.Add(line, points)
		p.Legend.Add(scn, line, points)
		plotted++
	}
	if plotted == 0 {
		return fmt.Errorf("no data for metric %s", metric)
	}

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save chart %s: %w", path, err)
	}
	return nil
}

// EnergyThroughputChart plots the combined energy-vs-throughput view, one
// scatter series per scenario.
func EnergyThroughputChart(path string, points []compare.Point) error {
	if len(points) == 0 {
		return fmt.Errorf("no annotated points to chart")
	}

	p := plot.New()
	p.Title.Text = "Energy vs Throughput"
	p.X.Label.Text = "Energy (kWh)"
	p.Y.Label.Text = "Throughput (Mbps)"
	p.Legend.Top = true

	perScenario := make(map[string]plotter.XYs)
	var order []string
	for _, pt := range points {
		if _, seen := perScenario[pt.Scenario]; !seen {
			order = append(order, pt.Scenario)
		}
		perScenario[pt.Scenario] = append(perScenario[pt.Scenario], plotter.XY{X: pt.EnergyKWh, Y: pt.ThroughputMbps})
	}

	for i, scn := range order {
		scatter, err := plotter.NewScatter(perScenario[scn])
		if err != nil {
			return fmt.Errorf("plot %s: %w", scn, err)
		}
		c := palette[i%len(palette)]
		scatter.GlyphStyle.Color = c
		scatter.GlyphStyle.Radius = vg.Points(3)

		p.Add(scatter)
		p.Legend.Add(scn, scatter)
	}

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save chart %s: %w", path, err)
	}
	return nil
}
