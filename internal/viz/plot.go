package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/heatsim/internal/experiment"
	"github.com/san-kum/heatsim/internal/heat"
)

// ProfilePlot draws row j of the grid, u against x. lo and hi fix the
// vertical axis so successive frames line up; pass lo == hi to autoscale.
func ProfilePlot(g experiment.Grid, j int, width, height int, lo, hi float64) string {
	if j < 0 || j >= len(g.U) || len(g.U[j]) == 0 {
		return ""
	}
	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(3),
		asciigraph.SeriesColors(asciigraph.Red),
		asciigraph.Caption(fmt.Sprintf("u(x, t=%.4g), x from 0 to 1", g.T[j])),
	}
	if hi > lo {
		opts = append(opts, asciigraph.LowerBound(lo), asciigraph.UpperBound(hi))
	}
	return asciigraph.Plot(g.U[j], opts...)
}

// BoundaryPlot draws the recorded left (blue) and right (red) boundary
// values over time.
func BoundaryPlot(samples []heat.BoundarySample, width, height int) string {
	if len(samples) == 0 {
		return ""
	}
	left := make([]float64, len(samples))
	right := make([]float64, len(samples))
	for i, s := range samples {
		left[i], right[i] = s.Left, s.Right
	}
	return asciigraph.PlotMany([][]float64{left, right},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(3),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red),
		asciigraph.Caption(fmt.Sprintf("boundary values, t from %.4g to %.4g", samples[0].Time, samples[len(samples)-1].Time)),
	)
}

// StepSizePlot draws the accepted step sizes in order.
func StepSizePlot(stepTimes []float64, start float64, width, height int) string {
	if len(stepTimes) == 0 {
		return ""
	}
	sizes := make([]float64, len(stepTimes))
	prev := start
	for i, t := range stepTimes {
		sizes[i] = t - prev
		prev = t
	}
	return asciigraph.Plot(sizes,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("step size per accepted step"),
	)
}
