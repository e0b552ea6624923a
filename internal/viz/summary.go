package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/heatsim/internal/experiment"
)

// Summary renders the statistics the run reports, the way the result
// panel shows them.
func Summary(res *experiment.Result) string {
	cfg := res.Config
	var b strings.Builder

	b.WriteString(GradientText("heatsim", "#00ffff", "#ff00ff"))
	b.WriteString("\n")
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("%s boundary, %d mesh points, %s", cfg.Boundary, cfg.MeshPoints, cfg.Integrator)))
	b.WriteString("\n\n")

	rows := [][2]string{
		{"initial u(x,0)", cfg.Initial},
		{"left", cfg.Left},
		{"right", cfg.Right},
		{"tolerance", fmt.Sprintf("rel %.1e  abs %.1e", cfg.RelTol, cfg.AbsTol)},
		{"time taken", fmt.Sprintf("%.3f ms", float64(res.Elapsed.Microseconds())/1000)},
		{"steps in t", fmt.Sprintf("%d (%d rejected)", res.Stats.Steps, res.Stats.Rejected)},
		{"evaluations", fmt.Sprintf("%d", res.Stats.Evaluations)},
		{"average step", fmt.Sprintf("%e", res.Model.AverageStepSize())},
		{"total grid", fmt.Sprintf("%d vertices", res.TotalGridSize())},
	}

	names := make([]string, 0, len(res.Metrics))
	for name := range res.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rows = append(rows, [2]string{name, fmt.Sprintf("%.6g", res.Metrics[name])})
	}

	for _, r := range rows {
		b.WriteString(MetricLabel.Render(fmt.Sprintf("%-18s", r[0])))
		b.WriteString(MetricValue.Render(r[1]))
		b.WriteString("\n")
	}

	peaks := make([]float64, len(res.Grid.U))
	for j, row := range res.Grid.U {
		for i, v := range row {
			if i == 0 || v > peaks[j] {
				peaks[j] = v
			}
		}
	}
	b.WriteString(MetricLabel.Render(fmt.Sprintf("%-18s", "peak over time")))
	b.WriteString(SparklineChart(peaks, 40))

	return GlassPanel.Render(b.String())
}

// Heatmap renders the grid with one coloured cell per sample, x across and
// t down, down-sampled to at most maxCols by maxRows cells.
func Heatmap(g experiment.Grid, p Palette, maxCols, maxRows int) string {
	if len(g.U) == 0 || len(g.X) == 0 {
		return ""
	}
	lo, hi := gridBounds(g)
	cols := pick(len(g.X), maxCols)
	rows := pick(len(g.T), maxRows)

	var b strings.Builder
	for _, j := range rows {
		for _, i := range cols {
			s := 0.5
			if hi > lo {
				s = (g.U[j][i] - lo) / (hi - lo)
			}
			b.WriteString(lipgloss.NewStyle().Foreground(p.At(s)).Render("█"))
		}
		b.WriteString(Subtle.Render(fmt.Sprintf(" t=%.3g", g.T[j])))
		b.WriteString("\n")
	}
	b.WriteString(Subtle.Render(fmt.Sprintf("[%.3g, %.3g] %s", lo, hi, p.Name)))
	return b.String()
}

func gridBounds(g experiment.Grid) (lo, hi float64) {
	first := true
	for _, row := range g.U {
		for _, v := range row {
			if first {
				lo, hi, first = v, v, false
				continue
			}
			lo, hi = min(lo, v), max(hi, v)
		}
	}
	return lo, hi
}

// pick returns at most limit evenly spread indices in [0, n), always
// including both ends.
func pick(n, limit int) []int {
	if limit <= 1 || n <= limit {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}
	out := make([]int, limit)
	for k := range out {
		out[k] = k * (n - 1) / (limit - 1)
	}
	return out
}
