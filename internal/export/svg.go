package export

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/heatsim/internal/experiment"
)

type Point struct{ X, Y float64 }

// HeatmapSVG renders a sampled field as a grid of cells with x to the right
// and t downwards, coloured from blue (coldest) to red (hottest).
func HeatmapSVG(g experiment.Grid, cell float64) string {
	if len(g.U) == 0 || len(g.X) == 0 {
		return ""
	}

	lo, hi := bounds(g.U)
	width := float64(len(g.X)) * cell
	height := float64(len(g.T)) * cell

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for j, row := range g.U {
		for i, v := range row {
			sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>
`, float64(i)*cell, float64(j)*cell, cell, cell, HeatColor(normalize(v, lo, hi))))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// ProfileSVG draws u against x as a polyline.
func ProfileSVG(points []Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// ProfileAt extracts row j of the grid as points.
func ProfileAt(g experiment.Grid, j int) []Point {
	points := make([]Point, len(g.X))
	for i, x := range g.X {
		points[i] = Point{X: x, Y: g.U[j][i]}
	}
	return points
}

// HeatColor maps s in [0, 1] to a blue-white-red hex colour.
func HeatColor(s float64) string {
	s = math.Max(0, math.Min(1, s))
	var r, g, b float64
	if s < 0.5 {
		f := s / 0.5
		r, g, b = f, f, 1
	} else {
		f := (1 - s) / 0.5
		r, g, b = 1, f, f
	}
	return fmt.Sprintf("#%02x%02x%02x", int(math.Round(r*255)), int(math.Round(g*255)), int(math.Round(b*255)))
}

func bounds(rows [][]float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		lo = math.Min(lo, floats.Min(row))
		hi = math.Max(hi, floats.Max(row))
	}
	return lo, hi
}

func normalize(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0.5
	}
	return (v - lo) / (hi - lo)
}
