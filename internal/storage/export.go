package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/heatsim/internal/config"
	"github.com/san-kum/heatsim/internal/experiment"
)

type ExportData struct {
	Config        config.Config      `json:"config"`
	Steps         int                `json:"steps"`
	Rejected      int                `json:"rejected"`
	Evaluations   int                `json:"evaluations"`
	AverageStep   float64            `json:"average_step"`
	ElapsedMillis float64            `json:"elapsed_ms"`
	TotalGridSize int                `json:"total_grid_size"`
	StepTimes     []float64          `json:"step_times"`
	Grid          experiment.Grid    `json:"grid"`
	Metrics       map[string]float64 `json:"metrics"`
}

func ExportJSON(w io.Writer, res *experiment.Result) error {
	meta := NewRunMetadata("", res)
	data := ExportData{
		Config:        meta.Config,
		Steps:         meta.Steps,
		Rejected:      meta.Rejected,
		Evaluations:   meta.Evaluations,
		AverageStep:   meta.AverageStep,
		ElapsedMillis: meta.ElapsedMillis,
		TotalGridSize: meta.TotalGridSize,
		StepTimes:     res.Model.StepTimes(),
		Grid:          res.Grid,
		Metrics:       res.Metrics,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteGridCSV writes one row per sample time. The header holds "t" followed
// by the sample positions.
func WriteGridCSV(w io.Writer, g experiment.Grid) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(g.X)+1)
	header = append(header, "t")
	for _, x := range g.X {
		header = append(header, formatFloat(x))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for j, t := range g.T {
		row := make([]string, 0, len(g.X)+1)
		row = append(row, formatFloat(t))
		for _, v := range g.U[j] {
			row = append(row, formatFloat(v))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
