package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/heatsim/internal/config"
	"github.com/san-kum/heatsim/internal/experiment"
)

const (
	metadataFile = "metadata.json"
	fieldFile    = "field.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID            string             `json:"id"`
	Timestamp     time.Time          `json:"timestamp"`
	Config        config.Config      `json:"config"`
	Steps         int                `json:"steps"`
	Rejected      int                `json:"rejected"`
	Evaluations   int                `json:"evaluations"`
	AverageStep   float64            `json:"average_step"`
	ElapsedMillis float64            `json:"elapsed_ms"`
	TotalGridSize int                `json:"total_grid_size"`
	Metrics       map[string]float64 `json:"metrics"`
}

func NewRunMetadata(id string, res *experiment.Result) RunMetadata {
	return RunMetadata{
		ID:            id,
		Timestamp:     time.Now(),
		Config:        res.Config,
		Steps:         res.Stats.Steps,
		Rejected:      res.Stats.Rejected,
		Evaluations:   res.Stats.Evaluations,
		AverageStep:   res.Model.AverageStepSize(),
		ElapsedMillis: float64(res.Elapsed.Microseconds()) / 1000,
		TotalGridSize: res.TotalGridSize(),
		Metrics:       res.Metrics,
	}
}

// Save writes metadata.json and the sampled grid as field.csv into a new
// run directory and returns the run ID.
func (s *Store) Save(name string, res *experiment.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", name, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewRunMetadata(runID, res)); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, fieldFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteGridCSV(csvFile, res.Grid); err != nil {
		return "", err
	}
	return runID, nil
}

// List returns all readable runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadGrid reads the sampled field written by Save.
func (s *Store) LoadGrid(runID string) (experiment.Grid, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, fieldFile))
	if err != nil {
		return experiment.Grid{}, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return experiment.Grid{}, err
	}
	if len(records) == 0 {
		return experiment.Grid{}, fmt.Errorf("%s: empty field file", runID)
	}

	var g experiment.Grid
	header := records[0]
	g.X = make([]float64, 0, len(header)-1)
	for _, cell := range header[1:] {
		x, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return experiment.Grid{}, fmt.Errorf("%s: header: %w", runID, err)
		}
		g.X = append(g.X, x)
	}

	for line, record := range records[1:] {
		row := make([]float64, len(record))
		for j, cell := range record {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return experiment.Grid{}, fmt.Errorf("%s: line %d: %w", runID, line+2, err)
			}
			row[j] = v
		}
		g.T = append(g.T, row[0])
		g.U = append(g.U, row[1:])
	}

	return g, nil
}
