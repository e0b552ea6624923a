package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/heatsim/internal/config"
	"github.com/san-kum/heatsim/internal/experiment"
)

func runSteady(t *testing.T) *experiment.Result {
	t.Helper()
	cfg := config.GetPreset("steady")
	cfg.Samples = 5
	res, err := experiment.New(*cfg, nil, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return res
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	res := runSteady(t)
	runID, err := st.Save("steady", res)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.Config != res.Config {
		t.Errorf("config mismatch: got %+v", meta.Config)
	}
	if meta.Steps != res.Stats.Steps {
		t.Errorf("expected %d steps, got %d", res.Stats.Steps, meta.Steps)
	}
	if meta.TotalGridSize != res.Stats.Steps*20 {
		t.Errorf("expected total grid %d, got %d", res.Stats.Steps*20, meta.TotalGridSize)
	}
	if meta.Metrics["mean_temperature"] != res.Metrics["mean_temperature"] {
		t.Errorf("metrics not persisted: %v", meta.Metrics)
	}

	grid, err := st.LoadGrid(runID)
	if err != nil {
		t.Fatalf("load grid failed: %v", err)
	}

	if len(grid.T) != 5 {
		t.Errorf("expected 5 times, got %d", len(grid.T))
	}
	if len(grid.X) != 20 {
		t.Errorf("expected 20 positions, got %d", len(grid.X))
	}
	for j := range grid.U {
		for i := range grid.U[j] {
			if grid.U[j][i] != res.Grid.U[j][i] {
				t.Fatalf("grid value (%d,%d) changed: %g != %g", j, i, grid.U[j][i], res.Grid.U[j][i])
			}
		}
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	res := runSteady(t)
	for i := 0; i < 2; i++ {
		if _, err := st.Save("steady", res); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}
	if err := os.MkdirAll(filepath.Join(tmpDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "absent")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v (%v)", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save("steady", runSteady(t))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	if _, err := os.Stat(filepath.Join(runDir, "metadata.json")); os.IsNotExist(err) {
		t.Error("metadata.json not created")
	}
	if _, err := os.Stat(filepath.Join(runDir, "field.csv")); os.IsNotExist(err) {
		t.Error("field.csv not created")
	}
}

func TestExportJSON(t *testing.T) {
	res := runSteady(t)
	var buf bytes.Buffer
	if err := ExportJSON(&buf, res); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.Steps != res.Stats.Steps || len(data.StepTimes) != res.Stats.Steps {
		t.Errorf("expected %d steps, got %d (%d times)", res.Stats.Steps, data.Steps, len(data.StepTimes))
	}
	if len(data.Grid.U) != len(res.Grid.U) {
		t.Errorf("grid rows: got %d", len(data.Grid.U))
	}
}

func TestWriteGridCSV(t *testing.T) {
	g := experiment.Grid{
		X: []float64{0, 0.5, 1},
		T: []float64{0, 0.25},
		U: [][]float64{{1, 2, 3}, {4, 5, 6}},
	}
	var buf bytes.Buffer
	if err := WriteGridCSV(&buf, g); err != nil {
		t.Fatal(err)
	}
	want := "t,0,0.5,1\n0,1,2,3\n0.25,4,5,6\n"
	if got := buf.String(); got != want {
		t.Errorf("unexpected csv:\n%s", got)
	}
}
