package experiment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/heatsim/internal/config"
	"github.com/san-kum/heatsim/internal/dynamo"
	"github.com/san-kum/heatsim/internal/expression"
	"github.com/san-kum/heatsim/internal/heat"
	"github.com/san-kum/heatsim/internal/metrics"
)

// maxGridSide caps each axis of the sampled grid.
const maxGridSide = 80

// Grid is u sampled on a regular (x, t) lattice. U[j][i] = u(X[i], T[j]).
type Grid struct {
	X []float64   `json:"x"`
	T []float64   `json:"t"`
	U [][]float64 `json:"u"`
}

// Result is one finished run.
type Result struct {
	Config  config.Config
	Model   *heat.Model
	Stats   dynamo.Stats
	Elapsed time.Duration
	Grid    Grid
	Metrics map[string]float64
}

// TotalGridSize is the number of (node, step) vertices the solve produced.
func (r *Result) TotalGridSize() int {
	return r.Model.StepCount() * r.Model.Mesh().Points()
}

type Experiment struct {
	cfg      config.Config
	registry *Registry
	logger   *zap.Logger
	metrics  []metrics.Metric
}

// New prepares a run. A nil logger disables logging.
func New(cfg config.Config, registry *Registry, logger *zap.Logger) *Experiment {
	if logger == nil {
		logger = zap.NewNop()
	}
	if registry == nil {
		registry = NewRegistry()
	}
	return &Experiment{
		cfg:      cfg,
		registry: registry,
		logger:   logger,
		metrics:  registry.DefaultMetrics(),
	}
}

// Problem compiles the configured expressions into a heat.Problem.
func (e *Experiment) Problem() (heat.Problem, error) {
	cfg := e.cfg
	if err := cfg.Validate(); err != nil {
		return heat.Problem{}, err
	}
	kind, err := cfg.Kind()
	if err != nil {
		return heat.Problem{}, err
	}
	build, err := e.registry.Integrator(cfg.Integrator)
	if err != nil {
		return heat.Problem{}, &heat.ParameterError{Name: "integrator", Value: cfg.Integrator, Reason: err.Error()}
	}

	initial, err := expression.CompileFunc(cfg.Initial, "x")
	if err != nil {
		return heat.Problem{}, fmt.Errorf("initial: %w", err)
	}
	left, err := expression.CompileFunc(cfg.Left, "t")
	if err != nil {
		return heat.Problem{}, fmt.Errorf("left: %w", err)
	}
	right, err := expression.CompileFunc(cfg.Right, "t")
	if err != nil {
		return heat.Problem{}, fmt.Errorf("right: %w", err)
	}

	return heat.Problem{
		Points:        cfg.MeshPoints,
		Kind:          kind,
		Initial:       initial,
		Left:          left,
		Right:         right,
		T0:            cfg.T0,
		T1:            cfg.T1,
		RelTol:        cfg.RelTol,
		AbsTol:        cfg.AbsTol,
		MaxStep:       cfg.MaxStep,
		NewIntegrator: build,
	}, nil
}

// Run solves the configured problem and samples the result. The solve itself
// cannot be interrupted; ctx is checked before it starts and while sampling.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	problem, err := e.Problem()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, m := range e.metrics {
		m.Reset()
	}

	log := e.logger.With(
		zap.String("boundary", problem.Kind.String()),
		zap.Int("mesh_points", problem.Points),
		zap.String("integrator", e.cfg.Integrator),
		zap.Float64("rel_tol", problem.RelTol),
		zap.Float64("abs_tol", problem.AbsTol),
		zap.Float64("t1", problem.T1),
	)
	log.Debug("solve started")

	start := time.Now()
	model, stats, err := heat.Solve(problem)
	elapsed := time.Since(start)
	if err != nil {
		log.Error("solve failed", zap.Error(err), zap.Duration("elapsed", elapsed), zap.Int("steps", stats.Steps))
		return nil, err
	}
	log.Info("solve finished",
		zap.Int("steps", stats.Steps),
		zap.Int("rejected", stats.Rejected),
		zap.Int("evaluations", stats.Evaluations),
		zap.Float64("average_step", model.AverageStepSize()),
		zap.Duration("elapsed", elapsed),
	)

	res := &Result{
		Config:  e.cfg,
		Model:   model,
		Stats:   stats,
		Elapsed: elapsed,
		Metrics: make(map[string]float64),
	}
	nx := min(maxGridSide, e.cfg.MeshPoints)
	nt := min(maxGridSide, e.cfg.Samples)
	res.Grid, err = SampleGrid(ctx, model, nx, nt, e.metrics...)
	if err != nil {
		return nil, err
	}
	for _, m := range e.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	return res, nil
}

// SampleGrid evaluates the model on nx evenly spaced positions in [0, 1] and
// nt evenly spaced times over the solved interval, feeding every row to the
// given metrics.
func SampleGrid(ctx context.Context, model *heat.Model, nx, nt int, ms ...metrics.Metric) (Grid, error) {
	if nx < 2 || nt < 2 {
		return Grid{}, fmt.Errorf("grid needs at least 2x2 points, got %dx%d", nx, nt)
	}
	t0, t1 := model.StartTime(), model.EndTime()
	g := Grid{
		X: linspace(0, 1, nx),
		T: linspace(t0, t1, nt),
		U: make([][]float64, nt),
	}
	for j, t := range g.T {
		if err := ctx.Err(); err != nil {
			return Grid{}, err
		}
		row, err := model.Profile(t, g.X)
		if err != nil {
			return Grid{}, err
		}
		g.U[j] = row
		for _, m := range ms {
			m.Observe(t, g.X, row)
		}
	}
	return g, nil
}

// linspace pins both ends exactly so queries never leave the domain.
func linspace(a, b float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = a + (b-a)*float64(i)/float64(n-1)
	}
	out[0], out[n-1] = a, b
	return out
}
