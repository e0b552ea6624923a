package heat

import (
	"math"

	"github.com/san-kum/heatsim/internal/dynamo"
	"github.com/san-kum/heatsim/internal/integrators"
	"go.uber.org/multierr"
)

// DefaultMaxStep bounds the integrator step when Problem.MaxStep is zero.
const DefaultMaxStep = 100.0

// Problem is one heat equation run on [0, 1] x [T0, T1].
type Problem struct {
	Points int
	Kind   Kind

	Initial Func // u(x, T0)
	Left    Func // value or flux at x = 0
	Right   Func // value or flux at x = 1

	T0, T1         float64
	RelTol, AbsTol float64
	MaxStep        float64

	// NewIntegrator builds the time stepper. Nil selects DOP853.
	NewIntegrator func(dynamo.Config) dynamo.Integrator
}

// Validate reports every invalid field at once. Each error matches
// ErrInvalidParameter.
func (p Problem) Validate() error {
	var errs error
	bad := func(name string, v any, reason string) {
		errs = multierr.Append(errs, &ParameterError{Name: name, Value: v, Reason: reason})
	}

	if p.Points < MinMeshPoints {
		bad("mesh_points", p.Points, "must be at least 4")
	}
	if p.Kind != FixedValue && p.Kind != FixedFlux {
		bad("boundary", p.Kind, "unknown boundary kind")
	}
	if p.Initial == nil {
		bad("initial", nil, "function is required")
	}
	if p.Left == nil {
		bad("left", nil, "function is required")
	}
	if p.Right == nil {
		bad("right", nil, "function is required")
	}
	if !finite(p.AbsTol) || p.AbsTol <= 0 {
		bad("abs_tol", p.AbsTol, "must be positive")
	}
	if !finite(p.RelTol) || p.RelTol < 0 {
		bad("rel_tol", p.RelTol, "must be non-negative")
	}
	if !finite(p.T0) || p.T0 < 0 {
		bad("t0", p.T0, "must be finite and non-negative")
	}
	if !finite(p.T1) {
		bad("t1", p.T1, "must be finite")
	} else if finite(p.T0) && p.T1 <= p.T0 {
		bad("t1", p.T1, "must be after t0")
	}
	if math.IsNaN(p.MaxStep) || p.MaxStep < 0 {
		bad("max_step", p.MaxStep, "must be positive, or zero for the default")
	}
	return errs
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (p Problem) integratorConfig() dynamo.Config {
	cfg := dynamo.DefaultConfig()
	cfg.AbsTol = p.AbsTol
	cfg.RelTol = p.RelTol
	cfg.MaxStep = DefaultMaxStep
	if p.MaxStep > 0 {
		cfg.MaxStep = p.MaxStep
	}
	return cfg
}

// Solve integrates the problem and returns its finished continuous output.
// No model is returned when the integration fails.
func Solve(p Problem) (*Model, dynamo.Stats, error) {
	if err := p.Validate(); err != nil {
		return nil, dynamo.Stats{}, err
	}
	mesh, err := NewMesh(p.Points)
	if err != nil {
		return nil, dynamo.Stats{}, err
	}
	scheme, err := NewScheme(p.Kind, mesh, p.Left, p.Right)
	if err != nil {
		return nil, dynamo.Stats{}, err
	}

	model := NewModel(mesh)
	eq := NewEquation(mesh, scheme, model)
	u0, err := eq.InitialState(p.Initial)
	if err != nil {
		return nil, dynamo.Stats{}, err
	}

	build := p.NewIntegrator
	if build == nil {
		build = func(cfg dynamo.Config) dynamo.Integrator {
			return integrators.NewDormandPrince853(cfg)
		}
	}
	stats, err := build(p.integratorConfig()).Integrate(eq, p.T0, u0, p.T1, model)
	if err != nil {
		return nil, stats, err
	}
	model.Finish()
	return model, stats, nil
}
