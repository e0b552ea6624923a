package dynamo

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// System is a first-order ODE system dy/dt = f(t, y). Derive writes the
// derivative into dy, which has the same length as y.
type System interface {
	Dimension() int
	Derive(t float64, y, dy State) error
}

// StepInterpolator evaluates the solution anywhere inside one accepted step.
type StepInterpolator interface {
	PreviousTime() float64
	CurrentTime() float64
	// InterpolateInto writes y(t) into dst. t must lie in
	// [PreviousTime, CurrentTime].
	InterpolateInto(t float64, dst State)
}

// StepHandler is notified of each accepted step in increasing time order.
// Returning an error aborts the integration.
type StepHandler interface {
	HandleStep(interp StepInterpolator, last bool) error
}

// StepHandlerFunc adapts a function to StepHandler.
type StepHandlerFunc func(interp StepInterpolator, last bool) error

func (f StepHandlerFunc) HandleStep(interp StepInterpolator, last bool) error {
	return f(interp, last)
}

type Integrator interface {
	Name() string
	Integrate(sys System, t0 float64, y0 State, t1 float64, handler StepHandler) (Stats, error)
}

type Config struct {
	AbsTol      float64
	RelTol      float64
	MinStep     float64
	MaxStep     float64
	InitialStep float64 // <= 0 selects the step automatically
	MaxSteps    int     // <= 0 means unbounded
}

func DefaultConfig() Config {
	return Config{
		AbsTol:   1e-8,
		RelTol:   1e-8,
		MinStep:  1e-12,
		MaxStep:  100.0,
		MaxSteps: 1_000_000,
	}
}

func (c Config) Validate() error {
	switch {
	case c.AbsTol <= 0 || c.RelTol < 0:
		return fmt.Errorf("%w: absolute tolerance must be positive and relative tolerance non-negative (abs=%g, rel=%g)", ErrInvalidConfig, c.AbsTol, c.RelTol)
	case c.MinStep <= 0:
		return fmt.Errorf("%w: minimum step must be positive, got %g", ErrInvalidConfig, c.MinStep)
	case c.MaxStep < c.MinStep:
		return fmt.Errorf("%w: maximum step %g below minimum step %g", ErrInvalidConfig, c.MaxStep, c.MinStep)
	}
	return nil
}

// Stats summarizes one integration run.
type Stats struct {
	Steps        int
	Rejected     int
	Evaluations  int
	LastStepSize float64
	FinalTime    float64
}

func (s Stats) String() string {
	return fmt.Sprintf("steps=%d rejected=%d evaluations=%d last_h=%.3g t=%.6g",
		s.Steps, s.Rejected, s.Evaluations, s.LastStepSize, s.FinalTime)
}
