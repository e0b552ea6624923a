package heat

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/heatsim/internal/dynamo"
)

// Func is a scalar function of x (initial data) or t (boundary data).
type Func func(float64) (float64, error)

// Constant returns a Func that always yields v.
func Constant(v float64) Func {
	return func(float64) (float64, error) { return v, nil }
}

type Kind int

const (
	FixedValue Kind = iota // Dirichlet
	FixedFlux              // Neumann
)

func (k Kind) String() string {
	switch k {
	case FixedValue:
		return "fixed-value"
	case FixedFlux:
		return "fixed-flux"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind accepts the kind names as well as "dirichlet" and "neumann".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fixed-value", "value", "dirichlet":
		return FixedValue, nil
	case "fixed-flux", "flux", "neumann":
		return FixedFlux, nil
	}
	return 0, &ParameterError{Name: "boundary", Value: s, Reason: "want fixed-value (dirichlet) or fixed-flux (neumann)"}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Scheme computes the two ghost values closing the stencil at time t for
// the interior state u.
type Scheme interface {
	Kind() Kind
	Ghosts(t float64, u dynamo.State) (left, right float64, err error)
}

func NewScheme(kind Kind, mesh Mesh, left, right Func) (Scheme, error) {
	switch kind {
	case FixedValue:
		return &fixedValue{left: left, right: right}, nil
	case FixedFlux:
		return &fixedFlux{left: left, right: right, dx: mesh.DeltaX()}, nil
	}
	return nil, &ParameterError{Name: "boundary", Value: kind, Reason: "unknown boundary kind"}
}

type fixedValue struct {
	left, right Func
}

func (s *fixedValue) Kind() Kind { return FixedValue }

func (s *fixedValue) Ghosts(t float64, _ dynamo.State) (float64, float64, error) {
	l, err := evaluate("left", s.left, t)
	if err != nil {
		return 0, 0, err
	}
	r, err := evaluate("right", s.right, t)
	if err != nil {
		return 0, 0, err
	}
	return l, r, nil
}

// fixedFlux eliminates the ghost node with the second order one-sided
// difference for du/dx = g(t).
type fixedFlux struct {
	left, right Func
	dx          float64
}

func (s *fixedFlux) Kind() Kind { return FixedFlux }

func (s *fixedFlux) Ghosts(t float64, u dynamo.State) (float64, float64, error) {
	gl, err := evaluate("left", s.left, t)
	if err != nil {
		return 0, 0, err
	}
	gr, err := evaluate("right", s.right, t)
	if err != nil {
		return 0, 0, err
	}
	d := len(u)
	left := (-2*s.dx*gl + 4*u[0] - u[1]) / 3
	right := (2*s.dx*gr - u[d-2] + 4*u[d-1]) / 3
	return left, right, nil
}

func evaluate(name string, f Func, arg float64) (float64, error) {
	v, err := f(arg)
	if err != nil {
		return 0, &EvaluationError{Function: name, Arg: arg, Wrapped: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &EvaluationError{Function: name, Arg: arg, Wrapped: fmt.Errorf("%w %g", errNonFiniteValue, v)}
	}
	return v, nil
}
