package heat

import (
	"github.com/san-kum/heatsim/internal/dynamo"
)

// BoundaryRecorder receives the ghost values of every derivative
// evaluation.
type BoundaryRecorder interface {
	RecordBoundary(t, left, right float64)
}

// Equation is the semi-discrete heat equation du/dt = u_xx on the interior
// nodes of a mesh. It implements dynamo.System.
type Equation struct {
	mesh     Mesh
	scheme   Scheme
	recorder BoundaryRecorder
	pad      dynamo.State
}

// NewEquation builds the right-hand side. recorder may be nil.
func NewEquation(mesh Mesh, scheme Scheme, recorder BoundaryRecorder) *Equation {
	return &Equation{
		mesh:     mesh,
		scheme:   scheme,
		recorder: recorder,
		pad:      make(dynamo.State, mesh.Points()),
	}
}

func (e *Equation) Dimension() int { return e.mesh.Interior() }

func (e *Equation) Mesh() Mesh { return e.mesh }

func (e *Equation) Scheme() Scheme { return e.scheme }

func (e *Equation) Derive(t float64, u, du dynamo.State) error {
	left, right, err := e.scheme.Ghosts(t, u)
	if err != nil {
		return err
	}
	if e.recorder != nil {
		e.recorder.RecordBoundary(t, left, right)
	}
	Laplacian(e.pad, left, u, right, du, e.mesh.DeltaXInv2())
	return nil
}

// Laplacian writes the central second difference of [left, u..., right]
// into du. pad is scratch space of length len(u)+2.
func Laplacian(pad dynamo.State, left float64, u dynamo.State, right float64, du dynamo.State, dxInv2 float64) {
	d := len(u)
	pad[0] = left
	copy(pad[1:d+1], u)
	pad[d+1] = right
	for i := 0; i < d; i++ {
		du[i] = (pad[i] - 2*pad[i+1] + pad[i+2]) * dxInv2
	}
}

// InitialState samples f at the interior nodes.
func (e *Equation) InitialState(f Func) (dynamo.State, error) {
	u := make(dynamo.State, e.mesh.Interior())
	for i := range u {
		v, err := evaluate("initial", f, e.mesh.InteriorX(i))
		if err != nil {
			return nil, err
		}
		u[i] = v
	}
	return u, nil
}
