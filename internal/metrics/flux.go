package metrics

import (
	"gonum.org/v1/gonum/stat"
)

type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// BoundaryFlux is the time average of du/dx at one end, estimated with the
// second order one-sided difference on the first three nodes.
type BoundaryFlux struct {
	name   string
	side   Side
	fluxes []float64
}

func NewBoundaryFlux(side Side) *BoundaryFlux {
	return &BoundaryFlux{
		name: side.String() + "_flux",
		side: side,
	}
}

func (b *BoundaryFlux) Name() string {
	return b.name
}

func (b *BoundaryFlux) Observe(t float64, x, u []float64) {
	n := len(u)
	if n < 3 || len(x) != n {
		return
	}
	var flux float64
	if b.side == Left {
		h := x[1] - x[0]
		flux = (-3*u[0] + 4*u[1] - u[2]) / (2 * h)
	} else {
		h := x[n-1] - x[n-2]
		flux = (3*u[n-1] - 4*u[n-2] + u[n-3]) / (2 * h)
	}
	b.fluxes = append(b.fluxes, flux)
}

func (b *BoundaryFlux) Value() float64 {
	if len(b.fluxes) == 0 {
		return 0
	}
	return stat.Mean(b.fluxes, nil)
}

func (b *BoundaryFlux) Reset() {
	b.fluxes = b.fluxes[:0]
}
