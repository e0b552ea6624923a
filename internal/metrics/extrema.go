package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Extrema tracks the largest (or smallest) value seen over all profiles.
type Extrema struct {
	name    string
	max     bool
	value   float64
	samples int
}

func NewExtrema(max bool) *Extrema {
	name := "min_temperature"
	if max {
		name = "max_temperature"
	}
	return &Extrema{name: name, max: max}
}

func (e *Extrema) Name() string {
	return e.name
}

func (e *Extrema) Observe(t float64, x, u []float64) {
	if len(u) == 0 {
		return
	}
	v := floats.Min(u)
	if e.max {
		v = floats.Max(u)
	}
	switch {
	case e.samples == 0:
		e.value = v
	case e.max:
		e.value = math.Max(e.value, v)
	default:
		e.value = math.Min(e.value, v)
	}
	e.samples++
}

func (e *Extrema) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.value
}

func (e *Extrema) Reset() {
	e.value = 0
	e.samples = 0
}
