package metrics

import (
	"math"
	"testing"
)

func profile(n int, f func(x float64) float64) ([]float64, []float64) {
	x := make([]float64, n)
	u := make([]float64, n)
	for i := range x {
		x[i] = float64(i) / float64(n-1)
		u[i] = f(x[i])
	}
	return x, u
}

func TestThermalEnergy(t *testing.T) {
	m := NewThermalEnergy()
	x, u := profile(201, func(x float64) float64 { return math.Sin(math.Pi * x) })

	m.Observe(0, x, u)
	if got, want := m.Value(), 2/math.Pi; math.Abs(got-want) > 1e-4 {
		t.Errorf("expected energy %f, got %f", want, got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift()
	x, u := profile(11, func(float64) float64 { return 1 })
	m.Observe(0, x, u)
	if m.Value() != 0 {
		t.Errorf("expected no drift, got %g", m.Value())
	}

	_, u2 := profile(11, func(float64) float64 { return 0.5 })
	m.Observe(1, x, u2)
	m.Observe(2, x, u)
	if math.Abs(m.Value()-0.5) > 1e-12 {
		t.Errorf("expected drift 0.5, got %g", m.Value())
	}
}

func TestExtrema(t *testing.T) {
	hi, lo := NewExtrema(true), NewExtrema(false)
	x, u := profile(5, func(x float64) float64 { return x - 0.25 })
	_, v := profile(5, func(x float64) float64 { return 2 * x })
	for _, m := range []Metric{hi, lo} {
		m.Observe(0, x, u)
		m.Observe(1, x, v)
	}
	if hi.Value() != 2 {
		t.Errorf("expected max 2, got %g", hi.Value())
	}
	if lo.Value() != -0.25 {
		t.Errorf("expected min -0.25, got %g", lo.Value())
	}
}

func TestBoundaryFlux(t *testing.T) {
	x, u := profile(21, func(x float64) float64 { return x * x })
	left, right := NewBoundaryFlux(Left), NewBoundaryFlux(Right)
	left.Observe(0, x, u)
	right.Observe(0, x, u)

	// the one-sided stencil is exact for quadratics
	if math.Abs(left.Value()) > 1e-10 {
		t.Errorf("expected left flux 0, got %g", left.Value())
	}
	if math.Abs(right.Value()-2) > 1e-10 {
		t.Errorf("expected right flux 2, got %g", right.Value())
	}
}

func TestMeanTemperature(t *testing.T) {
	m := NewMeanTemperature()
	x, u := profile(3, func(x float64) float64 { return x })
	m.Observe(0, x, u)
	if m.Value() != 0.5 {
		t.Errorf("expected mean 0.5, got %g", m.Value())
	}
}

func TestDefaultsHaveUniqueNames(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Defaults() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
}

func TestModeDecay(t *testing.T) {
	m := NewModeDecay()
	rate := math.Pi * math.Pi
	for _, tm := range []float64{0, 0.05, 0.1} {
		x, u := profile(41, func(x float64) float64 {
			return 3*math.Exp(-rate*tm)*math.Sin(math.Pi*x) + 0.5*math.Exp(-9*rate*tm)*math.Sin(3*math.Pi*x)
		})
		m.Observe(tm, x, u)
	}
	if got := m.Value(); math.Abs(got-rate) > 1e-9 {
		t.Errorf("expected decay rate %g, got %g", rate, got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero rate after reset")
	}
	x, u := profile(41, func(float64) float64 { return 0 })
	m.Observe(0, x, u)
	m.Observe(1, x, u)
	if m.Value() != 0 {
		t.Errorf("expected zero rate for a vanishing mode, got %g", m.Value())
	}
}
