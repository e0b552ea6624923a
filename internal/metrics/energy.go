package metrics

import (
	"math"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// ThermalEnergy is the heat content, the integral of u over [0, 1], at the
// latest observed time.
type ThermalEnergy struct {
	name    string
	current float64
	samples int
}

func NewThermalEnergy() *ThermalEnergy {
	return &ThermalEnergy{name: "thermal_energy"}
}

func (e *ThermalEnergy) Name() string { return e.name }

func (e *ThermalEnergy) Observe(t float64, x, u []float64) {
	if len(x) < 2 {
		return
	}
	e.current = integrate.Trapezoidal(x, u)
	e.samples++
}

func (e *ThermalEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.current
}

func (e *ThermalEnergy) Reset() {
	e.current = 0
	e.samples = 0
}

// EnergyDrift is the largest change of heat content from the first
// observation.
type EnergyDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(t float64, x, u []float64) {
	if len(x) < 2 {
		return
	}
	energy := integrate.Trapezoidal(x, u)
	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++
	e.maxDrift = math.Max(e.maxDrift, math.Abs(energy-e.initial))
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}

// MeanTemperature is the node average of the latest profile.
type MeanTemperature struct {
	name    string
	current float64
}

func NewMeanTemperature() *MeanTemperature {
	return &MeanTemperature{name: "mean_temperature"}
}

func (m *MeanTemperature) Name() string { return m.name }

func (m *MeanTemperature) Observe(t float64, x, u []float64) {
	if len(u) == 0 {
		return
	}
	m.current = stat.Mean(u, nil)
}

func (m *MeanTemperature) Value() float64 { return m.current }

func (m *MeanTemperature) Reset() { m.current = 0 }
