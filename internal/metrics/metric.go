// Package metrics summarizes sampled temperature profiles.
package metrics

// Metric observes profiles u(x, t) at increasing times. x holds the node
// positions and u the field values on them, boundaries included.
type Metric interface {
	Name() string
	Observe(t float64, x, u []float64)
	Value() float64
	Reset()
}

// Defaults returns the metrics recorded for every run.
func Defaults() []Metric {
	return []Metric{
		NewThermalEnergy(),
		NewEnergyDrift(),
		NewMeanTemperature(),
		NewExtrema(true),
		NewExtrema(false),
		NewBoundaryFlux(Left),
		NewBoundaryFlux(Right),
		NewModeDecay(),
	}
}
