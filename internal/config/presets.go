package config

import "sort"

var Presets = map[string]*Config{
	"sine-decay": {
		Boundary: "dirichlet", Initial: "sin(PI*x)", Left: "0", Right: "0",
		MeshPoints: 50, RelTol: 1e-8, AbsTol: 1e-8, T1: 0.1,
	},
	"steady": {
		Boundary: "dirichlet", Initial: "1", Left: "1", Right: "1",
		MeshPoints: 20, RelTol: 1e-8, AbsTol: 1e-8, T1: 1.0,
	},
	"dirichlet-ramp": {
		Boundary: "dirichlet", Initial: "0", Left: "min(10*t, 1)", Right: "0",
		MeshPoints: 40, RelTol: 1e-8, AbsTol: 1e-8, T1: 0.5,
	},
	"neumann-ramp": {
		Boundary: "neumann", Initial: "0", Left: "-t", Right: "0",
		MeshPoints: 40, RelTol: 1e-8, AbsTol: 1e-8, T1: 1.0,
	},
	"classic-dirichlet": {
		Boundary: "dirichlet", Initial: "sin(deg(PI*x/2))", Left: "0", Right: "1",
		MeshPoints: 10, RelTol: 1e-8, AbsTol: 1e-8, T1: 0.5,
	},
	"classic-neumann": {
		Boundary: "neumann", Initial: "sin(deg(PI*x/2))", Left: "0", Right: "-1",
		MeshPoints: 10, RelTol: 1e-8, AbsTol: 1e-8, T1: 0.5,
	},
	"hot-spot": {
		Boundary: "neumann", Initial: "exp(-200*(x-0.5)^2)", Left: "0", Right: "0",
		MeshPoints: 60, RelTol: 1e-8, AbsTol: 1e-8, T1: 0.05,
	},
}

// GetPreset returns a copy of the named preset with unset run options
// taken from DefaultConfig, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	def := DefaultConfig()
	if cfg.MaxStep == 0 {
		cfg.MaxStep = def.MaxStep
	}
	if cfg.Integrator == "" {
		cfg.Integrator = def.Integrator
	}
	if cfg.Samples == 0 {
		cfg.Samples = def.Samples
	}
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
