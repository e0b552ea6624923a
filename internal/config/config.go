package config

import (
	"math"
	"os"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/heatsim/internal/heat"
)

const (
	DefaultBoundary   = "dirichlet"
	DefaultInitial    = "sin(PI*x)"
	DefaultEdge       = "0"
	DefaultMeshPoints = 10
	DefaultTolerance  = 1e-8
	DefaultT1         = 0.5
	DefaultMaxStep    = 100.0
	DefaultIntegrator = "dop853"
	DefaultSamples    = 80
)

// Config describes one heat equation run. Initial is a formula in x; Left
// and Right are formulas in t giving the boundary value or flux.
type Config struct {
	Boundary   string  `yaml:"boundary" json:"boundary"`
	Initial    string  `yaml:"initial" json:"initial"`
	Left       string  `yaml:"left" json:"left"`
	Right      string  `yaml:"right" json:"right"`
	MeshPoints int     `yaml:"mesh_points" json:"mesh_points"`
	RelTol     float64 `yaml:"rel_tol" json:"rel_tol"`
	AbsTol     float64 `yaml:"abs_tol" json:"abs_tol"`
	T0         float64 `yaml:"t0" json:"t0"`
	T1         float64 `yaml:"t1" json:"t1"`
	MaxStep    float64 `yaml:"max_step" json:"max_step"`
	Integrator string  `yaml:"integrator" json:"integrator"`
	Samples    int     `yaml:"samples" json:"samples"`
}

func DefaultConfig() *Config {
	return &Config{
		Boundary:   DefaultBoundary,
		Initial:    DefaultInitial,
		Left:       DefaultEdge,
		Right:      DefaultEdge,
		MeshPoints: DefaultMeshPoints,
		RelTol:     DefaultTolerance,
		AbsTol:     DefaultTolerance,
		T1:         DefaultT1,
		MaxStep:    DefaultMaxStep,
		Integrator: DefaultIntegrator,
		Samples:    DefaultSamples,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Kind parses the boundary field.
func (c *Config) Kind() (heat.Kind, error) {
	return heat.ParseKind(c.Boundary)
}

// Validate reports every invalid field. The errors match
// heat.ErrInvalidParameter.
func (c *Config) Validate() error {
	var errs error
	bad := func(name string, v any, reason string) {
		errs = multierr.Append(errs, &heat.ParameterError{Name: name, Value: v, Reason: reason})
	}

	if _, err := c.Kind(); err != nil {
		errs = multierr.Append(errs, err)
	}
	for name, src := range map[string]string{"initial": c.Initial, "left": c.Left, "right": c.Right} {
		if strings.TrimSpace(src) == "" {
			bad(name, src, "expression is required")
		}
	}
	if c.MeshPoints < heat.MinMeshPoints {
		bad("mesh_points", c.MeshPoints, "must be at least 4")
	}
	if !(c.AbsTol > 0) || math.IsInf(c.AbsTol, 0) {
		bad("abs_tol", c.AbsTol, "must be positive")
	}
	if !(c.RelTol >= 0) || math.IsInf(c.RelTol, 0) {
		bad("rel_tol", c.RelTol, "must be non-negative")
	}
	if !(c.T0 >= 0) || math.IsInf(c.T0, 0) {
		bad("t0", c.T0, "must be finite and non-negative")
	}
	if !(c.T1 > c.T0) || math.IsInf(c.T1, 0) {
		bad("t1", c.T1, "must be finite and after t0")
	}
	if !(c.MaxStep >= 0) {
		bad("max_step", c.MaxStep, "must be positive, or zero for the default")
	}
	if strings.TrimSpace(c.Integrator) == "" {
		bad("integrator", c.Integrator, "is required")
	}
	if c.Samples < 2 {
		bad("samples", c.Samples, "must be at least 2")
	}
	return errs
}
