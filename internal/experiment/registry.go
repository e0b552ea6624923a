package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/heatsim/internal/dynamo"
	"github.com/san-kum/heatsim/internal/integrators"
	"github.com/san-kum/heatsim/internal/metrics"
)

type Registry struct {
	integrators map[string]func(dynamo.Config) dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func(dynamo.Config) dynamo.Integrator),
	}

	r.integrators["dop853"] = func(cfg dynamo.Config) dynamo.Integrator { return integrators.NewDormandPrince853(cfg) }
	r.integrators["rk45"] = func(cfg dynamo.Config) dynamo.Integrator { return integrators.NewRK45(cfg) }

	return r
}

// Integrator returns the constructor registered under name.
func (r *Registry) Integrator(name string) (func(dynamo.Config) dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn, nil
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics() []metrics.Metric {
	return metrics.Defaults()
}
