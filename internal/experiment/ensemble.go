package experiment

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/san-kum/heatsim/internal/config"
)

// Ensemble runs independent configurations side by side. Each run compiles
// its own expressions and owns its model, so nothing is shared but the
// read-only registry.
type Ensemble struct {
	registry *Registry
	logger   *zap.Logger
}

func NewEnsemble(registry *Registry, logger *zap.Logger) *Ensemble {
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ensemble{registry: registry, logger: logger}
}

// Run solves every configuration concurrently. results[i] and errs[i]
// belong to cfgs[i]; a failed run leaves its result nil.
func (e *Ensemble) Run(ctx context.Context, cfgs []config.Config) ([]*Result, []error) {
	results := make([]*Result, len(cfgs))
	errs := make([]error, len(cfgs))

	var wg sync.WaitGroup
	for i := range cfgs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			log := e.logger.With(zap.Int("run", idx))
			results[idx], errs[idx] = New(cfgs[idx], e.registry, log).Run(ctx)
		}(i)
	}

	wg.Wait()
	return results, errs
}
