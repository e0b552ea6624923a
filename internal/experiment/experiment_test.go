package experiment

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/san-kum/heatsim/internal/config"
	"github.com/san-kum/heatsim/internal/expression"
	"github.com/san-kum/heatsim/internal/heat"
)

func TestRunSineDecay(t *testing.T) {
	cfg := config.GetPreset("sine-decay")
	require.NotNil(t, cfg)

	res, err := New(*cfg, nil, zaptest.NewLogger(t)).Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, res.Grid.X, 50)
	assert.Len(t, res.Grid.T, 80)
	require.Len(t, res.Grid.U, 80)
	assert.Equal(t, 0.1, res.Grid.T[79])

	for i, x := range res.Grid.X {
		assert.InDelta(t, math.Sin(math.Pi*x), res.Grid.U[0][i], 1e-3)
	}
	assert.Equal(t, res.Stats.Steps*50, res.TotalGridSize())
	assert.Equal(t, res.Stats.Steps, res.Model.StepCount())

	assert.Contains(t, res.Metrics, "thermal_energy")
	assert.InDelta(t, 2/math.Pi*math.Exp(-math.Pi*math.Pi*0.1), res.Metrics["thermal_energy"], 1e-3)
	assert.InDelta(t, 1.0, res.Metrics["max_temperature"], 1e-3)
	assert.InDelta(t, math.Pi*math.Pi, res.Metrics["mode1_decay_rate"], 0.01)
}

func TestRunTwiceResetsMetrics(t *testing.T) {
	cfg := config.GetPreset("steady")
	exp := New(*cfg, nil, nil)

	first, err := exp.Run(context.Background())
	require.NoError(t, err)
	second, err := exp.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.Metrics, second.Metrics)
	assert.InDelta(t, 1.0, second.Metrics["mean_temperature"], 1e-9)
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
		want   error
	}{
		{"unknown integrator", func(c *config.Config) { c.Integrator = "euler" }, heat.ErrInvalidParameter},
		{"bad mesh", func(c *config.Config) { c.MeshPoints = 1 }, heat.ErrInvalidParameter},
		{"bad expression", func(c *config.Config) { c.Initial = "sin(" }, expression.ErrSyntax},
		{"wrong variable", func(c *config.Config) { c.Left = "x" }, expression.ErrSyntax},
		{"failing boundary", func(c *config.Config) { c.Left = "log(t - 0.01)" }, heat.ErrEvaluation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.modify(cfg)
			_, err := New(*cfg, nil, zaptest.NewLogger(t)).Run(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(*config.DefaultConfig(), nil, nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"dop853", "rk45"}, r.ListIntegrators())
	_, err := r.Integrator("verlet")
	assert.Error(t, err)
}

func TestLinspace(t *testing.T) {
	xs := linspace(0, 0.3, 4)
	assert.Equal(t, 0.0, xs[0])
	assert.Equal(t, 0.3, xs[3])
	assert.InDelta(t, 0.1, xs[1], 1e-15)
}

func TestEnsemble(t *testing.T) {
	base := config.GetPreset("sine-decay")
	rk := *base
	rk.Integrator = "rk45"
	broken := *base
	broken.MeshPoints = 2

	results, errs := NewEnsemble(nil, zaptest.NewLogger(t)).Run(context.Background(), []config.Config{*base, rk, broken})
	require.Len(t, results, 3)
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.ErrorIs(t, errs[2], heat.ErrInvalidParameter)
	assert.Nil(t, results[2])

	assert.Equal(t, "dop853", results[0].Config.Integrator)
	assert.Equal(t, "rk45", results[1].Config.Integrator)
	assert.Positive(t, results[1].Stats.Steps)
	for j := range results[0].Grid.T {
		for i := range results[0].Grid.X {
			assert.InDelta(t, results[0].Grid.U[j][i], results[1].Grid.U[j][i], 1e-5)
		}
	}
}

func TestRunClassicPresets(t *testing.T) {
	t.Run("classic-dirichlet", func(t *testing.T) {
		res, err := New(*config.GetPreset("classic-dirichlet"), nil, zaptest.NewLogger(t)).Run(context.Background())
		require.NoError(t, err)
		require.Len(t, res.Grid.X, 10)
		last := res.Grid.U[len(res.Grid.U)-1]
		assert.Equal(t, 0.0, last[0])
		assert.Equal(t, 1.0, last[9])
		assert.Equal(t, 0.5, res.Model.EndTime())
	})

	t.Run("classic-neumann", func(t *testing.T) {
		res, err := New(*config.GetPreset("classic-neumann"), nil, zaptest.NewLogger(t)).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0.5, res.Model.EndTime())
		// heat leaves through the right end only
		assert.Greater(t, res.Metrics["energy_drift"], 0.0)
	})
}
