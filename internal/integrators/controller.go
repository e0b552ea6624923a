package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/heatsim/internal/dynamo"
)

// pair is one embedded Runge-Kutta scheme driven by controller.
type pair interface {
	order() int
	resize(n int)
	// attempt advances y by h into yNew and returns the scaled error norm.
	// k1 holds f(t, y).
	attempt(sys dynamo.System, t, h float64, y, k1, yNew dynamo.State, atol, rtol float64) (float64, error)
	// derivativeAtEnd fills kNew with f(tNew, yNew) after an accepted attempt.
	derivativeAtEnd(sys dynamo.System, tNew float64, yNew, kNew dynamo.State) error
	// dense builds the interpolant of the step just accepted. The result
	// must not alias any of the argument buffers.
	dense(sys dynamo.System, t, tNew, h float64, y, yNew, k1, kNew dynamo.State) (dynamo.StepInterpolator, error)
}

type controller struct {
	cfg      dynamo.Config
	safety   float64
	minScale float64
	maxScale float64
}

func newController(cfg dynamo.Config) controller {
	return controller{
		cfg:      cfg,
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (c *controller) Config() dynamo.Config { return c.cfg }

// scale returns the factor applied to h after an attempt with error norm err.
func (c *controller) scale(err float64, q int, afterReject bool) float64 {
	if err == 0 {
		if afterReject {
			return 1
		}
		return c.maxScale
	}
	f := c.safety * math.Pow(err, -1/float64(q))
	f = math.Max(c.minScale, math.Min(c.maxScale, f))
	if afterReject && f > 1 {
		f = 1
	}
	return f
}

func (c *controller) integrate(sys dynamo.System, p pair, t0 float64, y0 dynamo.State, t1 float64, handler dynamo.StepHandler) (dynamo.Stats, error) {
	var stats dynamo.Stats
	cfg := c.cfg
	if err := cfg.Validate(); err != nil {
		return stats, err
	}
	n := sys.Dimension()
	if len(y0) != n {
		return stats, fmt.Errorf("%w: state has %d components, system expects %d", dynamo.ErrDimensionMismatch, len(y0), n)
	}
	if !(t1 > t0) || math.IsInf(t1, 0) || math.IsNaN(t0) {
		return stats, fmt.Errorf("%w: [%g, %g]", dynamo.ErrInvalidInterval, t0, t1)
	}

	p.resize(n)
	cs := &checkedSystem{System: sys}
	y := y0.Clone()
	yNew := make(dynamo.State, n)
	k1 := make(dynamo.State, n)
	kNew := make(dynamo.State, n)

	t := t0
	fail := func(h float64, err error) (dynamo.Stats, error) {
		stats.Evaluations = cs.evaluations
		stats.FinalTime = t
		return stats, &dynamo.IntegrationError{
			Step:         stats.Steps + stats.Rejected,
			LastAccepted: t,
			Time:         t + h,
			StepSize:     h,
			Wrapped:      err,
		}
	}

	if err := cs.Derive(t, y, k1); err != nil {
		return fail(0, err)
	}

	h := cfg.InitialStep
	if h <= 0 {
		var err error
		h, err = initialStep(cs, p.order(), t, y, k1, t1-t0, cfg)
		if err != nil {
			return fail(0, err)
		}
	}
	h = math.Min(h, cfg.MaxStep)

	rejected := false
	for {
		if cfg.MaxSteps > 0 && stats.Steps+stats.Rejected >= cfg.MaxSteps {
			return fail(h, dynamo.ErrTooManySteps)
		}

		last := false
		if t+h >= t1 || t1-(t+h) < cfg.MinStep {
			h = t1 - t
			last = true
		}

		errNorm, err := p.attempt(cs, t, h, y, k1, yNew, cfg.AbsTol, cfg.RelTol)
		if err != nil {
			return fail(h, err)
		}
		if math.IsNaN(errNorm) || math.IsInf(errNorm, 0) {
			return fail(h, dynamo.ErrNonFinite)
		}

		if errNorm > 1 {
			stats.Rejected++
			h *= c.scale(errNorm, p.order(), true)
			if h < cfg.MinStep {
				return fail(h, dynamo.ErrStepTooSmall)
			}
			rejected = true
			continue
		}

		tNew := t + h
		if last {
			tNew = t1
		}
		if err := p.derivativeAtEnd(cs, tNew, yNew, kNew); err != nil {
			return fail(h, err)
		}
		interp, err := p.dense(cs, t, tNew, h, y, yNew, k1, kNew)
		if err != nil {
			return fail(h, err)
		}

		stats.Steps++
		stats.LastStepSize = h
		if err := handler.HandleStep(interp, last); err != nil {
			return fail(h, err)
		}

		t = tNew
		y, yNew = yNew, y
		k1, kNew = kNew, k1
		if last {
			break
		}

		h = math.Min(h*c.scale(errNorm, p.order(), rejected), cfg.MaxStep)
		rejected = false
	}

	stats.Evaluations = cs.evaluations
	stats.FinalTime = t
	return stats, nil
}

// checkedSystem counts evaluations and rejects non-finite derivatives.
type checkedSystem struct {
	dynamo.System
	evaluations int
}

func (s *checkedSystem) Derive(t float64, y, dy dynamo.State) error {
	s.evaluations++
	if err := s.System.Derive(t, y, dy); err != nil {
		return err
	}
	if !dy.IsValid() {
		return fmt.Errorf("%w at t=%g", dynamo.ErrNonFinite, t)
	}
	return nil
}
