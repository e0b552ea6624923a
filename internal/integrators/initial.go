package integrators

import (
	"math"

	"github.com/san-kum/heatsim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// initialStep guesses a first step size from the size of y0, f(t0, y0) and a
// finite-difference estimate of the second derivative (Hairer, Norsett &
// Wanner, section II.4).
func initialStep(sys dynamo.System, order int, t0 float64, y0, f0 dynamo.State, span float64, cfg dynamo.Config) (float64, error) {
	n := len(y0)
	var dnf, dny float64
	for i := 0; i < n; i++ {
		sk := cfg.AbsTol + cfg.RelTol*math.Abs(y0[i])
		dnf += (f0[i] / sk) * (f0[i] / sk)
		dny += (y0[i] / sk) * (y0[i] / sk)
	}

	var h float64
	if dnf <= 1e-10 || dny <= 1e-10 {
		h = 1e-6
	} else {
		h = 0.01 * math.Sqrt(dny/dnf)
	}
	h = math.Min(h, math.Min(cfg.MaxStep, span))

	y1 := make(dynamo.State, n)
	floats.AddScaledTo(y1, y0, h, f0)
	f1 := make(dynamo.State, n)
	if err := sys.Derive(t0+h, y1, f1); err != nil {
		return 0, err
	}

	var der2 float64
	for i := 0; i < n; i++ {
		sk := cfg.AbsTol + cfg.RelTol*math.Abs(y0[i])
		d := (f1[i] - f0[i]) / sk
		der2 += d * d
	}
	der2 = math.Sqrt(der2) / h

	der12 := math.Max(der2, math.Sqrt(dnf))
	var h1 float64
	if der12 <= 1e-15 {
		h1 = math.Max(1e-6, h*1e-3)
	} else {
		h1 = math.Pow(0.01/der12, 1/float64(order))
	}

	return math.Min(math.Min(100*h, h1), math.Min(cfg.MaxStep, span)), nil
}
