package integrators

import (
	"math"

	"github.com/san-kum/heatsim/internal/dynamo"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0

	// continuous output (Shampine)
	d1 = -12715105075.0 / 11282082432.0
	d3 = 87487479700.0 / 32700410799.0
	d4 = -10690763975.0 / 1880347072.0
	d5 = 701980252875.0 / 199316789632.0
	d6 = -1453857185.0 / 822651844.0
	d7 = 69997945.0 / 29380423.0
)

// RK45 is the Dormand-Prince 5(4) pair with 4th order dense output. It uses
// six evaluations per step plus one reused as the first stage of the next.
type RK45 struct {
	controller

	k2, k3, k4, k5, k6, k7 dynamo.State
	xs                     dynamo.State
}

func NewRK45(cfg dynamo.Config) *RK45 {
	return &RK45{controller: newController(cfg)}
}

func (r *RK45) Name() string { return "rk45" }

func (r *RK45) Integrate(sys dynamo.System, t0 float64, y0 dynamo.State, t1 float64, handler dynamo.StepHandler) (dynamo.Stats, error) {
	return r.integrate(sys, r, t0, y0, t1, handler)
}

func (r *RK45) order() int { return 5 }

func (r *RK45) resize(n int) {
	if len(r.xs) == n {
		return
	}
	r.k2 = make(dynamo.State, n)
	r.k3 = make(dynamo.State, n)
	r.k4 = make(dynamo.State, n)
	r.k5 = make(dynamo.State, n)
	r.k6 = make(dynamo.State, n)
	r.k7 = make(dynamo.State, n)
	r.xs = make(dynamo.State, n)
}

func (r *RK45) attempt(sys dynamo.System, t, dt float64, x, k1, xNew dynamo.State, atol, rtol float64) (float64, error) {
	n := len(x)
	xs := r.xs
	k2, k3, k4, k5, k6, k7 := r.k2, r.k3, r.k4, r.k5, r.k6, r.k7

	for i := 0; i < n; i++ {
		xs[i] = x[i] + dt*b21*k1[i]
	}
	if err := sys.Derive(t+a2*dt, xs, k2); err != nil {
		return 0, err
	}

	for i := 0; i < n; i++ {
		xs[i] = x[i] + dt*(b31*k1[i]+b32*k2[i])
	}
	if err := sys.Derive(t+a3*dt, xs, k3); err != nil {
		return 0, err
	}

	for i := 0; i < n; i++ {
		xs[i] = x[i] + dt*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	if err := sys.Derive(t+a4*dt, xs, k4); err != nil {
		return 0, err
	}

	for i := 0; i < n; i++ {
		xs[i] = x[i] + dt*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	if err := sys.Derive(t+a5*dt, xs, k5); err != nil {
		return 0, err
	}

	for i := 0; i < n; i++ {
		xs[i] = x[i] + dt*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	if err := sys.Derive(t+dt, xs, k6); err != nil {
		return 0, err
	}

	for i := 0; i < n; i++ {
		xNew[i] = x[i] + dt*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}
	if err := sys.Derive(t+dt, xNew, k7); err != nil {
		return 0, err
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		errEst := dt * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
		scale := atol + rtol*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		sum += (errEst / scale) * (errEst / scale)
	}
	return math.Sqrt(sum / float64(n)), nil
}

// derivativeAtEnd reuses the last stage of the accepted attempt.
func (r *RK45) derivativeAtEnd(_ dynamo.System, _ float64, _, kNew dynamo.State) error {
	copy(kNew, r.k7)
	return nil
}

func (r *RK45) dense(_ dynamo.System, t, tNew, dt float64, x, xNew, k1, kNew dynamo.State) (dynamo.StepInterpolator, error) {
	n := len(x)
	in := &rk45Interpolator{t0: t, t1: tNew, h: dt}
	for i := range in.r {
		in.r[i] = make(dynamo.State, n)
	}
	for i := 0; i < n; i++ {
		diff := xNew[i] - x[i]
		bspl := dt*k1[i] - diff
		in.r[0][i] = x[i]
		in.r[1][i] = diff
		in.r[2][i] = bspl
		in.r[3][i] = diff - dt*kNew[i] - bspl
		in.r[4][i] = dt * (d1*k1[i] + d3*r.k3[i] + d4*r.k4[i] + d5*r.k5[i] + d6*r.k6[i] + d7*kNew[i])
	}
	return in, nil
}

type rk45Interpolator struct {
	t0, t1, h float64
	r         [5]dynamo.State
}

func (in *rk45Interpolator) PreviousTime() float64 { return in.t0 }
func (in *rk45Interpolator) CurrentTime() float64  { return in.t1 }

func (in *rk45Interpolator) InterpolateInto(t float64, dst dynamo.State) {
	s := (t - in.t0) / in.h
	s1 := 1 - s
	r := in.r
	for i := range dst {
		dst[i] = r[0][i] + s*(r[1][i]+s1*(r[2][i]+s*(r[3][i]+s1*r[4][i])))
	}
}
