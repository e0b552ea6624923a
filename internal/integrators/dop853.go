package integrators

import (
	"math"

	"github.com/san-kum/heatsim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// Dormand-Prince 8(5,3) coefficients with the 7th order dense output of
// Hairer, Norsett & Wanner, "Solving Ordinary Differential Equations I",
// 2nd ed., section II.10 (DOP853).

var dop853C = [16]float64{
	0, 0.05260015195876773, 0.0789002279381516, 0.1183503419072274, 0.2816496580927726, 0.3333333333333333, 0.25, 0.3076923076923077,
	0.6512820512820513, 0.6, 0.8571428571428571, 1.0, 1.0, 0.1, 0.2, 0.7777777777777778,
}

// dop853A holds the strictly lower triangular stage matrix. Row 12 is the
// evaluation at t+h of the accepted solution and is never built from it.
var dop853A = [16][]float64{
	{},
	{0.05260015195876773},
	{0.0197250569845379, 0.0591751709536137},
	{0.02958758547680685, 0, 0.08876275643042054},
	{0.2413651341592667, 0, -0.8845494793282861, 0.924834003261792},
	{0.037037037037037035, 0, 0, 0.17082860872947386, 0.12546768756682242},
	{0.037109375, 0, 0, 0.17025221101954405, 0.06021653898045596, -0.017578125},
	{0.03709200011850479, 0, 0, 0.17038392571223998, 0.10726203044637328, -0.015319437748624402, 0.008273789163814023},
	{0.6241109587160757, 0, 0, -3.3608926294469414, -0.868219346841726, 27.59209969944671, 20.154067550477894, -43.48988418106996},
	{0.47766253643826434, 0, 0, -2.4881146199716677, -0.590290826836843, 21.230051448181193, 15.279233632882423, -33.28821096898486, -0.020331201708508627},
	{-0.9371424300859873, 0, 0, 5.186372428844064, 1.0914373489967295, -8.149787010746927, -18.52006565999696, 22.739487099350505, 2.4936055526796523, -3.0467644718982196},
	{2.273310147516538, 0, 0, -10.53449546673725, -2.0008720582248625, -17.9589318631188, 27.94888452941996, -2.8589982771350235, -8.87285693353063, 12.360567175794303, 0.6433927460157636},
	nil,
	{0.056167502283047954, 0, 0, 0, 0, 0, 0.25350021021662483, -0.2462390374708025, -0.12419142326381637, 0.15329179827876568, 0.00820105229563469, 0.007567897660545699, -0.008298},
	{0.03183464816350214, 0, 0, 0, 0, 0.028300909672366776, 0.053541988307438566, -0.05492374857139099, 0, 0, -0.00010834732869724932, 0.0003825710908356584, -0.00034046500868740456, 0.1413124436746325},
	{-0.42889630158379194, 0, 0, 0, 0, -4.697621415361164, 7.683421196062599, 4.06898981839711, 0.3567271874552811, 0, 0, 0, -0.0013990241651590145, 2.9475147891527724, -9.15095847217987},
}

var dop853B = [12]float64{
	0.054293734116568765, 0, 0, 0, 0, 4.450312892752409, 1.8915178993145003, -5.801203960010585, 0.3111643669578199, -0.1521609496625161, 0.20136540080403034, 0.04471061572777259,
}

var dop853E5 = [12]float64{
	0.01312004499419488, 0, 0, 0, 0, -1.2251564463762044, -0.4957589496572502, 1.6643771824549864, -0.35032884874997366, 0.3341791187130175, 0.08192320648511571, -0.022355307863886294,
}

// dop853BHH weights the 3rd order embedded solution used by the error
// estimate. Its last weight multiplies stage 12, the evaluation at t+h.
var dop853BHH = [12]float64{
	0.2440944881889764, 0, 0, 0, 0, 0, 0, 0, 0.7338466882816118, 0, 0, 0.022058823529411766,
}

// dop853D holds the coefficients of the four dense-output polynomials.
var dop853D = [4][16]float64{
	{-8.428938276109013, 0, 0, 0, 0, 0.5667149535193777, -3.0689499459498917, 2.38466765651207, 2.117034582445028, -0.871391583777973, 2.2404374302607883, 0.6315787787694688, -0.08899033645133331, 18.148505520854727, -9.194632392478356, -4.436036387594894},
	{10.427508642579134, 0, 0, 0, 0, 242.28349177525817, 165.20045171727028, -374.5467547226902, -22.113666853125306, 7.733432668472264, -30.674084731089398, -9.332130526430229, 15.697238121770845, -31.139403219565178, -9.35292435884448, 35.81684148639408},
	{19.985053242002433, 0, 0, 0, 0, -387.0373087493518, -189.17813819516758, 527.8081592054236, -11.57390253995963, 6.8812326946963, -1.0006050966910838, 0.7777137798053443, -2.778205752353508, -60.19669523126412, 84.32040550667716, 11.99229113618279},
	{-25.69393346270375, 0, 0, 0, 0, -154.18974869023643, -231.5293791760455, 357.6391179106141, 93.40532418362432, -37.45832313645163, 104.0996495089623, 29.8402934266605, -43.53345659001114, 96.32455395918828, -39.17726167561544, -149.72683625798564},
}

// DormandPrince853 is an explicit embedded Runge-Kutta integrator of order 8
// with adaptive step size control and 7th order continuous output.
type DormandPrince853 struct {
	controller

	k    [16]dynamo.State
	ytmp dynamo.State
	bsum dynamo.State
}

func NewDormandPrince853(cfg dynamo.Config) *DormandPrince853 {
	return &DormandPrince853{controller: newController(cfg)}
}

func (d *DormandPrince853) Name() string { return "dop853" }

func (d *DormandPrince853) Integrate(sys dynamo.System, t0 float64, y0 dynamo.State, t1 float64, handler dynamo.StepHandler) (dynamo.Stats, error) {
	return d.integrate(sys, d, t0, y0, t1, handler)
}

func (d *DormandPrince853) order() int { return 8 }

func (d *DormandPrince853) resize(n int) {
	if len(d.ytmp) == n {
		return
	}
	for i := range d.k {
		d.k[i] = make(dynamo.State, n)
	}
	d.ytmp = make(dynamo.State, n)
	d.bsum = make(dynamo.State, n)
}

// stage evaluates stage i from the stages already stored in d.k.
func (d *DormandPrince853) stage(sys dynamo.System, i int, t, h float64, y dynamo.State) error {
	copy(d.ytmp, y)
	for j, a := range dop853A[i] {
		if a != 0 {
			floats.AddScaled(d.ytmp, h*a, d.k[j])
		}
	}
	return sys.Derive(t+dop853C[i]*h, d.ytmp, d.k[i])
}

func (d *DormandPrince853) attempt(sys dynamo.System, t, h float64, y, k1, yNew dynamo.State, atol, rtol float64) (float64, error) {
	copy(d.k[0], k1)
	for i := 1; i < 12; i++ {
		if err := d.stage(sys, i, t, h, y); err != nil {
			return 0, err
		}
	}

	for i := range d.bsum {
		d.bsum[i] = 0
	}
	for j, b := range dop853B {
		if b != 0 {
			floats.AddScaled(d.bsum, b, d.k[j])
		}
	}
	floats.AddScaledTo(yNew, y, h, d.bsum)

	var err5, err3 float64
	for i := range y {
		sk := atol + rtol*math.Max(math.Abs(y[i]), math.Abs(yNew[i]))
		e3 := d.bsum[i]
		e5 := 0.0
		for j := 0; j < 12; j++ {
			e3 -= dop853BHH[j] * d.k[j][i]
			e5 += dop853E5[j] * d.k[j][i]
		}
		err3 += (e3 / sk) * (e3 / sk)
		err5 += (e5 / sk) * (e5 / sk)
	}
	deno := err5 + 0.01*err3
	if deno <= 0 {
		deno = 1
	}
	return math.Abs(h) * err5 * math.Sqrt(1/(float64(len(y))*deno)), nil
}

func (d *DormandPrince853) derivativeAtEnd(sys dynamo.System, tNew float64, yNew, kNew dynamo.State) error {
	return sys.Derive(tNew, yNew, kNew)
}

func (d *DormandPrince853) dense(sys dynamo.System, t, tNew, h float64, y, yNew, k1, kNew dynamo.State) (dynamo.StepInterpolator, error) {
	copy(d.k[12], kNew)
	for i := 13; i < 16; i++ {
		if err := d.stage(sys, i, t, h, y); err != nil {
			return nil, err
		}
	}

	n := len(y)
	in := &dop853Interpolator{t0: t, t1: tNew, h: h}
	for i := range in.r {
		in.r[i] = make(dynamo.State, n)
	}
	copy(in.r[0], y)
	for i := 0; i < n; i++ {
		diff := yNew[i] - y[i]
		bspl := h*k1[i] - diff
		in.r[1][i] = diff
		in.r[2][i] = bspl
		in.r[3][i] = diff - h*kNew[i] - bspl
	}
	for p := range dop853D {
		r := in.r[4+p]
		for j, c := range dop853D[p] {
			if c != 0 {
				floats.AddScaled(r, h*c, d.k[j])
			}
		}
	}
	return in, nil
}

type dop853Interpolator struct {
	t0, t1, h float64
	r         [8]dynamo.State
}

func (in *dop853Interpolator) PreviousTime() float64 { return in.t0 }
func (in *dop853Interpolator) CurrentTime() float64  { return in.t1 }

func (in *dop853Interpolator) InterpolateInto(t float64, dst dynamo.State) {
	s := (t - in.t0) / in.h
	s1 := 1 - s
	r := in.r
	for i := range dst {
		conpar := r[4][i] + s*(r[5][i]+s1*(r[6][i]+s*r[7][i]))
		dst[i] = r[0][i] + s*(r[1][i]+s1*(r[2][i]+s*(r[3][i]+s1*conpar)))
	}
}
