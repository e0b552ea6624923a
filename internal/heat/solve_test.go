package heat_test

import (
	"errors"
	"math"

	g "github.com/onsi/ginkgo/v2"
	o "github.com/onsi/gomega"
	"go.uber.org/multierr"

	"github.com/san-kum/heatsim/internal/dynamo"
	"github.com/san-kum/heatsim/internal/heat"
	"github.com/san-kum/heatsim/internal/integrators"
)

func sinePi(x float64) (float64, error) { return math.Sin(math.Pi * x), nil }

func sineDecay(points int) heat.Problem {
	return heat.Problem{
		Points:  points,
		Kind:    heat.FixedValue,
		Initial: sinePi,
		Left:    heat.Constant(0),
		Right:   heat.Constant(0),
		T0:      0,
		T1:      0.1,
		RelTol:  1e-8,
		AbsTol:  1e-8,
	}
}

var _ = g.Describe("Solve", func() {
	g.Context("sin(pi x) with zero Dirichlet data", func() {
		var (
			model *heat.Model
			stats dynamo.Stats
		)

		g.BeforeEach(func() {
			var err error
			model, stats, err = heat.Solve(sineDecay(50))
			o.Expect(err).NotTo(o.HaveOccurred())
		})

		g.It("matches the analytic solution within the spatial error", func() {
			u, err := model.FieldAt(0.5, 0.1)
			o.Expect(err).NotTo(o.HaveOccurred())
			o.Expect(u).To(o.BeNumerically("~", math.Exp(-math.Pi*math.Pi*0.1), 5e-4))
		})

		g.It("matches the exact semi-discrete solution within the tolerance", func() {
			mesh := model.Mesh()
			dx := mesh.DeltaX()
			lambda := 4 / (dx * dx) * math.Pow(math.Sin(math.Pi*dx/2), 2)
			for _, t := range []float64{0, 0.013, 0.05, 0.0777, 0.1} {
				u, err := model.Sample(t)
				o.Expect(err).NotTo(o.HaveOccurred())
				for i, v := range u {
					want := math.Sin(math.Pi*mesh.InteriorX(i)) * math.Exp(-lambda*t)
					o.Expect(v).To(o.BeNumerically("~", want, 1e-7), "t=%g node %d", t, i)
				}
			}
		})

		g.It("returns D+2 values for every time", func() {
			for i := 0; i <= 20; i++ {
				full, err := model.FullState(0.1 * float64(i) / 20)
				o.Expect(err).NotTo(o.HaveOccurred())
				o.Expect(full).To(o.HaveLen(50))
			}
		})

		g.It("returns node values exactly", func() {
			full, err := model.FullState(0.04)
			o.Expect(err).NotTo(o.HaveOccurred())
			for i := range full {
				x := float64(i) / 49
				u, err := model.FieldAt(x, 0.04)
				o.Expect(err).NotTo(o.HaveOccurred())
				o.Expect(u).To(o.Equal(full[i]))
			}
		})

		g.It("answers repeated queries identically", func() {
			a, err := model.Sample(0.0312)
			o.Expect(err).NotTo(o.HaveOccurred())
			b, err := model.Sample(0.0312)
			o.Expect(err).NotTo(o.HaveOccurred())
			o.Expect(b).To(o.Equal(a))

			f1, _ := model.FieldAt(0.3337, 0.071)
			f2, _ := model.FieldAt(0.3337, 0.071)
			o.Expect(f2).To(o.Equal(f1))
		})

		g.It("reports step statistics from the step times", func() {
			o.Expect(model.StepCount()).To(o.BeNumerically(">=", 1))
			o.Expect(model.StepCount()).To(o.Equal(stats.Steps))

			times := model.StepTimes()
			n := len(times)
			o.Expect(times[n-1]).To(o.Equal(0.1))
			o.Expect(model.AverageStepSize()).To(o.Equal((times[n-1] - times[0]) / float64(n-1)))
		})

		g.It("rejects queries outside the domain", func() {
			_, err := model.FieldAt(1.01, 0.05)
			o.Expect(errors.Is(err, heat.ErrQueryOutOfRange)).To(o.BeTrue())
			_, err = model.FieldAt(0.5, -0.001)
			o.Expect(errors.Is(err, heat.ErrQueryOutOfRange)).To(o.BeTrue())
			_, err = model.Sample(0.2)
			o.Expect(errors.Is(err, heat.ErrQueryOutOfRange)).To(o.BeTrue())
		})
	})

	g.DescribeTable("keeps the semi-discrete error proportional to the tolerance",
		func(tol float64) {
			p := sineDecay(50)
			p.RelTol, p.AbsTol = tol, tol
			model, stats, err := heat.Solve(p)
			o.Expect(err).NotTo(o.HaveOccurred())

			mesh := model.Mesh()
			dx := mesh.DeltaX()
			lambda := 4 / (dx * dx) * math.Pow(math.Sin(math.Pi*dx/2), 2)
			worst := 0.0
			for _, t := range model.StepTimes() {
				u, err := model.Sample(t)
				o.Expect(err).NotTo(o.HaveOccurred())
				for i, v := range u {
					want := math.Sin(math.Pi*mesh.InteriorX(i)) * math.Exp(-lambda*t)
					worst = math.Max(worst, math.Abs(v-want))
				}
			}
			o.Expect(worst).To(o.BeNumerically("<", 10*tol))
			o.Expect(stats.Rejected).To(o.BeNumerically("<=", stats.Steps/3))
		},
		g.Entry("loose", 1e-6),
		g.Entry("default", 1e-8),
		g.Entry("tight", 1e-10),
	)

	g.It("agrees between the two integrators", func() {
		p := sineDecay(21)
		dop, _, err := heat.Solve(p)
		o.Expect(err).NotTo(o.HaveOccurred())

		p.NewIntegrator = func(cfg dynamo.Config) dynamo.Integrator { return integrators.NewRK45(cfg) }
		rk, _, err := heat.Solve(p)
		o.Expect(err).NotTo(o.HaveOccurred())

		for _, x := range []float64{0.1, 0.25, 0.5, 0.9} {
			a, _ := dop.FieldAt(x, 0.07)
			b, _ := rk.FieldAt(x, 0.07)
			o.Expect(a).To(o.BeNumerically("~", b, 1e-6))
		}
	})

	g.It("keeps a constant state in equilibrium", func() {
		c := 2.5
		p := heat.Problem{
			Points: 12, Kind: heat.FixedValue,
			Initial: heat.Constant(c), Left: heat.Constant(c), Right: heat.Constant(c),
			T1: 1, RelTol: 1e-8, AbsTol: 1e-8,
		}
		model, _, err := heat.Solve(p)
		o.Expect(err).NotTo(o.HaveOccurred())
		for _, t := range []float64{0, 0.3, 1} {
			for _, x := range []float64{0, 0.2, 0.55, 1} {
				u, err := model.FieldAt(x, t)
				o.Expect(err).NotTo(o.HaveOccurred())
				o.Expect(u).To(o.BeNumerically("~", c, 1e-10))
			}
		}
	})

	g.It("reproduces Dirichlet data at sample times", func() {
		p := sineDecay(30)
		p.Left = func(t float64) (float64, error) { return 3 * t, nil }
		p.Right = func(t float64) (float64, error) { return 1 - t*t, nil }
		model, _, err := heat.Solve(p)
		o.Expect(err).NotTo(o.HaveOccurred())

		samples := model.BoundarySamples()
		o.Expect(samples).NotTo(o.BeEmpty())
		for _, s := range samples {
			if s.Time > model.EndTime() {
				continue
			}
			full, err := model.FullState(s.Time)
			o.Expect(err).NotTo(o.HaveOccurred())
			o.Expect(full[0]).To(o.Equal(3 * s.Time))
			o.Expect(full[len(full)-1]).To(o.Equal(1 - s.Time*s.Time))
		}
	})

	g.Context("with Neumann data", func() {
		g.It("keeps the unit-slope line steady", func() {
			p := heat.Problem{
				Points: 20, Kind: heat.FixedFlux,
				Initial: func(x float64) (float64, error) { return x, nil },
				Left:    heat.Constant(1), Right: heat.Constant(1),
				T1: 0.5, RelTol: 1e-8, AbsTol: 1e-8,
			}
			model, _, err := heat.Solve(p)
			o.Expect(err).NotTo(o.HaveOccurred())
			for _, x := range []float64{0, 0.31, 0.5, 1} {
				u, err := model.FieldAt(x, 0.5)
				o.Expect(err).NotTo(o.HaveOccurred())
				o.Expect(u).To(o.BeNumerically("~", x, 1e-8))
			}
		})

		g.It("decays cos(pi x) with insulated ends", func() {
			p := heat.Problem{
				Points: 50, Kind: heat.FixedFlux,
				Initial: func(x float64) (float64, error) { return math.Cos(math.Pi * x), nil },
				Left:    heat.Constant(0), Right: heat.Constant(0),
				T1: 0.1, RelTol: 1e-8, AbsTol: 1e-8,
			}
			model, _, err := heat.Solve(p)
			o.Expect(err).NotTo(o.HaveOccurred())
			decay := math.Exp(-math.Pi * math.Pi * 0.1)
			for _, x := range []float64{0, 0.25, 0.75, 1} {
				u, err := model.FieldAt(x, 0.1)
				o.Expect(err).NotTo(o.HaveOccurred())
				o.Expect(u).To(o.BeNumerically("~", math.Cos(math.Pi*x)*decay, 5e-3))
			}
		})
	})

	g.Context("failures", func() {
		g.It("reports every invalid parameter before integrating", func() {
			calls := 0
			p := heat.Problem{
				Points:  3,
				Kind:    heat.FixedValue,
				Initial: func(float64) (float64, error) { calls++; return 0, nil },
				Left:    heat.Constant(0),
				Right:   heat.Constant(0),
				T0:      1, T1: 0.5,
				RelTol: 1e-8, AbsTol: -1,
			}
			model, _, err := heat.Solve(p)
			o.Expect(model).To(o.BeNil())
			o.Expect(errors.Is(err, heat.ErrInvalidParameter)).To(o.BeTrue())
			o.Expect(multierr.Errors(err)).To(o.HaveLen(3))
			o.Expect(calls).To(o.Equal(0))
		})

		g.It("aborts when a boundary function fails", func() {
			boom := errors.New("domain error")
			p := sineDecay(20)
			p.Left = func(t float64) (float64, error) {
				if t > 0.05 {
					return 0, boom
				}
				return 0, nil
			}
			model, _, err := heat.Solve(p)
			o.Expect(model).To(o.BeNil())
			o.Expect(errors.Is(err, heat.ErrEvaluation)).To(o.BeTrue())
			o.Expect(errors.Is(err, boom)).To(o.BeTrue())

			var ee *heat.EvaluationError
			o.Expect(errors.As(err, &ee)).To(o.BeTrue())
			o.Expect(ee.Function).To(o.Equal("left"))
			o.Expect(ee.Arg).To(o.BeNumerically(">", 0.05))

			var ie *dynamo.IntegrationError
			o.Expect(errors.As(err, &ie)).To(o.BeTrue())
			o.Expect(ie.LastAccepted).To(o.BeNumerically("<=", 0.05))
		})

		g.It("rejects a non-finite initial value", func() {
			p := sineDecay(10)
			p.Initial = func(x float64) (float64, error) { return 1 / (x - 1.0/9), nil }
			_, _, err := heat.Solve(p)

			var ee *heat.EvaluationError
			o.Expect(errors.As(err, &ee)).To(o.BeTrue())
			o.Expect(ee.Function).To(o.Equal("initial"))
		})
	})
})
