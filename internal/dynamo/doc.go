// Package dynamo provides core primitives for integrating ordinary
// differential equations produced by a method-of-lines discretization.
//
// The package defines the interfaces shared by the integrators and the
// problems they advance:
//
//   - [State]: vector representing the integrated unknowns
//   - [System]: interface for ODE systems (dy/dt = f(t, y))
//   - [StepInterpolator]: dense output over one accepted step
//   - [StepHandler]: receives every accepted step
//   - [Integrator]: advances a [System] from t0 to t1
//
// # Example
//
//	eq := heat.NewEquation(mesh, scheme, model)
//	integ := integrators.NewDormandPrince853(dynamo.DefaultConfig())
//	stats, err := integ.Integrate(eq, 0, y0, 1, model)
//
// # Thread Safety
//
// Integrators and systems keep scratch buffers between calls and are NOT
// safe for concurrent use. Create one per solve.
package dynamo
