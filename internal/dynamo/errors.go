package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for integration.
var (
	// ErrNonFinite indicates a derivative evaluation produced NaN or Inf.
	ErrNonFinite = errors.New("dynamo: non-finite derivative (NaN or Inf detected)")

	// ErrStepTooSmall indicates the adaptive step fell below the minimum
	// without meeting the tolerance.
	ErrStepTooSmall = errors.New("dynamo: adaptive step below minimum")

	// ErrTooManySteps indicates the step budget ran out before t1.
	ErrTooManySteps = errors.New("dynamo: maximum number of steps exceeded")

	// ErrDimensionMismatch indicates mismatched state/system dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")

	// ErrInvalidInterval indicates t1 does not lie after t0.
	ErrInvalidInterval = errors.New("dynamo: integration interval is empty or reversed")

	// ErrInvalidConfig indicates integrator settings outside their valid range.
	ErrInvalidConfig = errors.New("dynamo: invalid integrator configuration")
)

// IntegrationError wraps a fatal integration failure with the point where
// the integrator stopped.
type IntegrationError struct {
	Step         int
	LastAccepted float64
	Time         float64
	StepSize     float64
	Wrapped      error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("integration failed at step %d (last accepted t=%.6g, trial t=%.6g, h=%.3g): %v",
		e.Step, e.LastAccepted, e.Time, e.StepSize, e.Wrapped)
}

func (e *IntegrationError) Unwrap() error {
	return e.Wrapped
}
