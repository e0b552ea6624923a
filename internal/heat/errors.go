package heat

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter is matched by every ParameterError.
	ErrInvalidParameter = errors.New("heat: invalid numeric parameter")

	// ErrEvaluation is matched by every EvaluationError.
	ErrEvaluation = errors.New("heat: function evaluation failed")

	// ErrQueryOutOfRange indicates a query outside the integrated domain.
	ErrQueryOutOfRange = errors.New("heat: query outside the integrated domain")

	errNonFiniteValue = errors.New("non-finite value")
)

// ParameterError reports one rejected problem parameter.
type ParameterError struct {
	Name   string
	Value  any
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Name, e.Value, e.Reason)
}

func (e *ParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}

// EvaluationError reports a failing initial or boundary function.
type EvaluationError struct {
	Function string // "initial", "left" or "right"
	Arg      float64
	Wrapped  error
}

func (e *EvaluationError) Error() string {
	arg := "t"
	if e.Function == "initial" {
		arg = "x"
	}
	return fmt.Sprintf("evaluating %s function at %s=%g: %v", e.Function, arg, e.Arg, e.Wrapped)
}

func (e *EvaluationError) Unwrap() error {
	return e.Wrapped
}

func (e *EvaluationError) Is(target error) bool {
	return target == ErrEvaluation
}
