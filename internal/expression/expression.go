// Package expression compiles the one-variable formulas used for initial and
// boundary data, such as "sin(PI*x)" or "2*t^2 - 1".
//
// Available constants are PI and E. Functions: sin cos tan asin acos atan
// sinh cosh tanh exp log log10 sqrt abs pow min max floor ceil deg rad.
// Trigonometric functions take radians; deg and rad convert.
package expression

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/san-kum/heatsim/internal/heat"
)

var ErrSyntax = errors.New("expression: invalid expression")

type unary func(float64) float64

var unaryFuncs = map[string]unary{
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"asin":  math.Asin,
	"acos":  math.Acos,
	"atan":  math.Atan,
	"sinh":  math.Sinh,
	"cosh":  math.Cosh,
	"tanh":  math.Tanh,
	"exp":   math.Exp,
	"log":   math.Log,
	"log10": math.Log10,
	"sqrt":  math.Sqrt,
	"abs":   math.Abs,
	"floor": math.Floor,
	"ceil":  math.Ceil,
	"deg":   func(r float64) float64 { return r * 180 / math.Pi },
	"rad":   func(d float64) float64 { return d * math.Pi / 180 },
}

var binaryFuncs = map[string]func(a, b float64) float64{
	"pow": math.Pow,
	"min": math.Min,
	"max": math.Max,
}

// Expression is a compiled formula in one variable. It is not safe for
// concurrent use.
type Expression struct {
	src      string
	variable string
	program  *vm.Program
	env      map[string]any
}

// Compile parses src as a function of the named variable.
func Compile(src, variable string) (*Expression, error) {
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrSyntax)
	}
	env := map[string]any{
		variable: 0.0,
		"PI":     math.Pi,
		"E":      math.E,
	}
	program, err := expr.Compile(src, options(env)...)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrSyntax, src, err)
	}
	return &Expression{src: src, variable: variable, program: program, env: env}, nil
}

func options(env map[string]any) []expr.Option {
	opts := []expr.Option{expr.Env(env), expr.DisableAllBuiltins()}
	for name, fn := range unaryFuncs {
		opts = append(opts, expr.Function(name, wrapUnary(name, fn)))
	}
	for name, fn := range binaryFuncs {
		opts = append(opts, expr.Function(name, wrapBinary(name, fn)))
	}
	return opts
}

func wrapUnary(name string, fn unary) func(params ...any) (any, error) {
	return func(params ...any) (any, error) {
		if len(params) != 1 {
			return nil, fmt.Errorf("%s takes 1 argument, got %d", name, len(params))
		}
		v, err := toFloat(params[0])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return fn(v), nil
	}
}

func wrapBinary(name string, fn func(a, b float64) float64) func(params ...any) (any, error) {
	return func(params ...any) (any, error) {
		if len(params) != 2 {
			return nil, fmt.Errorf("%s takes 2 arguments, got %d", name, len(params))
		}
		a, err := toFloat(params[0])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		b, err := toFloat(params[1])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return fn(a, b), nil
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("non-numeric value %v (%T)", v, v)
}

func (e *Expression) String() string { return e.src }

// Variable is the name bound to the argument.
func (e *Expression) Variable() string { return e.variable }

// Eval evaluates the expression at v.
func (e *Expression) Eval(v float64) (float64, error) {
	e.env[e.variable] = v
	out, err := expr.Run(e.program, e.env)
	if err != nil {
		return 0, err
	}
	return toFloat(out)
}

// Func adapts the expression to a heat.Func.
func (e *Expression) Func() heat.Func {
	return e.Eval
}

// CompileFunc compiles src and returns it as a heat.Func.
func CompileFunc(src, variable string) (heat.Func, error) {
	e, err := Compile(src, variable)
	if err != nil {
		return nil, err
	}
	return e.Func(), nil
}
