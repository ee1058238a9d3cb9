package expr

import (
	"errors"
	"fmt"
	"math"

	"github.com/stevehiehn/calcengine/internal/mathx"
)

// builtin is a whitelisted function. Arity bounds are inclusive; maxArgs < 0
// means variadic.
type builtin struct {
	minArgs, maxArgs int
	fn               func(args []float64) (float64, error)
}

var errDomain = errors.New("math domain error")

func unary(f func(float64) float64) builtin {
	return builtin{minArgs: 1, maxArgs: 1, fn: func(a []float64) (float64, error) {
		return f(a[0]), nil
	}}
}

var builtins = map[string]builtin{
	"abs": unary(math.Abs),
	"round": {minArgs: 1, maxArgs: 2, fn: func(a []float64) (float64, error) {
		places := 0
		if len(a) == 2 {
			if a[1] != math.Trunc(a[1]) {
				return 0, fmt.Errorf("round() ndigits must be an integer")
			}
			// Clamp before converting; Round treats anything past its
			// bounds the same way.
			places = int(math.Max(mathx.MinPlaces-1, math.Min(mathx.MaxPlaces+1, a[1])))
		}
		return mathx.Round(a[0], places), nil
	}},
	"min": {minArgs: 2, maxArgs: -1, fn: func(a []float64) (float64, error) {
		m := a[0]
		for _, x := range a[1:] {
			if x < m {
				m = x
			}
		}
		return m, nil
	}},
	"max": {minArgs: 2, maxArgs: -1, fn: func(a []float64) (float64, error) {
		m := a[0]
		for _, x := range a[1:] {
			if x > m {
				m = x
			}
		}
		return m, nil
	}},
	"pow": {minArgs: 2, maxArgs: 2, fn: func(a []float64) (float64, error) {
		return power(a[0], a[1])
	}},
	"sqrt": {minArgs: 1, maxArgs: 1, fn: func(a []float64) (float64, error) {
		if a[0] < 0 {
			return 0, errDomain
		}
		return math.Sqrt(a[0]), nil
	}},
	"log": {minArgs: 1, maxArgs: 2, fn: func(a []float64) (float64, error) {
		if a[0] <= 0 {
			return 0, errDomain
		}
		if len(a) == 1 {
			return math.Log(a[0]), nil
		}
		if a[1] <= 0 || a[1] == 1 {
			return 0, errDomain
		}
		return math.Log(a[0]) / math.Log(a[1]), nil
	}},
	"log10": {minArgs: 1, maxArgs: 1, fn: func(a []float64) (float64, error) {
		if a[0] <= 0 {
			return 0, errDomain
		}
		return math.Log10(a[0]), nil
	}},
	"exp":   unary(math.Exp),
	"floor": unary(math.Floor),
	"ceil":  unary(math.Ceil),
	"sin":   unary(math.Sin),
	"cos":   unary(math.Cos),
	"tan":   unary(math.Tan),
}

// IsBuiltin reports whether name is a whitelisted function.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

func (b builtin) checkArity(name string, n int) error {
	switch {
	case b.minArgs == b.maxArgs && n != b.minArgs:
		return fmt.Errorf("%s() takes exactly %d argument(s) (%d given)", name, b.minArgs, n)
	case n < b.minArgs:
		return fmt.Errorf("%s() takes at least %d argument(s) (%d given)", name, b.minArgs, n)
	case b.maxArgs >= 0 && n > b.maxArgs:
		return fmt.Errorf("%s() takes at most %d argument(s) (%d given)", name, b.maxArgs, n)
	}
	return nil
}

func power(x, y float64) (float64, error) {
	if x == 0 && y < 0 {
		return 0, fmt.Errorf("zero cannot be raised to a negative power")
	}
	if x < 0 && y != math.Trunc(y) {
		return 0, errDomain
	}
	return math.Pow(x, y), nil
}
