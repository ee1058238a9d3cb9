// Package mathx holds the numeric helpers shared by the expression evaluator
// and the rule functions.
package mathx

import (
	"math"
	"strconv"
)

// Beyond these bounds rounding cannot change a float64: every finite value
// has at most 323 significant decimal places, and 10**309 exceeds the largest
// finite value.
const (
	MaxPlaces = 323
	MinPlaces = -308
)

// Round rounds x to the given number of decimal places using round-half-to-even
// on the exact binary value of x, so Round(2.675, 2) is 2.67 and Round(2.5, 0)
// is 2. Negative places round to tens, hundreds and so on. Places above
// MaxPlaces return x unchanged and places below MinPlaces return a zero with
// the sign of x.
func Round(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	if places > MaxPlaces {
		return x
	}
	if places < MinPlaces {
		return math.Copysign(0, x)
	}
	if places < 0 {
		scale := math.Pow(10, float64(-places))
		return math.RoundToEven(x/scale) * scale
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', places, 64), 64)
	if err != nil {
		return x
	}
	return r
}

// FloorMod returns x modulo y with the sign of y. y must be non-zero.
func FloorMod(x, y float64) float64 {
	r := math.Mod(x, y)
	if r != 0 && (r < 0) != (y < 0) {
		r += y
	}
	return r
}

// FloorDiv returns the floor of x / y. y must be non-zero.
func FloorDiv(x, y float64) float64 {
	return math.Floor(x / y)
}

// Finite reports whether x is neither NaN nor infinite.
func Finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
