package core

import "math"

// denormalFloor is the magnitude below which feedback state is zeroed.
const denormalFloor = 1e-30

// Clamp limits v to [lo, hi]. Swapped bounds are accepted.
func Clamp(v, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	return max(lo, min(hi, v))
}

// FlushDenormals zeroes values too small to be audible so recursive
// filters never decay into the subnormal range.
func FlushDenormals(x float64) float64 {
	if math.Abs(x) < denormalFloor {
		return 0
	}
	return x
}

// IsFinite reports whether x is neither NaN nor an infinity.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Wrap01 folds a phase into [0, 1).
func Wrap01(x float64) float64 {
	x -= math.Floor(x)
	if x >= 1 {
		return 0
	}
	return x
}
