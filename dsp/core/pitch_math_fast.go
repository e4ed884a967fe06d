//go:build fastmath

package core

import "github.com/meko-christian/algo-approx"

const ln2 = 0.693147180559945309417232121458

// mathPower2 computes 2^x as e^(x*ln2) using the fast approximation.
func mathPower2(x float64) float64 {
	return approx.FastExp(x * ln2)
}
