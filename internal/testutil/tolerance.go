package testutil

import (
	"math"
	"testing"

	"golang.org/x/exp/constraints"
)

// RequireSliceNearlyEqual stops the test at the first element pair that
// differs by more than eps.
func RequireSliceNearlyEqual[T constraints.Float](t testing.TB, got, want []T, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
		return
	}
	for i := range got {
		if d := math.Abs(float64(got[i]) - float64(want[i])); d > eps {
			t.Fatalf("[%d] = %v, want %v (|diff| %g > %g)", i, got[i], want[i], d, eps)
			return
		}
	}
}

// RequireFinite stops the test at the first NaN or Inf.
func RequireFinite[T constraints.Float](t testing.TB, x []T) {
	t.Helper()
	for i, v := range x {
		if f := float64(v); math.IsNaN(f) || math.IsInf(f, 0) {
			t.Fatalf("[%d] = %v, want finite", i, v)
			return
		}
	}
}

// RequireSilent stops the test at the first non-zero sample.
func RequireSilent[T constraints.Float](t testing.TB, x []T) {
	t.Helper()
	for i, v := range x {
		if v != 0 {
			t.Fatalf("[%d] = %v, want silence", i, v)
			return
		}
	}
}
