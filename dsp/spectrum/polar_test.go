package spectrum

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestPolarRoundTrip(t *testing.T) {
	in := []complex128{1, 1i, -2 + 2i, complex(0.3, -0.4), -5}
	n := len(in)
	re := make([]float64, n)
	im := make([]float64, n)
	mag := make([]float64, n)
	phase := make([]float64, n)
	Split(re, im, in)
	MagnitudeFromParts(mag, re, im)
	PhaseFromParts(phase, re, im)

	for i, c := range in {
		if math.Abs(mag[i]-cmplx.Abs(c)) > 1e-12 {
			t.Fatalf("mag[%d] = %v, want %v", i, mag[i], cmplx.Abs(c))
		}
		if math.Abs(phase[i]-cmplx.Phase(c)) > 1e-12 {
			t.Fatalf("phase[%d] = %v, want %v", i, phase[i], cmplx.Phase(c))
		}
	}

	out := make([]complex128, n)
	FromPolar(out, mag, phase)
	for i := range in {
		if cmplx.Abs(out[i]-in[i]) > 1e-12 {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], in[i])
		}
	}

	pow := make([]float64, n)
	PowerFromParts(pow, re, im)
	if math.Abs(pow[2]-8) > 1e-12 {
		t.Fatalf("pow[2] = %v, want 8", pow[2])
	}
}

func TestWrapPhase(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
		{7 * math.Pi, math.Pi},
		{0.5 + 10*math.Pi, 0.5},
	}
	for _, tt := range tests {
		if got := WrapPhase(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Fatalf("WrapPhase(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMirrorHermitian(t *testing.T) {
	spec := []complex128{1 + 1i, 2 + 3i, 4 - 1i, 5 + 5i, 9, 9, 9, 9}
	MirrorHermitian(spec)
	want := []complex128{1, 2 + 3i, 4 - 1i, 5 + 5i, 9, 5 - 5i, 4 + 1i, 2 - 3i}
	for i := range want {
		if spec[i] != want[i] {
			t.Fatalf("spec[%d] = %v, want %v", i, spec[i], want[i])
		}
	}
}
