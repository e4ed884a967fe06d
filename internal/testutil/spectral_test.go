package testutil

import (
	"math"
	"testing"
)

func TestToneMagnitude(t *testing.T) {
	x := DeterministicSine(1000, 48000, 0.25, 4800)
	if got := ToneMagnitude(x, 1000, 48000); math.Abs(got-0.25) > 1e-6 {
		t.Fatalf("ToneMagnitude() = %v, want 0.25", got)
	}
	if got := ToneMagnitude(x, 3000, 48000); got > 1e-6 {
		t.Fatalf("ToneMagnitude(off bin) = %v, want ~0", got)
	}
	if ToneMagnitude(nil, 1000, 48000) != 0 {
		t.Fatal("expected 0 for empty input")
	}
}

func TestRMSAndPeak(t *testing.T) {
	x := DeterministicSine(100, 48000, 2, 4800)
	if got := RMS(x); math.Abs(got-math.Sqrt2) > 1e-6 {
		t.Fatalf("RMS() = %v, want %v", got, math.Sqrt2)
	}
	if got := PeakAbs([]float64{0.5, -3, 2}); got != 3 {
		t.Fatalf("PeakAbs() = %v, want 3", got)
	}
	if RMS([]float64(nil)) != 0 {
		t.Fatal("expected 0 for empty input")
	}
}
