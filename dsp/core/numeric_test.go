package core

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name      string
		v, lo, hi float64
		want      float64
	}{
		{"inside", 0.5, 0, 1, 0.5},
		{"below", -1, 0, 1, 0},
		{"above", 2, 0, 1, 1},
		{"swapped", 2, 1, 0, 1},
		{"cutoff", 30000, 20, 18000, 18000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
				t.Fatalf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
			}
		})
	}
}

func TestFlushDenormals(t *testing.T) {
	for _, tc := range []struct{ in, want float64 }{
		{1e-35, 0},
		{-1e-31, 0},
		{1e-20, 1e-20},
		{-0.5, -0.5},
	} {
		if got := FlushDenormals(tc.in); got != tc.want {
			t.Errorf("FlushDenormals(%g) = %g, want %g", tc.in, got, tc.want)
		}
	}
}

func TestIsFinite(t *testing.T) {
	if !IsFinite(1.5) {
		t.Fatal("1.5 should be finite")
	}
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if IsFinite(v) {
			t.Fatalf("IsFinite(%v) = true, want false", v)
		}
	}
}

func TestWrap01(t *testing.T) {
	for _, tc := range []struct{ in, want float64 }{
		{0.25, 0.25},
		{1.25, 0.25},
		{-0.25, 0.75},
		{3, 0},
	} {
		if got := Wrap01(tc.in); math.Abs(got-tc.want) > 1e-12 {
			t.Fatalf("Wrap01(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestMIDIToFreq(t *testing.T) {
	for _, tc := range []struct {
		note float64
		want float64
	}{
		{69, 440},
		{81, 880},
		{57, 220},
		{60, 261.6255653},
	} {
		got := MIDIToFreq(tc.note)
		if math.Abs(got-tc.want) > 1e-3 {
			t.Fatalf("MIDIToFreq(%v) = %v, want %v", tc.note, got, tc.want)
		}
	}
}

func TestSemitonesToRatio(t *testing.T) {
	if got := SemitonesToRatio(0); got != 1 {
		t.Fatalf("SemitonesToRatio(0) = %v, want 1", got)
	}
	if got := SemitonesToRatio(12); math.Abs(got-2) > 1e-3 {
		t.Fatalf("SemitonesToRatio(12) = %v, want 2", got)
	}
	if got := SemitonesToRatio(-12); math.Abs(got-0.5) > 1e-3 {
		t.Fatalf("SemitonesToRatio(-12) = %v, want 0.5", got)
	}
}
