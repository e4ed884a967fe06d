package dither

import (
	"math"
	"testing"
)

func TestTypeNames(t *testing.T) {
	for typ := None; typ < typeCount; typ++ {
		got, err := ParseType(typ.String())
		if err != nil || got != typ {
			t.Errorf("ParseType(%q) = %v, %v", typ.String(), got, err)
		}
	}
	if _, err := ParseType("gauss"); err == nil {
		t.Error("expected error for unknown type")
	}
	if Type(9).Valid() {
		t.Error("Type(9) should be invalid")
	}
}

func TestNewQuantizerValidation(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"bit depth too small", []Option{WithBitDepth(1)}},
		{"bit depth too large", []Option{WithBitDepth(32)}},
		{"bad type", []Option{WithType(Type(42))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewQuantizer(tt.opts...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestQuantizerDefaults(t *testing.T) {
	q, err := NewQuantizer(nil)
	if err != nil {
		t.Fatal(err)
	}
	if q.BitDepth() != 16 || q.Type() != Triangular {
		t.Errorf("got %d bits %v", q.BitDepth(), q.Type())
	}
}

func TestQuantizerNoneIsRounding(t *testing.T) {
	q, err := NewQuantizer(WithType(None))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{1, 32767},
		{-1, -32767},
		{2, 32767},
		{-2, -32768},
		{0.5, 16384},
		{math.NaN(), 0},
		{math.Inf(1), 0},
	}
	for _, tt := range tests {
		if got := q.Quantize(tt.in); got != tt.want {
			t.Errorf("Quantize(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestQuantizerNoiseBounds(t *testing.T) {
	for _, typ := range []Type{Rectangular, Triangular, Shaped} {
		t.Run(typ.String(), func(t *testing.T) {
			q, err := NewQuantizer(WithType(typ), WithBitDepth(8))
			if err != nil {
				t.Fatal(err)
			}
			var sum float64
			const n = 20000
			for range n {
				got := q.Quantize(0)
				if got < -4 || got > 4 {
					t.Fatalf("dither of silence produced %d", got)
				}
				sum += float64(got)
			}
			if mean := sum / n; math.Abs(mean) > 0.05 {
				t.Errorf("mean = %v, want about 0", mean)
			}
		})
	}
}

func TestQuantizerDitherDecorrelatesLowLevels(t *testing.T) {
	// A constant a quarter LSB above zero rounds to zero without dither but
	// averages to the true level with it.
	q, err := NewQuantizer(WithBitDepth(8))
	if err != nil {
		t.Fatal(err)
	}
	level := 0.25 / 127
	var sum float64
	const n = 40000
	for range n {
		sum += float64(q.Quantize(level))
	}
	if mean := sum / n; math.Abs(mean-0.25) > 0.03 {
		t.Errorf("mean = %v, want about 0.25", mean)
	}
}

func TestQuantizerResetReplays(t *testing.T) {
	q, err := NewQuantizer(WithType(Shaped), WithSeed(7))
	if err != nil {
		t.Fatal(err)
	}
	src := []float32{0.1, -0.2, 0.3, 0, 0, 0.001}
	first := q.QuantizeFloat32(nil, src)
	q.Reset()
	second := q.QuantizeFloat32(make([]int, 0, len(src)), src)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("sample %d: %d != %d", i, first[i], second[i])
		}
	}
}
