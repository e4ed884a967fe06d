package harmonic

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-sculpt/dsp/osc"
	"github.com/cwbudde/algo-sculpt/internal/testutil"
)

const sampleRate = 48000.0

func newTestBank(t *testing.T, opts ...Option) *Bank {
	t.Helper()
	b, err := New(sampleRate, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return b
}

func responseAt(b *Bank, freq float64) float64 {
	b.Clear()
	in := testutil.DeterministicSine(freq, sampleRate, 1, 48000)
	b.ProcessInPlace(in)
	return testutil.RMS(in[24000:])
}

func TestNewValidation(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	if _, err := New(sampleRate, WithHarmonics(MaxHarmonics+1)); err == nil {
		t.Fatal("expected error for too many harmonics")
	}
	if _, err := New(sampleRate, WithCascade(0)); err == nil {
		t.Fatal("expected error for empty cascade")
	}
	if _, err := New(sampleRate, WithGains(GainConstants{Square: -1})); err == nil {
		t.Fatal("expected error for negative gain constant")
	}
}

func TestPeakAtHarmonicFrequency(t *testing.T) {
	b := newTestBank(t)
	b.SetShape(float64(osc.Sine))
	b.SetQ(10)
	b.SetStretch(1)
	b.SetFrequency(1000)

	center := responseAt(b, 1000)
	below := responseAt(b, 900)
	above := responseAt(b, 1100)
	if center <= below || center <= above {
		t.Fatalf("center=%v below=%v above=%v, want center maximal", center, below, above)
	}
	if math.Abs(center-math.Sqrt2/2) > 0.02 {
		t.Fatalf("center RMS = %v, want unity-gain sine RMS", center)
	}
}

func TestNyquistSkipping(t *testing.T) {
	b := newTestBank(t, WithHarmonics(7))
	b.SetFrequency(5000)
	if got := b.Audible(); got != 4 {
		t.Fatalf("Audible() = %d, want 4", got)
	}
	if got := b.HarmonicFrequency(5); got != 0 {
		t.Fatalf("HarmonicFrequency(5) = %v, want 0", got)
	}

	b.SetStretch(2)
	if got := b.Audible(); got != 2 {
		t.Fatalf("Audible() with stretch 2 = %d, want 2", got)
	}

	b.SetFrequency(30000)
	if got := b.Audible(); got != 0 {
		t.Fatalf("Audible() above Nyquist = %d, want 0", got)
	}
	if got := b.Process(1); got != 0 {
		t.Fatalf("Process() with no audible harmonics = %v, want 0", got)
	}
}

func TestStretchSpacing(t *testing.T) {
	b := newTestBank(t)
	b.SetFrequency(100)
	b.SetStretch(1.5)
	if got := b.HarmonicFrequency(2); math.Abs(got-450) > 1e-9 {
		t.Fatalf("HarmonicFrequency(2) = %v, want 450", got)
	}
	b.SetStretchMod(10)
	if got := b.HarmonicFrequency(0); math.Abs(got-200) > 1e-9 {
		t.Fatalf("stretch clamp: HarmonicFrequency(0) = %v, want 200", got)
	}
}

func TestBendShiftsHarmonics(t *testing.T) {
	b := newTestBank(t)
	b.SetFrequency(220)
	b.SetBend(12)
	if got := b.HarmonicFrequency(0); math.Abs(got-440) > 1e-3 {
		t.Fatalf("HarmonicFrequency(0) = %v, want 440", got)
	}
}

func TestGainTable(t *testing.T) {
	g := NewGainTable(DefaultGainConstants())
	tests := []struct {
		shape osc.Waveform
		h     int
		want  float64
	}{
		{osc.Sine, 0, 1},
		{osc.Sine, 1, 0},
		{osc.Square, 0, 0.66},
		{osc.Square, 1, 0},
		{osc.Square, 2, 0.22},
		{osc.Triangle, 2, 0.0625},
		{osc.Triangle, 3, 0},
		{osc.Saw, 3, 0.125},
	}
	for _, tt := range tests {
		if got := g[tt.shape][tt.h]; math.Abs(got-tt.want) > 1e-12 {
			t.Fatalf("gain[%v][%d] = %v, want %v", tt.shape, tt.h, got, tt.want)
		}
	}
}

func TestShapeMorphInterpolates(t *testing.T) {
	b := newTestBank(t)
	b.SetShape(2.5)
	want := 0.5*(0.66/3) + 0.5*(0.5/3)
	if got := b.HarmonicGain(2); math.Abs(got-want) > 1e-12 {
		t.Fatalf("HarmonicGain(2) = %v, want %v", got, want)
	}

	b.SetShape(42)
	if got := b.HarmonicGain(1); math.Abs(got-0.25) > 1e-12 {
		t.Fatalf("clamped saw HarmonicGain(1) = %v, want 0.25", got)
	}
}

func TestNonFiniteStageFallsBack(t *testing.T) {
	b := newTestBank(t, WithCascade(2))
	b.SetFrequency(1000)
	b.state[0][1].S1 = math.Inf(1)

	y := b.Process(0.5)
	if math.IsNaN(y) || math.IsInf(y, 0) {
		t.Fatalf("Process() = %v, want finite", y)
	}
	if b.state[0][1].S1 != 0 || b.state[0][1].S2 != 0 {
		t.Fatalf("poisoned stage state = %+v, want reset", b.state[0][1])
	}

	out := make([]float64, 1000)
	for i := range out {
		out[i] = b.Process(0.1)
	}
	testutil.RequireFinite(t, out)
}

func TestClear(t *testing.T) {
	b := newTestBank(t)
	b.SetShape(3)
	for i := 0; i < 100; i++ {
		b.Process(1)
	}
	b.Clear()
	for h := 0; h < b.Harmonics(); h++ {
		for s := 0; s < b.Cascade(); s++ {
			if b.state[h][s].S1 != 0 || b.state[h][s].S2 != 0 {
				t.Fatalf("state[%d][%d] = %+v after Clear", h, s, b.state[h][s])
			}
		}
	}
	if got := b.Process(0); got != 0 {
		t.Fatalf("Process(0) after Clear = %v, want 0", got)
	}
}

func BenchmarkProcess(b *testing.B) {
	bank, err := New(sampleRate)
	if err != nil {
		b.Fatal(err)
	}
	bank.SetShape(3)
	bank.SetFrequency(110)
	noise := testutil.DeterministicNoise(1, 1, 4096)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bank.Process(noise[i&4095])
	}
}
