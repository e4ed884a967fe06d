package harmonic

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-sculpt/dsp/core"
	"github.com/cwbudde/algo-sculpt/dsp/filter/svf"
)

const (
	// MaxHarmonics bounds the number of harmonics per bank.
	MaxHarmonics = 16
	// MaxCascade bounds the number of sections per harmonic.
	MaxCascade = 8

	DefaultHarmonics = 7
	DefaultCascade   = 3
	DefaultQ         = 10.0

	minStretch = 0.1
	maxStretch = 2.0
)

// Option configures a Bank.
type Option func(*bankConfig) error

type bankConfig struct {
	harmonics int
	cascade   int
	gains     GainConstants
}

func defaultBankConfig() bankConfig {
	return bankConfig{
		harmonics: DefaultHarmonics,
		cascade:   DefaultCascade,
		gains:     DefaultGainConstants(),
	}
}

// WithHarmonics sets how many harmonics the bank resynthesises.
func WithHarmonics(n int) Option {
	return func(cfg *bankConfig) error {
		if n < 1 || n > MaxHarmonics {
			return fmt.Errorf("harmonic count must be in [1, %d]: %d", MaxHarmonics, n)
		}
		cfg.harmonics = n
		return nil
	}
}

// WithCascade sets the number of bandpass sections per harmonic.
func WithCascade(n int) Option {
	return func(cfg *bankConfig) error {
		if n < 1 || n > MaxCascade {
			return fmt.Errorf("cascade length must be in [1, %d]: %d", MaxCascade, n)
		}
		cfg.cascade = n
		return nil
	}
}

// WithGains overrides the harmonic gain scaling constants.
func WithGains(g GainConstants) Option {
	return func(cfg *bankConfig) error {
		for _, v := range []float64{g.Square, g.Saw, g.Triangle} {
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("harmonic gain constants must be finite and >= 0: %+v", g)
			}
		}
		cfg.gains = g
		return nil
	}
}

// Bank is the harmonic bandpass filter bank of one voice.
//
// Coefficients are recomputed only when frequency, bend, Q or stretch
// change. Harmonics at or above Nyquist are skipped entirely.
type Bank struct {
	sampleRate float64
	harmonics  int
	cascade    int

	freq       float64
	bend       float64
	q          float64
	stretch    float64
	stretchMod float64
	shape      float64
	shapeMod   float64

	table   GainTable
	mix     [MaxHarmonics]float64
	coeffs  [MaxHarmonics]svf.Coefficients
	state   [MaxHarmonics][MaxCascade]svf.State
	audible int
}

// New creates a bank tuned to 440 Hz with a sine shape.
func New(sampleRate float64, opts ...Option) (*Bank, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("harmonic bank sample rate must be > 0: %f", sampleRate)
	}

	cfg := defaultBankConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	b := &Bank{
		sampleRate: sampleRate,
		harmonics:  cfg.harmonics,
		cascade:    cfg.cascade,
		freq:       440,
		q:          DefaultQ,
		stretch:    1,
		table:      NewGainTable(cfg.gains),
	}
	b.updateCoefficients()
	b.updateMix()

	return b, nil
}

// SetFrequency sets the fundamental in Hz.
func (b *Bank) SetFrequency(hz float64) {
	if hz == b.freq || math.IsNaN(hz) {
		return
	}
	b.freq = math.Max(hz, 0)
	b.updateCoefficients()
}

// SetBend sets a pitch offset in semitones applied on top of the
// fundamental.
func (b *Bank) SetBend(semitones float64) {
	if semitones == b.bend || math.IsNaN(semitones) {
		return
	}
	b.bend = semitones
	b.updateCoefficients()
}

// SetQ sets the bandpass resonance, clamped to [svf.MinQ, svf.MaxQ].
func (b *Bank) SetQ(q float64) {
	if math.IsNaN(q) {
		return
	}
	q = core.Clamp(q, svf.MinQ, svf.MaxQ)
	if q == b.q {
		return
	}
	b.q = q
	b.updateCoefficients()
}

// SetStretch sets the harmonic spacing factor. 1 is a harmonic series.
func (b *Bank) SetStretch(s float64) {
	if s == b.stretch || math.IsNaN(s) {
		return
	}
	b.stretch = s
	b.updateCoefficients()
}

// SetStretchMod sets the modulation offset added to the stretch factor.
func (b *Bank) SetStretchMod(m float64) {
	if m == b.stretchMod || math.IsNaN(m) {
		return
	}
	b.stretchMod = m
	b.updateCoefficients()
}

// SetShape morphs between the gain tables; x is clamped to [0, NumShapes-1].
func (b *Bank) SetShape(x float64) {
	if x == b.shape || math.IsNaN(x) {
		return
	}
	b.shape = x
	b.updateMix()
}

// SetShapeMod sets the modulation offset added to the shape.
func (b *Bank) SetShapeMod(m float64) {
	if m == b.shapeMod || math.IsNaN(m) {
		return
	}
	b.shapeMod = m
	b.updateMix()
}

func (b *Bank) effectiveStretch() float64 {
	return core.Clamp(b.stretch+b.stretchMod, minStretch, maxStretch)
}

func (b *Bank) updateCoefficients() {
	f0 := b.freq * core.SemitonesToRatio(b.bend)
	stretch := b.effectiveStretch()
	nyquist := b.sampleRate / 2

	audible := 0
	for h := 0; h < b.harmonics; h++ {
		f := f0 * float64(h+1) * stretch
		if f <= 0 || f >= nyquist {
			break
		}
		b.coeffs[h] = svf.BandpassCoefficients(f, b.q, b.sampleRate)
		audible = h + 1
	}

	// Harmonics pushed above Nyquist restart cleanly when they return.
	for h := audible; h < b.audible; h++ {
		b.clearHarmonic(h)
	}
	b.audible = audible
}

func (b *Bank) updateMix() {
	x := core.Clamp(b.shape+b.shapeMod, 0, NumShapes-1)
	lo := int(x)
	if lo >= NumShapes-1 {
		lo = NumShapes - 2
	}
	frac := x - float64(lo)

	for h := 0; h < b.harmonics; h++ {
		g := b.table[lo][h]*(1-frac) + b.table[lo+1][h]*frac
		if g == 0 && b.mix[h] != 0 {
			b.clearHarmonic(h)
		}
		b.mix[h] = g
	}
}

// Process filters one input sample through every audible, non-silent
// harmonic and returns the weighted sum.
func (b *Bank) Process(x float64) float64 {
	out := 0.0
	for h := 0; h < b.audible; h++ {
		g := b.mix[h]
		if g == 0 {
			continue
		}

		c := b.coeffs[h]
		y := x
		for s := 0; s < b.cascade; s++ {
			in := y
			y = b.state[h][s].Bandpass(c, in)
			if !core.IsFinite(y) {
				b.state[h][s].Reset()
				y = in
			}
		}
		out += y * g
	}
	return out
}

// ProcessInPlace filters buf in place.
func (b *Bank) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = b.Process(x)
	}
}

// Clear zeroes every section state.
func (b *Bank) Clear() {
	for h := 0; h < b.harmonics; h++ {
		b.clearHarmonic(h)
	}
}

func (b *Bank) clearHarmonic(h int) {
	for s := range b.state[h] {
		b.state[h][s].Reset()
	}
}

// Audible returns how many harmonics are below Nyquist.
func (b *Bank) Audible() int { return b.audible }

// HarmonicGain returns the current interpolated gain of harmonic h.
func (b *Bank) HarmonicGain(h int) float64 {
	if h < 0 || h >= b.harmonics {
		return 0
	}
	return b.mix[h]
}

// HarmonicFrequency returns the current center frequency of harmonic h,
// or 0 when it is not audible.
func (b *Bank) HarmonicFrequency(h int) float64 {
	if h < 0 || h >= b.audible {
		return 0
	}
	return b.freq * core.SemitonesToRatio(b.bend) * float64(h+1) * b.effectiveStretch()
}

func (b *Bank) Frequency() float64 { return b.freq }
func (b *Bank) Q() float64         { return b.q }
func (b *Bank) Harmonics() int     { return b.harmonics }
func (b *Bank) Cascade() int       { return b.cascade }
