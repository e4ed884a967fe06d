package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-sculpt/dsp/buffer"
	"github.com/cwbudde/algo-sculpt/dsp/core"
)

const (
	// DefaultOctaverMaxDelay is the longest tap delay in samples.
	DefaultOctaverMaxDelay = 3072

	octaverGuard = 12
)

// OctaverOption mutates octaver construction parameters.
type OctaverOption func(*octaverConfig) error

type octaverConfig struct {
	maxDelay int
}

// WithOctaverMaxDelay sets the tap sweep range in samples.
func WithOctaverMaxDelay(n int) OctaverOption {
	return func(cfg *octaverConfig) error {
		if n < 8*octaverGuard {
			return fmt.Errorf("octaver max delay must be >= %d: %d", 8*octaverGuard, n)
		}
		cfg.maxDelay = n
		return nil
	}
}

// Octaver shifts pitch with two delay taps sweeping at a shared rate and
// half a sweep apart. A triangular crossfade mutes each tap while it
// wraps.
type Octaver struct {
	buf *buffer.Ring[float64]

	lo, hi float64
	length float64
	half   float64

	d0, d1 float64
	rate   float64
	shift  float64
	w0, w1 float64
}

// NewOctaver creates an octaver shifting down one octave.
func NewOctaver(opts ...OctaverOption) (*Octaver, error) {
	cfg := octaverConfig{maxDelay: DefaultOctaverMaxDelay}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	buf, err := buffer.NewRing[float64](cfg.maxDelay + 2)
	if err != nil {
		return nil, fmt.Errorf("octaver buffer: %w", err)
	}

	length := float64(cfg.maxDelay - 2*octaverGuard)
	o := &Octaver{
		buf:    buf,
		lo:     octaverGuard,
		hi:     float64(cfg.maxDelay - octaverGuard),
		length: length,
		half:   math.Floor(length / 2),
		d0:     octaverGuard,
	}
	o.SetShift(0.5)
	o.updateTaps()

	return o, nil
}

// SetShift sets the pitch ratio. Ratios below 1 shift down, above 1 shift
// up. A ratio of 1 parks the taps so the output is a fixed delay.
func (o *Octaver) SetShift(factor float64) {
	if !core.IsFinite(factor) || factor < 0 {
		return
	}
	o.shift = factor
	if factor == 1 {
		o.rate = 0
		o.d0 = o.lo + o.half
		o.updateTaps()
		return
	}
	o.rate = 1 - factor
}

// SetShiftSemitones sets the pitch ratio from a semitone offset.
func (o *Octaver) SetShiftSemitones(semitones float64) {
	o.SetShift(core.SemitonesToRatio(semitones))
}

func (o *Octaver) wrap(d float64) float64 {
	for d > o.hi {
		d -= o.length
	}
	for d < o.lo {
		d += o.length
	}
	return d
}

func (o *Octaver) updateTaps() {
	o.d0 = o.wrap(o.d0)
	o.d1 = o.wrap(o.d0 + o.half)

	p := (o.d0 - o.lo) / o.length
	o.w1 = math.Abs(2*p - 1)
	o.w0 = 1 - o.w1
}

// Process runs one sample and returns the shifted signal only.
func (o *Octaver) Process(x float64) float64 {
	o.d0 += o.rate
	o.updateTaps()

	o.buf.Write(x)
	return o.w0*o.buf.ReadLinear(o.d0) + o.w1*o.buf.ReadLinear(o.d1)
}

// ProcessInPlace replaces buf with the shifted signal.
func (o *Octaver) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = o.Process(buf[i])
	}
}

// Reset clears the delay line and rewinds the taps.
func (o *Octaver) Reset() {
	o.buf.Reset()
	o.d0 = o.lo
	if o.rate == 0 {
		o.d0 = o.lo + o.half
	}
	o.updateTaps()
}

// Weights returns the current crossfade weights of the two taps.
func (o *Octaver) Weights() (w0, w1 float64) { return o.w0, o.w1 }

// Taps returns the current tap delays in samples.
func (o *Octaver) Taps() (d0, d1 float64) { return o.d0, o.d1 }

func (o *Octaver) Shift() float64 { return o.shift }
func (o *Octaver) Rate() float64  { return o.rate }
