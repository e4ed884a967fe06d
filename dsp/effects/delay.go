package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-sculpt/dsp/buffer"
	"github.com/cwbudde/algo-sculpt/dsp/core"
	"github.com/cwbudde/algo-sculpt/dsp/filter/onepole"
	"github.com/cwbudde/algo-sculpt/dsp/interp"
)

const (
	defaultDelaySmoothing = 0.0005
	maxDelayFeedback      = 0.99

	// delayGuard keeps Hermite reads inside the written history.
	delayGuard = 3
)

// DelayOption mutates delay construction parameters.
type DelayOption func(*delayConfig) error

type delayConfig struct {
	mode      interp.Mode
	smoothing float64
}

// WithDelayInterpolation selects the fractional read mode.
func WithDelayInterpolation(mode interp.Mode) DelayOption {
	return func(cfg *delayConfig) error {
		switch mode {
		case interp.ModeNone, interp.ModeLinear, interp.ModeHermite:
		default:
			return fmt.Errorf("delay interpolation mode invalid: %d", mode)
		}
		cfg.mode = mode
		return nil
	}
}

// WithDelaySmoothing sets the one-pole coefficient applied to the
// effective delay length. 1 disables smoothing.
func WithDelaySmoothing(coef float64) DelayOption {
	return func(cfg *delayConfig) error {
		if coef <= 0 || coef > 1 || math.IsNaN(coef) {
			return fmt.Errorf("delay smoothing must be in (0, 1]: %f", coef)
		}
		cfg.smoothing = coef
		return nil
	}
}

// Delay is a single-tap feedback delay whose length can be modulated.
// The output is the dry input plus the delayed signal.
type Delay struct {
	sampleRate float64
	buf        *buffer.Ring[float64]
	mode       interp.Mode
	smoother   *onepole.Smoother

	base       float64
	modulation float64
	feedback   float64
}

// NewDelay creates a delay holding up to capacity samples.
func NewDelay(sampleRate float64, capacity int, opts ...DelayOption) (*Delay, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("delay sample rate must be > 0: %f", sampleRate)
	}
	if capacity <= delayGuard+1 {
		return nil, fmt.Errorf("delay capacity must be > %d: %d", delayGuard+1, capacity)
	}

	cfg := delayConfig{mode: interp.ModeHermite, smoothing: defaultDelaySmoothing}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	buf, err := buffer.NewRing[float64](capacity)
	if err != nil {
		return nil, fmt.Errorf("delay buffer: %w", err)
	}
	sm, err := onepole.New(cfg.smoothing)
	if err != nil {
		return nil, fmt.Errorf("delay smoother: %w", err)
	}

	return &Delay{
		sampleRate: sampleRate,
		buf:        buf,
		mode:       cfg.mode,
		smoother:   sm,
		base:       1,
	}, nil
}

// SetDelay sets the base delay in samples.
func (d *Delay) SetDelay(samples float64) {
	if !core.IsFinite(samples) {
		return
	}
	d.base = samples
}

// SetDelayMs sets the base delay in milliseconds.
func (d *Delay) SetDelayMs(ms float64) {
	d.SetDelay(ms / 1000 * d.sampleRate)
}

// SetFeedback sets the feedback gain, clamped to [0, 0.99].
func (d *Delay) SetFeedback(fb float64) {
	if math.IsNaN(fb) {
		return
	}
	d.feedback = core.Clamp(fb, 0, maxDelayFeedback)
}

// ApplyModulation sets an offset in samples added to the base delay.
func (d *Delay) ApplyModulation(samples float64) {
	if !core.IsFinite(samples) {
		samples = 0
	}
	d.modulation = samples
}

// EffectiveDelay returns the clamped, unsmoothed delay target.
func (d *Delay) EffectiveDelay() float64 {
	return core.Clamp(d.base+d.modulation, 1, float64(d.buf.Len()-delayGuard))
}

// Process runs one sample.
func (d *Delay) Process(x float64) float64 {
	length := d.smoother.Process(d.EffectiveDelay())
	delayed := d.buf.ReadMode(d.mode, length)
	d.buf.Write(core.FlushDenormals(x + delayed*d.feedback))
	return x + delayed
}

// ProcessInPlace applies the delay to buf.
func (d *Delay) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = d.Process(buf[i])
	}
}

// Reset clears the line and the smoother.
func (d *Delay) Reset() {
	d.buf.Reset()
	d.smoother.Reset()
}

func (d *Delay) Delay() float64      { return d.base }
func (d *Delay) Feedback() float64   { return d.feedback }
func (d *Delay) Capacity() int       { return d.buf.Len() }
func (d *Delay) Mode() interp.Mode   { return d.mode }
func (d *Delay) SampleRate() float64 { return d.sampleRate }
