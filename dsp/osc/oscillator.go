package osc

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-sculpt/dsp/core"
)

// outputScale keeps the morphed output within ±0.5.
const outputScale = 0.5

// Oscillator is a phase accumulator with a continuously morphable shape.
type Oscillator struct {
	sampleRate float64
	freq       float64
	inc        float64
	phase      float64

	shape float64
	lo    Waveform
	hi    Waveform
	frac  float64
}

// New creates a sine oscillator at freq Hz.
func New(sampleRate, freq float64) (*Oscillator, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("oscillator sample rate must be > 0: %f", sampleRate)
	}

	o := &Oscillator{sampleRate: sampleRate, hi: Triangle}
	o.SetFrequency(freq)

	return o, nil
}

// SetFrequency sets the frequency in Hz, clamped to [0, Nyquist].
func (o *Oscillator) SetFrequency(hz float64) {
	if math.IsNaN(hz) {
		hz = 0
	}
	o.freq = core.Clamp(hz, 0, o.sampleRate/2)
	o.inc = o.freq / o.sampleRate
}

// SetShape morphs between adjacent waveforms. x is clamped to
// [0, MaxShape]; integer values select a pure waveform.
func (o *Oscillator) SetShape(x float64) {
	if math.IsNaN(x) {
		x = 0
	}
	x = core.Clamp(x, 0, MaxShape)
	lo := int(x)
	if lo >= int(numWaveforms)-1 {
		lo = int(numWaveforms) - 2
	}
	o.shape = x
	o.lo = Waveform(lo)
	o.hi = Waveform(lo + 1)
	o.frac = x - float64(lo)
}

// SetWaveform selects a single waveform.
func (o *Oscillator) SetWaveform(w Waveform) {
	o.SetShape(float64(w))
}

// Process returns the current sample and advances by one sample.
func (o *Oscillator) Process() float64 {
	v := o.value(o.phase)
	o.phase += o.inc
	if o.phase >= 1 {
		o.phase -= 1
	}
	return v
}

// Advance moves the phase forward by n samples and returns the value at
// the new phase. It is the control-rate tick.
func (o *Oscillator) Advance(n int) float64 {
	if n > 0 {
		o.phase = core.Wrap01(o.phase + o.inc*float64(n))
	}
	return o.value(o.phase)
}

// ProcessBlock fills dst with consecutive samples.
func (o *Oscillator) ProcessBlock(dst []float64) {
	for i := range dst {
		dst[i] = o.Process()
	}
}

func (o *Oscillator) value(p float64) float64 {
	a := o.lo.Sample(p)
	if o.frac == 0 {
		return a * outputScale
	}
	b := o.hi.Sample(p)
	return (a + (b-a)*o.frac) * outputScale
}

// Reset rewinds the phase to zero.
func (o *Oscillator) Reset() { o.phase = 0 }

// SetPhase sets the phase, wrapped into [0, 1).
func (o *Oscillator) SetPhase(p float64) { o.phase = core.Wrap01(p) }

func (o *Oscillator) Phase() float64     { return o.phase }
func (o *Oscillator) Frequency() float64 { return o.freq }
func (o *Oscillator) Shape() float64     { return o.shape }
