package modulation

import (
	"math"

	"github.com/cwbudde/algo-sculpt/dsp/core"
	"github.com/cwbudde/algo-sculpt/dsp/osc"
)

// MaxRateHz bounds the LFO rate.
const MaxRateHz = 50.0

// LFO is a control-rate oscillator producing values in [-1, 1].
type LFO struct {
	osc   *osc.Oscillator
	value float64
}

// NewLFO creates a sine LFO at rateHz.
func NewLFO(sampleRate, rateHz float64) (*LFO, error) {
	o, err := osc.New(sampleRate, 0)
	if err != nil {
		return nil, err
	}
	l := &LFO{osc: o}
	l.SetRate(rateHz)
	return l, nil
}

// SetRate sets the rate in Hz, clamped to [0, MaxRateHz].
func (l *LFO) SetRate(hz float64) {
	if math.IsNaN(hz) {
		return
	}
	l.osc.SetFrequency(core.Clamp(hz, 0, MaxRateHz))
}

// SetShape morphs the waveform; see osc.Oscillator.SetShape.
func (l *LFO) SetShape(x float64) { l.osc.SetShape(x) }

// Tick advances by n samples and returns the new value.
func (l *LFO) Tick(n int) float64 {
	l.value = 2 * l.osc.Advance(n)
	return l.value
}

// Reset rewinds the phase.
func (l *LFO) Reset() {
	l.osc.Reset()
	l.value = 0
}

// Value returns the last ticked value.
func (l *LFO) Value() float64 { return l.value }

// Rate returns the rate in Hz.
func (l *LFO) Rate() float64 { return l.osc.Frequency() }
