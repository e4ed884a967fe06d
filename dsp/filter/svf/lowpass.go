package svf

import (
	"fmt"
	"math"
)

// MaxLowpassStages bounds the cascade length of Lowpass.
const MaxLowpassStages = 4

// Lowpass is a cascade of identical TPT lowpass sections with modulatable
// cutoff. Coefficients are recomputed only when cutoff or Q change.
type Lowpass struct {
	sampleRate float64
	stages     int
	cutoff     float64
	q          float64
	coeffs     Coefficients
	state      [MaxLowpassStages]State
}

// NewLowpass creates a lowpass with the given number of 12 dB/oct stages.
func NewLowpass(sampleRate float64, stages int) (*Lowpass, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("lowpass sample rate must be > 0: %f", sampleRate)
	}
	if stages < 1 || stages > MaxLowpassStages {
		return nil, fmt.Errorf("lowpass stages must be in [1, %d]: %d", MaxLowpassStages, stages)
	}

	l := &Lowpass{
		sampleRate: sampleRate,
		stages:     stages,
		cutoff:     sampleRate * 0.25,
		q:          math.Sqrt2 / 2,
	}
	l.update()

	return l, nil
}

// SetCutoff sets the cutoff in Hz.
func (l *Lowpass) SetCutoff(hz float64) {
	if hz == l.cutoff || math.IsNaN(hz) {
		return
	}
	l.cutoff = hz
	l.update()
}

// SetQ sets the resonance.
func (l *Lowpass) SetQ(q float64) {
	if q == l.q || math.IsNaN(q) {
		return
	}
	l.q = q
	l.update()
}

func (l *Lowpass) update() {
	l.coeffs = LowpassCoefficients(l.cutoff, l.q, l.sampleRate)
}

// Process filters one sample.
func (l *Lowpass) Process(x float64) float64 {
	for i := 0; i < l.stages; i++ {
		x = l.state[i].Lowpass(l.coeffs, x)
	}
	return x
}

// ProcessInPlace filters buf in place.
func (l *Lowpass) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = l.Process(x)
	}
}

// Reset clears all section state.
func (l *Lowpass) Reset() {
	for i := range l.state {
		l.state[i].Reset()
	}
}

func (l *Lowpass) Cutoff() float64 { return l.cutoff }
func (l *Lowpass) Q() float64      { return l.q }
