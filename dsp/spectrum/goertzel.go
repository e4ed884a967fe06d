package spectrum

import (
	"fmt"
	"math"
)

// Goertzel measures one frequency across everything written since the last
// Reset. Tests use it to read tone levels out of rendered audio.
type Goertzel struct {
	freq, rate float64
	coeff      float64
	s1, s2     float64
	n          int
}

// NewGoertzel returns a probe for freq, which must lie in [0, rate/2].
func NewGoertzel(freq, rate float64) (*Goertzel, error) {
	if !(rate > 0) || math.IsInf(rate, 0) {
		return nil, fmt.Errorf("goertzel: sample rate must be > 0: %v", rate)
	}
	g := &Goertzel{rate: rate}
	if err := g.SetFrequency(freq); err != nil {
		return nil, err
	}
	return g, nil
}

// SetFrequency retunes the probe without clearing it.
func (g *Goertzel) SetFrequency(freq float64) error {
	if !(freq >= 0 && freq <= g.rate/2) {
		return fmt.Errorf("goertzel: frequency must be in [0, %v]: %v", g.rate/2, freq)
	}
	g.freq = freq
	g.coeff = 2 * math.Cos(2*math.Pi*freq/g.rate)
	return nil
}

// Frequency returns the probed frequency in Hz.
func (g *Goertzel) Frequency() float64 { return g.freq }

// Reset forgets all written samples.
func (g *Goertzel) Reset() {
	g.s1, g.s2, g.n = 0, 0, 0
}

// ProcessBlock feeds x through the resonator.
func (g *Goertzel) ProcessBlock(x []float64) {
	s1, s2 := g.s1, g.s2
	for _, v := range x {
		s1, s2 = v+g.coeff*s1-s2, s1
	}
	g.s1, g.s2 = s1, s2
	g.n += len(x)
}

// ProcessSample feeds a single sample.
func (g *Goertzel) ProcessSample(x float64) {
	g.s1, g.s2 = x+g.coeff*g.s1-g.s2, g.s1
	g.n++
}

// Power is the squared DFT magnitude at the probed frequency.
func (g *Goertzel) Power() float64 {
	return g.s1*g.s1 + g.s2*g.s2 - g.coeff*g.s1*g.s2
}

// Magnitude is the DFT magnitude at the probed frequency.
func (g *Goertzel) Magnitude() float64 {
	return math.Sqrt(max(g.Power(), 0))
}

// Amplitude converts the magnitude to the peak level of a sinusoid that
// completes whole cycles in the written samples.
func (g *Goertzel) Amplitude() float64 {
	if g.n == 0 {
		return 0
	}
	return 2 * g.Magnitude() / float64(g.n)
}
