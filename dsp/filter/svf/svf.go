package svf

import (
	"math"

	"github.com/cwbudde/algo-sculpt/dsp/core"
)

// Resonance limits applied by the coefficient constructors.
const (
	MinQ = 0.1
	MaxQ = 30.0

	// maxNormalizedFreq keeps tan() well away from its pole at Nyquist.
	maxNormalizedFreq = 0.499
)

// Coefficients holds one TPT section's derived constants.
//
//	G    = tan(pi*f/fs)
//	R2   = 1/Q
//	H    = 1/(1 + R2*G + G*G)
//	Gain = output scale applied to the selected response
type Coefficients struct {
	G, H, R2, Gain float64
}

// State is the integrator pair of one section.
type State struct {
	S1, S2 float64
}

func coefficients(freq, q, sampleRate float64) Coefficients {
	q = core.Clamp(q, MinQ, MaxQ)
	freq = core.Clamp(freq, 0, maxNormalizedFreq*sampleRate)
	g := math.Tan(math.Pi * freq / sampleRate)
	r2 := 1 / q
	return Coefficients{
		G:  g,
		R2: r2,
		H:  1 / (1 + r2*g + g*g),
	}
}

// BandpassCoefficients returns unity-peak bandpass coefficients
// (Gain = R2 = 1/Q). Q is clamped to [MinQ, MaxQ].
func BandpassCoefficients(freq, q, sampleRate float64) Coefficients {
	c := coefficients(freq, q, sampleRate)
	c.Gain = c.R2
	return c
}

// LowpassCoefficients returns lowpass coefficients with unity DC gain.
func LowpassCoefficients(freq, q, sampleRate float64) Coefficients {
	c := coefficients(freq, q, sampleRate)
	c.Gain = 1
	return c
}

// Tick runs one sample through the section and returns all three
// responses (unscaled).
func (s *State) Tick(c Coefficients, x float64) (lp, bp, hp float64) {
	hp = c.H * (x - s.S1*(c.G+c.R2) - s.S2)
	bp = hp*c.G + s.S1
	s.S1 = core.FlushDenormals(hp*c.G + bp)
	lp = bp*c.G + s.S2
	s.S2 = core.FlushDenormals(bp*c.G + lp)
	return lp, bp, hp
}

// Bandpass filters x and returns bandpass*Gain.
func (s *State) Bandpass(c Coefficients, x float64) float64 {
	_, bp, _ := s.Tick(c, x)
	return bp * c.Gain
}

// Lowpass filters x and returns lowpass*Gain.
func (s *State) Lowpass(c Coefficients, x float64) float64 {
	lp, _, _ := s.Tick(c, x)
	return lp * c.Gain
}

// Reset zeroes the integrators.
func (s *State) Reset() {
	s.S1, s.S2 = 0, 0
}
