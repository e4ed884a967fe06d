package testutil

import (
	"math"

	"golang.org/x/exp/constraints"

	"github.com/cwbudde/algo-sculpt/dsp/spectrum"
)

// ToneMagnitude returns the amplitude of the freqHz component of x. A sine
// of amplitude A that completes an integer number of cycles in x reports A.
func ToneMagnitude(x []float64, freqHz, sampleRate float64) float64 {
	g, err := spectrum.NewGoertzel(freqHz, sampleRate)
	if err != nil {
		return 0
	}
	g.ProcessBlock(x)
	return g.Amplitude()
}

// RMS returns the root-mean-square level of x.
func RMS[T constraints.Float](x []T) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(x)))
}

// PeakAbs returns the largest magnitude in x.
func PeakAbs[T constraints.Float](x []T) float64 {
	var peak float64
	for _, v := range x {
		peak = max(peak, math.Abs(float64(v)))
	}
	return peak
}
