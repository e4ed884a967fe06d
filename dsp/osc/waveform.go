package osc

import "math"

// Waveform selects one of the fixed oscillator shapes. The numeric order
// is the morph order used by Oscillator.SetShape.
type Waveform int

const (
	Sine Waveform = iota
	Triangle
	Square
	Saw
	numWaveforms
)

// MaxShape is the largest value accepted by Oscillator.SetShape.
const MaxShape = float64(numWaveforms - 1)

// String returns the waveform name.
func (w Waveform) String() string {
	switch w {
	case Sine:
		return "sine"
	case Triangle:
		return "triangle"
	case Square:
		return "square"
	case Saw:
		return "saw"
	default:
		return "unknown"
	}
}

// ParseWaveform maps a name back to its Waveform.
func ParseWaveform(name string) (Waveform, bool) {
	for w := Sine; w < numWaveforms; w++ {
		if w.String() == name {
			return w, true
		}
	}
	return Sine, false
}

// Sample evaluates the waveform at phase p in [0, 1).
func (w Waveform) Sample(p float64) float64 {
	switch w {
	case Triangle:
		return 1.8 * (math.Abs(2*p-1) - 0.5)
	case Square:
		if p < 0.5 {
			return 0.7
		}
		return -0.7
	case Saw:
		return 1 - 2*p
	default:
		return math.Sin(2 * math.Pi * p)
	}
}
