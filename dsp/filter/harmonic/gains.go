package harmonic

import "github.com/cwbudde/algo-sculpt/dsp/osc"

// NumShapes is the number of harmonic gain tables. Shapes follow the
// osc.Waveform order: sine, triangle, square, saw.
const NumShapes = 4

// GainConstants scale the 1/n falloff series of the non-sine tables.
type GainConstants struct {
	Square   float64
	Saw      float64
	Triangle float64
}

// DefaultGainConstants returns the stock scaling.
func DefaultGainConstants() GainConstants {
	return GainConstants{
		Square:   0.66,
		Saw:      0.5,
		Triangle: 0.75,
	}
}

// GainTable holds one gain per harmonic for every shape.
type GainTable [NumShapes][MaxHarmonics]float64

// NewGainTable builds the tables for harmonic numbers n = 1..MaxHarmonics.
//
//	sine:     1 for n = 1
//	triangle: (Triangle/n)^2 for odd n
//	square:   Square/n for odd n
//	saw:      Saw/n
func NewGainTable(c GainConstants) GainTable {
	var t GainTable
	for h := 0; h < MaxHarmonics; h++ {
		n := float64(h + 1)
		odd := h%2 == 0

		if h == 0 {
			t[osc.Sine][h] = 1
		}
		if odd {
			tri := c.Triangle / n
			t[osc.Triangle][h] = tri * tri
			t[osc.Square][h] = c.Square / n
		}
		t[osc.Saw][h] = c.Saw / n
	}
	return t
}
