// Package dither quantizes float audio to integer PCM for file export.
//
// A Quantizer adds low-level noise before rounding so that quiet tails
// fade into noise instead of truncation distortion. The first-order
// shaped mode feeds the previous rounding error back, tilting the noise
// toward high frequencies.
package dither

import "fmt"

// Type selects the dither noise distribution.
type Type int

const (
	// None rounds without added noise.
	None Type = iota
	// Rectangular adds uniform noise of one LSB peak-to-peak.
	Rectangular
	// Triangular adds TPDF noise, the sum of two uniform draws.
	Triangular
	// Shaped adds TPDF noise and subtracts the previous error.
	Shaped

	typeCount
)

var typeNames = [typeCount]string{"none", "rect", "tpdf", "shaped"}

func (t Type) String() string {
	if t.Valid() {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	return t >= 0 && t < typeCount
}

// ParseType resolves a name printed by String.
func ParseType(name string) (Type, error) {
	for i, n := range typeNames {
		if n == name {
			return Type(i), nil
		}
	}
	return None, fmt.Errorf("dither: unknown type %q", name)
}
