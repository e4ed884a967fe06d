package spectrum

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Split copies the real and imaginary parts of in into re and im.
func Split(re, im []float64, in []complex128) {
	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}
}

// MagnitudeFromParts writes |re + i*im| into dst. All three slices must
// have the same length.
func MagnitudeFromParts(dst, re, im []float64) {
	vecmath.Magnitude(dst, re, im)
}

// PowerFromParts writes re^2 + im^2 into dst.
func PowerFromParts(dst, re, im []float64) {
	vecmath.Power(dst, re, im)
}

// PhaseFromParts writes atan2(im, re) into dst.
func PhaseFromParts(dst, re, im []float64) {
	for i := range dst {
		dst[i] = math.Atan2(im[i], re[i])
	}
}

// WrapPhase maps x into (-pi, pi].
func WrapPhase(x float64) float64 {
	if x > -math.Pi && x <= math.Pi {
		return x
	}
	x = math.Mod(x+math.Pi, 2*math.Pi)
	if x <= 0 {
		x += 2 * math.Pi
	}
	return x - math.Pi
}

// FromPolar writes mag[k]*e^(i*phase[k]) into dst[k] for k < len(mag).
func FromPolar(dst []complex128, mag, phase []float64) {
	for k, m := range mag {
		s, c := math.Sincos(phase[k])
		dst[k] = complex(m*c, m*s)
	}
}

// MirrorHermitian makes spec conjugate-symmetric from its lower half so
// the inverse transform is real. DC and Nyquist keep only their real part.
func MirrorHermitian(spec []complex128) {
	n := len(spec)
	if n == 0 {
		return
	}
	spec[0] = complex(real(spec[0]), 0)
	if n%2 == 0 {
		spec[n/2] = complex(real(spec[n/2]), 0)
	}
	for k := 1; k < (n+1)/2; k++ {
		c := spec[k]
		spec[n-k] = complex(real(c), -imag(c))
	}
}
