package window

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Type selects a window shape.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeTriangle
)

var typeNames = map[Type]string{
	TypeRectangular: "rectangular",
	TypeHann:        "hann",
	TypeTriangle:    "triangle",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

var (
	errLength   = errors.New("window: samples and coefficients differ in length")
	errZeroGain = errors.New("window: overlap-add gain is zero")
)

// Option configures Generate.
type Option func(*config)

type config struct {
	periodic bool
}

// WithPeriodic drops the repeated end point so copies tile every N samples,
// which is the form STFT framing wants.
func WithPeriodic() Option {
	return func(c *config) { c.periodic = true }
}

// Generate returns n coefficients of shape t, or nil when n <= 0.
func Generate(t Type, n int, opts ...Option) []float64 {
	if n <= 0 {
		return nil
	}
	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	span := float64(n - 1)
	if cfg.periodic {
		span = float64(n)
	}
	if span == 0 {
		span = 1
	}

	w := make([]float64, n)
	for i := range w {
		x := float64(i) / span
		switch t {
		case TypeHann:
			s := math.Sin(math.Pi * x)
			w[i] = s * s
		case TypeTriangle:
			w[i] = 1 - math.Abs(2*x-1)
		default:
			w[i] = 1
		}
	}
	return w
}

// ApplyInPlace scales each sample by the matching coefficient.
func ApplyInPlace(samples, coeffs []float64) error {
	if len(samples) != len(coeffs) {
		return errLength
	}
	vecmath.MulBlockInPlace(samples, coeffs)
	return nil
}

// OverlapAddGain returns the level a unit signal reaches when frames
// windowed by coeffs are summed every hop samples.
func OverlapAddGain(coeffs []float64, hop int) (float64, error) {
	if hop <= 0 || hop > len(coeffs) {
		return 0, fmt.Errorf("window: hop must be in [1, %d]: %d", len(coeffs), hop)
	}
	var sum float64
	for _, c := range coeffs {
		sum += c
	}
	if sum == 0 {
		return 0, errZeroGain
	}
	return sum / float64(hop), nil
}
