package onepole

import (
	"fmt"
	"math"
)

// Smoother is a one-pole lowpass on a control value:
//
//	y += (target - y) * coef
//
// A coefficient of 1 passes the target through unchanged.
type Smoother struct {
	coef   float64
	value  float64
	primed bool
}

// New returns a smoother with the given coefficient in (0, 1].
func New(coef float64) (*Smoother, error) {
	s := &Smoother{}
	if err := s.SetCoefficient(coef); err != nil {
		return nil, err
	}
	return s, nil
}

// SetCoefficient sets the per-sample blend factor in (0, 1].
func (s *Smoother) SetCoefficient(coef float64) error {
	if coef <= 0 || coef > 1 || math.IsNaN(coef) {
		return fmt.Errorf("smoother coefficient must be in (0, 1]: %f", coef)
	}
	s.coef = coef
	return nil
}

// SetTimeConstant derives the coefficient from a time constant in
// milliseconds. A non-positive time disables smoothing.
func (s *Smoother) SetTimeConstant(ms, sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("smoother sample rate must be > 0: %f", sampleRate)
	}
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return fmt.Errorf("smoother time constant must be finite: %f", ms)
	}
	return s.SetCoefficient(Coefficient(ms, sampleRate))
}

// Coefficient returns the blend factor for a time constant of ms
// milliseconds at sampleRate.
func Coefficient(ms, sampleRate float64) float64 {
	if ms <= 0 {
		return 1
	}
	c := 1 - math.Exp(-1/((ms/1000)*sampleRate))
	return min(max(c, math.SmallestNonzeroFloat64), 1)
}

// Prime jumps the output to v.
func (s *Smoother) Prime(v float64) {
	s.value = v
	s.primed = true
}

// Process moves one step toward target and returns the new value. The
// first call after construction or Reset primes to target.
func (s *Smoother) Process(target float64) float64 {
	if !s.primed {
		s.Prime(target)
		return target
	}
	s.value += (target - s.value) * s.coef
	return s.value
}

// Reset forgets the current value so the next Process primes again.
func (s *Smoother) Reset() {
	s.value = 0
	s.primed = false
}

// Value returns the last output.
func (s *Smoother) Value() float64 { return s.value }

// Coef returns the blend factor.
func (s *Smoother) Coef() float64 { return s.coef }
