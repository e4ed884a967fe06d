package dither

import (
	"math"
	"math/rand/v2"
)

// Quantizer maps samples in [-1, 1] to signed integers of a fixed width.
type Quantizer struct {
	typ      Type
	bitDepth int
	scale    float64
	lo, hi   int
	seed     uint64
	rng      *rand.Rand
	lastErr  float64
}

// NewQuantizer returns a 16-bit TPDF quantizer unless opts say otherwise.
func NewQuantizer(opts ...Option) (*Quantizer, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	full := math.Exp2(float64(cfg.bitDepth - 1))
	q := &Quantizer{
		typ:      cfg.typ,
		bitDepth: cfg.bitDepth,
		scale:    full - 1,
		lo:       -int(full),
		hi:       int(full) - 1,
		seed:     cfg.seed,
	}
	q.Reset()
	return q, nil
}

// BitDepth returns the target width.
func (q *Quantizer) BitDepth() int { return q.bitDepth }

// Type returns the noise distribution.
func (q *Quantizer) Type() Type { return q.typ }

// Quantize converts one sample. Non-finite input maps to zero.
func (q *Quantizer) Quantize(x float64) int {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		x = 0
	}
	w := x * q.scale
	if q.typ == Shaped {
		w -= q.lastErr
	}

	v := w
	switch q.typ {
	case Rectangular:
		v += q.rng.Float64() - 0.5
	case Triangular, Shaped:
		v += q.rng.Float64() - q.rng.Float64()
	}

	r := max(q.lo, min(q.hi, int(math.Round(v))))
	if q.typ == Shaped {
		// Clipping can push the error past a few LSB.
		q.lastErr = max(-2, min(2, float64(r)-w))
	}
	return r
}

// QuantizeFloat32 fills dst with quantized samples and returns it, growing
// dst when it is too short.
func (q *Quantizer) QuantizeFloat32(dst []int, src []float32) []int {
	if cap(dst) < len(src) {
		dst = make([]int, len(src))
	}
	dst = dst[:len(src)]
	for i, v := range src {
		dst[i] = q.Quantize(float64(v))
	}
	return dst
}

// Reset restarts the noise sequence and clears the error history.
func (q *Quantizer) Reset() {
	q.rng = rand.New(rand.NewPCG(q.seed, q.seed^0x9E3779B97F4A7C15))
	q.lastErr = 0
}
