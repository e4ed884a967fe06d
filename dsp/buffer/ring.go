package buffer

import (
	"fmt"

	"github.com/cwbudde/algo-sculpt/dsp/interp"
	"golang.org/x/exp/constraints"
)

// Ring is a fixed-capacity circular sample buffer.
type Ring[F constraints.Float] struct {
	data     []F
	writePos int
}

// NewRing returns a ring of the given capacity.
func NewRing[F constraints.Float](capacity int) (*Ring[F], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("ring capacity must be > 0: %d", capacity)
	}
	return &Ring[F]{data: make([]F, capacity)}, nil
}

// Len returns the capacity.
func (r *Ring[F]) Len() int { return len(r.data) }

// WritePos returns the index the next Write stores to.
func (r *Ring[F]) WritePos() int { return r.writePos }

// Wrap maps any integer index into [0, Len).
func (r *Ring[F]) Wrap(i int) int {
	n := len(r.data)
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// Write stores one sample and advances the write head.
func (r *Ring[F]) Write(x F) {
	r.data[r.writePos] = x
	r.writePos++
	if r.writePos >= len(r.data) {
		r.writePos = 0
	}
}

// At returns the sample at absolute index i (wrapped).
func (r *Ring[F]) At(i int) F {
	return r.data[r.Wrap(i)]
}

// Set stores x at absolute index i (wrapped) without moving the write head.
func (r *Ring[F]) Set(i int, x F) {
	r.data[r.Wrap(i)] = x
}

// Read returns the sample written delay writes ago. Read(1) is the most
// recent sample.
func (r *Ring[F]) Read(delay int) F {
	return r.data[r.Wrap(r.writePos-delay)]
}

// ReadLinear reads a fractional delay with linear interpolation.
func (r *Ring[F]) ReadLinear(delay float64) F {
	p, t := r.split(delay, 1)
	x0 := float64(r.Read(p))
	x1 := float64(r.Read(p + 1))
	return F(interp.Linear2(t, x0, x1))
}

// ReadHermite reads a fractional delay with 4-point Hermite interpolation.
func (r *Ring[F]) ReadHermite(delay float64) F {
	p, t := r.split(delay, 2)
	xm1 := float64(r.Read(max(1, p-1)))
	x0 := float64(r.Read(p))
	x1 := float64(r.Read(p + 1))
	x2 := float64(r.Read(p + 2))
	return F(interp.Hermite4(t, xm1, x0, x1, x2))
}

// ReadMode dispatches to the reader selected by mode.
func (r *Ring[F]) ReadMode(mode interp.Mode, delay float64) F {
	switch mode {
	case interp.ModeLinear:
		return r.ReadLinear(delay)
	case interp.ModeHermite:
		return r.ReadHermite(delay)
	default:
		p, _ := r.split(delay, 0)
		return r.Read(p)
	}
}

// Reset zeroes the contents and rewinds the write head.
func (r *Ring[F]) Reset() {
	clear(r.data)
	r.writePos = 0
}

// split clamps delay to [1, Len-1-lookahead] and separates it into integer
// and fractional parts.
func (r *Ring[F]) split(delay float64, lookahead int) (int, float64) {
	maxDelay := float64(len(r.data) - 1 - lookahead)
	if maxDelay < 1 {
		maxDelay = 1
	}
	if delay < 1 {
		delay = 1
	}
	if delay > maxDelay {
		delay = maxDelay
	}
	p := int(delay)
	return p, delay - float64(p)
}
