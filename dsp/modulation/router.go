package modulation

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-sculpt/dsp/core"
)

// NumSlots is the number of adjacent destinations the selector spans.
const NumSlots = 3

// Destination identifies a modulation target.
type Destination int

// Sink receives routed modulation values.
type Sink interface {
	ApplyModulation(dest Destination, value float64)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(dest Destination, value float64)

// ApplyModulation calls f.
func (f SinkFunc) ApplyModulation(dest Destination, value float64) { f(dest, value) }

// Router fans one LFO value across two adjacent slots.
type Router struct {
	slots    [NumSlots]Destination
	depth    float64
	selector float64
	values   []float64
}

// NewRouter creates a router over known destinations [0, known) with the
// given slot assignment.
func NewRouter(known int, slots [NumSlots]Destination) (*Router, error) {
	if known < 1 {
		return nil, fmt.Errorf("router needs at least one destination: %d", known)
	}
	r := &Router{values: make([]float64, known)}
	if err := r.SetSlots(slots); err != nil {
		return nil, err
	}
	return r, nil
}

// SetSlots reassigns the three selectable destinations.
func (r *Router) SetSlots(slots [NumSlots]Destination) error {
	for i, d := range slots {
		if d < 0 || int(d) >= len(r.values) {
			return fmt.Errorf("slot %d destination must be in [0, %d): %d", i, len(r.values), d)
		}
	}
	r.slots = slots
	return nil
}

// SetDepth sets the signed modulation depth in [-1, 1].
func (r *Router) SetDepth(depth float64) {
	if math.IsNaN(depth) {
		return
	}
	r.depth = core.Clamp(depth, -1, 1)
}

// SetSelector sets the continuous slot position in [0, NumSlots-1].
func (r *Router) SetSelector(d float64) {
	if math.IsNaN(d) {
		return
	}
	r.selector = core.Clamp(d, 0, NumSlots-1)
}

// Weights returns the slot indices and their crossfade weights for the
// current selector.
func (r *Router) Weights() (lo, hi int, wlo, whi float64) {
	lo = int(r.selector)
	hi = min(lo+1, NumSlots-1)
	frac := r.selector - float64(lo)
	return lo, hi, 1 - frac, frac
}

// Route distributes lfo to the sink. Every known destination receives
// exactly one call; slots sharing a destination are summed.
func (r *Router) Route(lfo float64, sink Sink) {
	clear(r.values)

	if core.IsFinite(lfo) {
		lo, hi, wlo, whi := r.Weights()
		v := lfo * r.depth
		r.values[r.slots[lo]] += v * wlo
		r.values[r.slots[hi]] += v * whi
	}

	for d, v := range r.values {
		sink.ApplyModulation(Destination(d), v)
	}
}

func (r *Router) Slots() [NumSlots]Destination { return r.slots }
func (r *Router) Depth() float64               { return r.depth }
func (r *Router) Selector() float64            { return r.selector }
func (r *Router) Known() int                   { return len(r.values) }
