// Package osc provides the phase-accumulator oscillator used for voice
// sub-oscillators and the control-rate LFO, plus a seeded noise source.
package osc
