// Package synth implements the polyphonic layer: a Voice couples an ADSR
// envelope, a harmonic filter bank and two sub-oscillators, and a Manager
// owns a fixed pool of voices with retrigger and oldest-note stealing.
//
// Nothing in this package allocates after construction.
package synth
