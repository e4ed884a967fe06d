// Package svf implements the topology-preserving-transform state-variable
// filter used by the harmonic bank (bandpass) and the output stage
// (lowpass).
//
// Coefficients and per-section state are separate values so one
// coefficient set can drive many sections, as the harmonic bank's cascades
// do. Coefficients are cheap to modulate: the structure stays stable under
// fast cutoff changes.
package svf
