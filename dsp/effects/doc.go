// Package effects provides the post-voice processing stages: a
// zero-crossing aligned Freeze looper, a modulated feedback Delay, a
// two-tap Octaver and an Overdrive with level Balance.
//
// All effects run allocation-free per sample once constructed and clamp
// out-of-range parameters instead of returning errors.
package effects
