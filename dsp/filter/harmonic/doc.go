// Package harmonic implements the per-voice harmonic resynthesis core: a
// bank of cascaded TPT bandpass filters, one cascade per harmonic of the
// played note, whose outputs are weighted by a morphable harmonic gain
// table and summed.
//
// Fed with noise or any broadband input, the bank carves out a pitched
// tone whose timbre follows the selected waveform's overtone series.
package harmonic
