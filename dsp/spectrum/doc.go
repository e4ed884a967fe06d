// Package spectrum provides spectrum-domain helpers for frame-based
// processing: polar conversion of FFT bins, phase wrapping and Hermitian
// mirroring for real inverse transforms, plus a single-bin Goertzel
// analyzer.
//
// The package does not implement the FFT itself. It works on bins produced
// by algo-fft plans, and every function writes into caller-owned slices so
// it can run on the audio path.
package spectrum
