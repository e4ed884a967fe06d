// Package window generates analysis windows for the spectral stages and
// computes their overlap-add normalisation.
package window
