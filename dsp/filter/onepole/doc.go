// Package onepole provides a first-order lowpass used to smooth control
// values such as delay time and filter cutoff.
package onepole
