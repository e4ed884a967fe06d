// Package modulation routes a control-rate LFO to a crossfaded pair of
// adjacent destinations.
//
// Destinations are small integers owned by the consumer. Each Route call
// presents a value for every known destination, zero for those not
// selected, so receivers never need to track which slot was active last
// period.
package modulation
