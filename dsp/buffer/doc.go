// Package buffer provides the fixed-capacity circular buffer shared by the
// freeze, delay and octaver stages.
//
// A [Ring] is allocated once and never resized. Integer reads address
// samples by how many writes ago they were stored; fractional reads
// interpolate between neighbours with the methods from package interp.
package buffer
