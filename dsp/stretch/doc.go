// Package stretch implements a phase-vocoder time stretcher that loops a
// preloaded sample at a variable rate without changing its pitch.
//
// Each analysis hop takes two Hann-windowed frames one hop apart, keeps the
// magnitude of the later frame and advances a per-bin running phase by the
// measured phase difference. The resynthesized frames are overlap-added
// into an accumulator whose tail carries into the next block.
package stretch
