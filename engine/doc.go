// Package engine wires the sculpt signal chain together.
//
// An Engine owns every voice, effect and modulation source, reads its
// parameters from a lock-free Params store once per block and renders
// float32 audio. Control goroutines talk to it through Params and the
// single-producer EventQueue; the audio goroutine calls Process or
// Render and never blocks, allocates or logs.
package engine
