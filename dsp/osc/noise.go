package osc

import "math/rand/v2"

// Noise is a seeded white noise source. The same seed always yields the
// same sequence, and drawing does not allocate.
type Noise struct {
	seed uint64
	src  *rand.PCG
	rng  *rand.Rand
}

// NewNoise returns a generator seeded with seed.
func NewNoise(seed uint32) *Noise {
	src := rand.NewPCG(uint64(seed), 0)
	return &Noise{seed: uint64(seed), src: src, rng: rand.New(src)}
}

// Process returns a uniform sample in [-1, 1).
func (n *Noise) Process() float64 {
	return 2*n.rng.Float64() - 1
}

// Reset restarts the sequence from the seed.
func (n *Noise) Reset() { n.src.Seed(n.seed, 0) }
