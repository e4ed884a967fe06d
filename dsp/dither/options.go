package dither

import "fmt"

const (
	minBitDepth = 2
	maxBitDepth = 24

	defaultSeed = 0xD17E
)

type config struct {
	bitDepth int
	typ      Type
	seed     uint64
}

func defaultConfig() config {
	return config{bitDepth: 16, typ: Triangular, seed: defaultSeed}
}

// Option configures a Quantizer.
type Option func(*config) error

// WithBitDepth sets the target integer width.
func WithBitDepth(bits int) Option {
	return func(c *config) error {
		if bits < minBitDepth || bits > maxBitDepth {
			return fmt.Errorf("dither: bit depth must be in [%d, %d]: %d", minBitDepth, maxBitDepth, bits)
		}
		c.bitDepth = bits
		return nil
	}
}

// WithType sets the noise distribution.
func WithType(t Type) Option {
	return func(c *config) error {
		if !t.Valid() {
			return fmt.Errorf("dither: invalid type: %d", int(t))
		}
		c.typ = t
		return nil
	}
}

// WithSeed makes the dither sequence reproducible across runs.
func WithSeed(seed uint64) Option {
	return func(c *config) error {
		c.seed = seed
		return nil
	}
}
