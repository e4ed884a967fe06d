package effects

import (
	"fmt"

	"github.com/cwbudde/algo-sculpt/dsp/buffer"
)

// DefaultFreezeSize is the grain length used until SetFreezeSize is called.
const DefaultFreezeSize = 512

// FreezeOption mutates freeze construction parameters.
type FreezeOption func(*freezeConfig) error

type freezeConfig struct {
	size int
}

// WithFreezeSize sets the initial grain length in samples.
func WithFreezeSize(n int) FreezeOption {
	return func(cfg *freezeConfig) error {
		if n < 1 {
			return fmt.Errorf("freeze size must be >= 1: %d", n)
		}
		cfg.size = n
		return nil
	}
}

// Freeze captures a grain of its input, starting at a zero crossing, and
// loops it while engaged.
type Freeze struct {
	buf  *buffer.Ring[float64]
	size int

	writeHead int
	readHead  int
	prev      float64

	engaged          bool
	captureRequested bool
	writeEnabled     bool
	sampleLoaded     bool
}

// NewFreeze creates a freeze with room for capacity samples.
func NewFreeze(capacity int, opts ...FreezeOption) (*Freeze, error) {
	buf, err := buffer.NewRing[float64](capacity)
	if err != nil {
		return nil, fmt.Errorf("freeze buffer: %w", err)
	}

	cfg := freezeConfig{size: DefaultFreezeSize}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	f := &Freeze{buf: buf}
	f.SetFreezeSize(cfg.size)
	return f, nil
}

// SetFreeze engages or releases the freeze. Engaging requests a fresh
// capture at the next zero crossing.
func (f *Freeze) SetFreeze(on bool) {
	if on == f.engaged {
		return
	}
	f.engaged = on
	f.sampleLoaded = false
	f.writeEnabled = false
	f.captureRequested = on
}

// SetFreezeSize sets the grain length, clamped to [1, capacity].
func (f *Freeze) SetFreezeSize(n int) {
	f.size = min(max(n, 1), f.buf.Len())
	if f.readHead >= f.size {
		f.readHead = 0
	}
}

// Process returns the looped grain while frozen and loaded, and the input
// otherwise. The input also passes while a capture waits for its zero
// crossing or is still filling; it is not muted.
func (f *Freeze) Process(x float64) float64 {
	if !f.engaged {
		f.prev = x
		return x
	}

	if f.captureRequested {
		if crossesZero(f.prev, x) {
			f.captureRequested = false
			f.writeEnabled = true
			f.writeHead = 0
			f.readHead = 0
		} else {
			f.prev = x
		}
	}

	if f.writeEnabled {
		f.buf.Set(f.writeHead, x)
		f.writeHead++
		if f.writeHead >= f.size {
			f.sampleLoaded = true
		}
		if f.writeHead >= f.buf.Len() {
			f.writeEnabled = false
		}
	}

	if !f.sampleLoaded {
		return x
	}

	f.readHead++
	if f.readHead >= f.size {
		f.readHead = 0
	}
	return f.buf.At(f.readHead)
}

// ProcessInPlace applies the freeze to buf.
func (f *Freeze) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = f.Process(buf[i])
	}
}

// Reset disengages and forgets the captured grain.
func (f *Freeze) Reset() {
	f.buf.Reset()
	f.engaged = false
	f.captureRequested = false
	f.writeEnabled = false
	f.sampleLoaded = false
	f.writeHead = 0
	f.readHead = 0
	f.prev = 0
}

func crossesZero(prev, x float64) bool {
	return (x < 0 && prev >= 0) || (x >= 0 && prev < 0)
}

// Engaged reports whether the freeze switch is on.
func (f *Freeze) Engaged() bool { return f.engaged }

// Loaded reports whether a full grain has been captured.
func (f *Freeze) Loaded() bool { return f.sampleLoaded }

// Capturing reports whether input is being recorded.
func (f *Freeze) Capturing() bool { return f.writeEnabled }

func (f *Freeze) Size() int     { return f.size }
func (f *Freeze) Capacity() int { return f.buf.Len() }
