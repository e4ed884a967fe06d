// Package audioio connects a render callback to the sound card.
//
// Two backends are provided: oto for output only, and malgo (miniaudio)
// for duplex operation with a live mono input. Both deliver mono float32
// at the requested rate.
package audioio

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
)

// RenderFunc fills out from in. in is nil for output-only backends.
type RenderFunc func(out, in []float32)

// Backend drives a RenderFunc until its context is cancelled.
type Backend interface {
	Name() string
	Run(ctx context.Context, render RenderFunc) error
}

// Config is shared by all backends.
type Config struct {
	SampleRate int
	BlockSize  int
	Logger     *slog.Logger
}

func (c Config) validate() error {
	if c.SampleRate < 8000 {
		return fmt.Errorf("audio sample rate must be >= 8000: %d", c.SampleRate)
	}
	if c.BlockSize < 1 {
		return fmt.Errorf("audio block size must be > 0: %d", c.BlockSize)
	}
	return nil
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// New returns the backend called name: "oto" or "malgo".
func New(name string, cfg Config) (Backend, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	switch name {
	case "oto", "":
		return &Oto{cfg: cfg}, nil
	case "malgo":
		return &Malgo{cfg: cfg}, nil
	default:
		return nil, fmt.Errorf("unknown audio backend %q (want oto or malgo)", name)
	}
}

// decodeF32 converts little-endian float32 bytes into dst.
func decodeF32(dst []float32, src []byte) {
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[4*i:]))
	}
}

// encodeF32 writes src as little-endian float32 bytes into dst.
func encodeF32(dst []byte, src []float32) {
	for i, v := range src {
		binary.LittleEndian.PutUint32(dst[4*i:], math.Float32bits(v))
	}
}
