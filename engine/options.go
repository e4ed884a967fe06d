package engine

import (
	"fmt"
	"log/slog"

	"github.com/cwbudde/algo-sculpt/dsp/core"
	"github.com/cwbudde/algo-sculpt/dsp/filter/harmonic"
	"github.com/cwbudde/algo-sculpt/dsp/synth"
)

// Defaults applied by New.
const (
	DefaultVoices          = 8
	DefaultMinSubBlock     = 32
	DefaultDelayCapacityMs = 1100
	DefaultFreezeCapacity  = 8192
	DefaultSeed            = 0x5C0171
)

// Option configures an Engine.
type Option func(*engineConfig) error

type engineConfig struct {
	proc          core.ProcessorConfig
	voices        int
	delayCapacity int
	freezeCap     int
	minSubBlock   int
	queueCap      int
	seed          uint32
	bankOpts      []harmonic.Option
	logger        *slog.Logger
}

func defaultEngineConfig() engineConfig {
	return engineConfig{
		proc:        core.DefaultProcessorConfig(),
		voices:      DefaultVoices,
		freezeCap:   DefaultFreezeCapacity,
		minSubBlock: DefaultMinSubBlock,
		queueCap:    DefaultQueueCapacity,
		seed:        DefaultSeed,
	}
}

// WithProcessorOptions applies shared sample-rate and block-size options.
func WithProcessorOptions(opts ...core.ProcessorOption) Option {
	return func(cfg *engineConfig) error {
		for _, opt := range opts {
			if opt != nil {
				opt(&cfg.proc)
			}
		}
		return nil
	}
}

// WithSampleRate sets the processing rate in Hz.
func WithSampleRate(sr float64) Option {
	return func(cfg *engineConfig) error {
		if sr <= 0 {
			return fmt.Errorf("engine sample rate must be > 0: %v", sr)
		}
		core.WithSampleRate(sr)(&cfg.proc)
		return nil
	}
}

// WithMaxBlockSize sets the largest block rendered in one pass. Longer
// Process calls are split.
func WithMaxBlockSize(n int) Option {
	return func(cfg *engineConfig) error {
		if n <= 0 {
			return fmt.Errorf("engine block size must be > 0: %d", n)
		}
		core.WithBlockSize(n)(&cfg.proc)
		return nil
	}
}

// WithVoices sets the fixed polyphony.
func WithVoices(n int) Option {
	return func(cfg *engineConfig) error {
		if n < 1 || n > synth.MaxVoices {
			return fmt.Errorf("engine voices must be in [1, %d]: %d", synth.MaxVoices, n)
		}
		cfg.voices = n
		return nil
	}
}

// WithDelayCapacity sets the delay line length in samples. The default
// holds slightly more than the longest delay time.
func WithDelayCapacity(samples int) Option {
	return func(cfg *engineConfig) error {
		if samples < 16 {
			return fmt.Errorf("engine delay capacity must be >= 16: %d", samples)
		}
		cfg.delayCapacity = samples
		return nil
	}
}

// WithFreezeCapacity sets the freeze buffer length in samples.
func WithFreezeCapacity(samples int) Option {
	return func(cfg *engineConfig) error {
		if samples < 1 {
			return fmt.Errorf("engine freeze capacity must be > 0: %d", samples)
		}
		cfg.freezeCap = samples
		return nil
	}
}

// WithMinSubBlock sets the shortest voice sub-block created by event splits.
func WithMinSubBlock(n int) Option {
	return func(cfg *engineConfig) error {
		if n < 1 {
			return fmt.Errorf("engine minimum sub-block must be > 0: %d", n)
		}
		cfg.minSubBlock = n
		return nil
	}
}

// WithQueueCapacity sizes the event queue.
func WithQueueCapacity(n int) Option {
	return func(cfg *engineConfig) error {
		if n < 1 {
			return fmt.Errorf("engine queue capacity must be > 0: %d", n)
		}
		cfg.queueCap = n
		return nil
	}
}

// WithSeed seeds the noise source. Equal seeds render identical output.
func WithSeed(seed uint32) Option {
	return func(cfg *engineConfig) error {
		cfg.seed = seed
		return nil
	}
}

// WithGainConstants overrides the per-shape harmonic gain scaling.
func WithGainConstants(g harmonic.GainConstants) Option {
	return func(cfg *engineConfig) error {
		cfg.bankOpts = append(cfg.bankOpts, harmonic.WithGains(g))
		return nil
	}
}

// WithHarmonics sets the number of resonant harmonics per voice.
func WithHarmonics(n int) Option {
	return func(cfg *engineConfig) error {
		cfg.bankOpts = append(cfg.bankOpts, harmonic.WithHarmonics(n))
		return nil
	}
}

// WithCascade sets the number of bandpass sections per harmonic.
func WithCascade(n int) Option {
	return func(cfg *engineConfig) error {
		cfg.bankOpts = append(cfg.bankOpts, harmonic.WithCascade(n))
		return nil
	}
}

// WithLogger routes init-time diagnostics to l.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *engineConfig) error {
		cfg.logger = l
		return nil
	}
}
