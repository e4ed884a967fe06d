package stretch

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-sculpt/dsp/core"
	"github.com/cwbudde/algo-sculpt/dsp/spectrum"
	"github.com/cwbudde/algo-sculpt/dsp/window"
)

const (
	DefaultWindowSize = 2048
	DefaultOverlap    = 8

	// MaxStretch bounds the read-rate multiplier.
	MaxStretch = 4.0
)

// Option mutates vocoder construction parameters.
type Option func(*config) error

type config struct {
	windowSize int
	overlap    int
}

// WithWindowSize sets the FFT frame length. It must be a power of two.
func WithWindowSize(n int) Option {
	return func(cfg *config) error {
		if n < 16 || n&(n-1) != 0 {
			return fmt.Errorf("stretch window size must be a power of two >= 16: %d", n)
		}
		cfg.windowSize = n
		return nil
	}
}

// WithOverlap sets how many frames overlap each output sample.
func WithOverlap(n int) Option {
	return func(cfg *config) error {
		if n < 2 {
			return fmt.Errorf("stretch overlap must be >= 2: %d", n)
		}
		cfg.overlap = n
		return nil
	}
}

// PhaseVocoder plays a looped sample at a variable rate.
type PhaseVocoder struct {
	sampleRate float64
	maxBlock   int
	size       int
	hop        int
	bins       int
	scale      float64

	plan   *algofft.Plan[complex128]
	window []float64

	source  []float64
	pos     float64
	stretch float64

	identity bool
	nextHop  int

	frame   []float64
	timeIn  []complex128
	cur     []complex128
	prev    []complex128
	re, im  []float64
	mag     []float64
	phase   []float64
	last    []float64
	running []float64
	acc     []float64
}

// New creates a vocoder producing blocks of up to maxBlock samples.
func New(sampleRate float64, maxBlock int, opts ...Option) (*PhaseVocoder, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("stretch sample rate must be > 0: %f", sampleRate)
	}
	if maxBlock < 1 {
		return nil, fmt.Errorf("stretch block size must be > 0: %d", maxBlock)
	}

	cfg := config{windowSize: DefaultWindowSize, overlap: DefaultOverlap}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.windowSize%cfg.overlap != 0 {
		return nil, fmt.Errorf("stretch overlap %d must divide window size %d", cfg.overlap, cfg.windowSize)
	}

	n := cfg.windowSize
	hop := n / cfg.overlap

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("stretch fft plan: %w", err)
	}

	win := window.Generate(window.TypeHann, n, window.WithPeriodic())
	gain, err := window.OverlapAddGain(win, hop)
	if err != nil {
		return nil, fmt.Errorf("stretch window: %w", err)
	}

	bins := n/2 + 1
	return &PhaseVocoder{
		sampleRate: sampleRate,
		maxBlock:   maxBlock,
		size:       n,
		hop:        hop,
		bins:       bins,
		scale:      1 / gain,
		plan:       plan,
		window:     win,
		stretch:    1,
		identity:   true,
		frame:      make([]float64, n),
		timeIn:     make([]complex128, n),
		cur:        make([]complex128, n),
		prev:       make([]complex128, n),
		re:         make([]float64, bins),
		im:         make([]float64, bins),
		mag:        make([]float64, bins),
		phase:      make([]float64, bins),
		last:       make([]float64, bins),
		running:    make([]float64, bins),
		acc:        make([]float64, maxBlock+n),
	}, nil
}

// SetInputSample copies buf as the looped source and rewinds playback. It
// allocates and must not be called from the audio path.
func (p *PhaseVocoder) SetInputSample(buf []float64) {
	p.source = append([]float64(nil), buf...)
	p.pos = 0
	p.clearOverlap()
}

// SetStretch sets the read-rate multiplier, clamped to [0, MaxStretch]. A
// value of exactly 1 plays the source directly.
func (p *PhaseVocoder) SetStretch(r float64) {
	if math.IsNaN(r) {
		return
	}
	p.stretch = core.Clamp(r, 0, MaxStretch)
}

// Process fills out with the next len(out) samples. Blocks longer than the
// configured maximum are rendered in pieces.
func (p *PhaseVocoder) Process(out []float64) {
	if len(p.source) == 0 {
		clear(out)
		return
	}
	for start := 0; start < len(out); start += p.maxBlock {
		end := min(start+p.maxBlock, len(out))
		p.processBlock(out[start:end])
	}
}

func (p *PhaseVocoder) processBlock(out []float64) {
	identity := p.stretch == 1
	if identity != p.identity {
		p.identity = identity
		p.clearOverlap()
	}
	if identity {
		p.copyCircular(out)
		return
	}

	n := len(out)
	for ; p.nextHop < n; p.nextHop += p.hop {
		p.analyze()
		p.resynthesize(p.acc[p.nextHop : p.nextHop+p.size])
		p.advance(float64(p.hop) * p.stretch)
	}
	p.nextHop -= n

	copy(out, p.acc[:n])
	copy(p.acc, p.acc[n:])
	clear(p.acc[len(p.acc)-n:])
}

func (p *PhaseVocoder) copyCircular(out []float64) {
	src := p.source
	i := int(p.pos)
	for k := range out {
		out[k] = src[i]
		i++
		if i >= len(src) {
			i = 0
		}
	}
	p.pos = float64(i)
}

// analyze transforms the frames at pos and pos+hop and advances the running
// phase by their per-bin difference.
func (p *PhaseVocoder) analyze() {
	base := int(p.pos)
	p.transform(p.prev, base)
	p.transform(p.cur, base+p.hop)

	spectrum.Split(p.re, p.im, p.prev[:p.bins])
	spectrum.PhaseFromParts(p.last, p.re, p.im)

	spectrum.Split(p.re, p.im, p.cur[:p.bins])
	spectrum.PhaseFromParts(p.phase, p.re, p.im)
	spectrum.MagnitudeFromParts(p.mag, p.re, p.im)

	for k := range p.running {
		p.running[k] = spectrum.WrapPhase(p.running[k] + spectrum.WrapPhase(p.phase[k]-p.last[k]))
	}
}

func (p *PhaseVocoder) transform(dst []complex128, start int) {
	src := p.source
	j := start % len(src)
	for i := range p.frame {
		p.frame[i] = src[j]
		j++
		if j >= len(src) {
			j = 0
		}
	}
	if err := window.ApplyInPlace(p.frame, p.window); err != nil {
		clear(dst)
		return
	}
	for i, x := range p.frame {
		p.timeIn[i] = complex(x, 0)
	}
	if err := p.plan.Forward(dst, p.timeIn); err != nil {
		clear(dst)
	}
}

// resynthesize builds a frame from the current magnitudes and running
// phases and overlap-adds it into dst.
func (p *PhaseVocoder) resynthesize(dst []float64) {
	spectrum.FromPolar(p.cur[:p.bins], p.mag, p.running)
	spectrum.MirrorHermitian(p.cur)

	if err := p.plan.Inverse(p.timeIn, p.cur); err != nil {
		return
	}
	for i, c := range p.timeIn {
		dst[i] += real(c) * p.scale
	}
}

func (p *PhaseVocoder) advance(step float64) {
	n := float64(len(p.source))
	p.pos = math.Mod(p.pos+step, n)
	if p.pos < 0 {
		p.pos += n
	}
}

func (p *PhaseVocoder) clearOverlap() {
	clear(p.acc)
	clear(p.running)
	p.nextHop = 0
}

// Reset rewinds playback and clears overlap state.
func (p *PhaseVocoder) Reset() {
	p.pos = 0
	p.clearOverlap()
}

func (p *PhaseVocoder) Stretch() float64    { return p.stretch }
func (p *PhaseVocoder) Position() float64   { return p.pos }
func (p *PhaseVocoder) WindowSize() int     { return p.size }
func (p *PhaseVocoder) Hop() int            { return p.hop }
func (p *PhaseVocoder) SourceLen() int      { return len(p.source) }
func (p *PhaseVocoder) SampleRate() float64 { return p.sampleRate }
