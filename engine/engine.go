package engine

import (
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/chewxy/math32"
	"github.com/cwbudde/algo-sculpt/config"
	"github.com/cwbudde/algo-sculpt/dsp/core"
	"github.com/cwbudde/algo-sculpt/dsp/effects"
	"github.com/cwbudde/algo-sculpt/dsp/filter/onepole"
	"github.com/cwbudde/algo-sculpt/dsp/filter/svf"
	"github.com/cwbudde/algo-sculpt/dsp/modulation"
	"github.com/cwbudde/algo-sculpt/dsp/osc"
	"github.com/cwbudde/algo-sculpt/dsp/stretch"
	"github.com/cwbudde/algo-sculpt/dsp/synth"
	"github.com/cwbudde/algo-vecmath"
)

const (
	cutoffSmoothingMs = 20
	minCutoffHz       = 20
	maxCutoffRatio    = 0.45
	lowpassStages     = 1
)

// defaultSlots are the LFO destinations used when settings name none.
var defaultSlots = [modulation.NumSlots]modulation.Destination{
	modulation.Destination(LPFCutoff),
	modulation.Destination(DelayTime),
	modulation.Destination(FreezeSize),
}

// modBus collects routed LFO values in normalized units, one per ParamID.
type modBus [NumParams]float64

func (m *modBus) ApplyModulation(dest modulation.Destination, v float64) {
	if dest >= 0 && int(dest) < len(m) {
		m[dest] = v
	}
}

// Engine is the complete synthesizer.
//
// Params and Queue may be used from any one control goroutine. Every
// other method belongs to the audio goroutine, or must be called while
// no audio is being processed.
type Engine struct {
	log        *slog.Logger
	sampleRate float64
	maxBlock   int
	minSub     int

	params   *Params
	queue    *EventQueue
	pending  []Event
	settings config.Settings

	base   [NumParams]float64
	mod    modBus
	eff    [NumParams]float64
	source int

	noise   *osc.Noise
	vocoder *stretch.PhaseVocoder
	freeze  *effects.Freeze
	voices  *synth.Manager
	octaver *effects.Octaver
	delay   *effects.Delay
	drive   *effects.Overdrive
	balance *effects.Balance
	lpf     *svf.Lowpass
	cutoff  *onepole.Smoother
	lfo     *modulation.LFO
	router  *modulation.Router

	input  []float64
	voiced []float64
}

// New builds an engine. All buffers are allocated here; Process and
// Render do not allocate afterwards.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.proc.Validate(); err != nil {
		return nil, err
	}
	sr, block := cfg.proc.SampleRate, cfg.proc.BlockSize
	if cfg.delayCapacity == 0 {
		cfg.delayCapacity = int(math.Ceil(DefaultDelayCapacityMs * sr / 1000))
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	queue, err := NewEventQueue(cfg.queueCap)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		log:        cfg.logger,
		sampleRate: sr,
		maxBlock:   block,
		minSub:     cfg.minSubBlock,
		params:     NewParams(),
		queue:      queue,
		pending:    make([]Event, queue.Cap()),
		noise:      osc.NewNoise(cfg.seed),
		drive:      effects.NewOverdrive(),
		input:      make([]float64, block),
		voiced:     make([]float64, block),
	}

	if e.vocoder, err = stretch.New(sr, block); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if e.freeze, err = effects.NewFreeze(cfg.freezeCap, effects.WithFreezeSize(min(effects.DefaultFreezeSize, cfg.freezeCap))); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if e.voices, err = synth.NewManager(sr, cfg.voices,
		synth.WithMaxBlockSize(block),
		synth.WithBankOptions(cfg.bankOpts...),
	); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if e.octaver, err = effects.NewOctaver(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if e.delay, err = effects.NewDelay(sr, cfg.delayCapacity); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if e.balance, err = effects.NewBalance(sr); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if e.lpf, err = svf.NewLowpass(sr, lowpassStages); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if e.cutoff, err = onepole.New(onepole.Coefficient(cutoffSmoothingMs, sr)); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if e.lfo, err = modulation.NewLFO(sr, paramTable[LFORate].Default); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if e.router, err = modulation.NewRouter(int(NumParams), defaultSlots); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	e.ApplySettings(config.Default())

	e.log.Debug("engine ready",
		"sample_rate", sr,
		"block", block,
		"voices", cfg.voices,
		"delay_capacity", cfg.delayCapacity,
		"freeze_capacity", cfg.freezeCap)

	return e, nil
}

// ApplySettings installs persisted settings. Invalid settings fall back
// to the defaults; a destination index outside the parameter table
// keeps that slot's default.
func (e *Engine) ApplySettings(s config.Settings) {
	if err := s.Validate(); err != nil {
		e.log.Warn("settings rejected, using defaults", "err", err)
		s = config.Default()
	}
	slots := defaultSlots
	for i, d := range s.LFODest {
		if ParamID(d).Valid() {
			slots[i] = modulation.Destination(d)
			continue
		}
		e.log.Warn("lfo destination out of range, keeping default",
			"slot", i, "dest", d, "default", ParamID(defaultSlots[i]))
	}
	if err := e.router.SetSlots(slots); err != nil {
		e.log.Warn("lfo slots rejected", "err", err)
	}
	e.settings = s
}

// SetInputSample loads the looped source used when Source selects the
// sample. It allocates.
func (e *Engine) SetInputSample(buf []float64) {
	e.vocoder.SetInputSample(buf)
	e.log.Info("input sample loaded",
		"samples", len(buf),
		"seconds", float64(len(buf))/e.sampleRate)
}

// NoteOn starts a note immediately.
func (e *Engine) NoteOn(note, velocity int) { e.voices.NoteOn(note, velocity) }

// NoteOff releases a note immediately.
func (e *Engine) NoteOff(note int) { e.voices.NoteOff(note) }

// SetPitchBend sets the global bend in semitones.
func (e *Engine) SetPitchBend(semitones float64) { e.voices.SetPitchBend(semitones) }

// SetSustainPedal sets the pedal state.
func (e *Engine) SetSustainPedal(down bool) { e.voices.SetSustainPedal(down) }

// AllNotesOff releases every voice.
func (e *Engine) AllNotesOff() { e.voices.AllNotesOff() }

func (e *Engine) apply(ev Event) {
	switch ev.Kind {
	case NoteOn:
		e.voices.NoteOn(ev.Note, ev.Velocity)
	case NoteOff:
		e.voices.NoteOff(ev.Note)
	case PitchBend:
		e.voices.SetPitchBend(ev.Value)
	case SustainPedal:
		e.voices.SetSustainPedal(ev.Value >= 0.5)
	case AllNotesOff:
		e.voices.AllNotesOff()
	}
}

// Render drains the event queue and renders len(out) samples with no
// live input.
func (e *Engine) Render(out []float32) { e.ProcessQueued(out, nil) }

// ProcessQueued drains the event queue and processes in into out. It is
// the entry point for audio callbacks.
func (e *Engine) ProcessQueued(out, in []float32) {
	n := e.queue.Drain(e.pending)
	e.Process(out, in, e.pending[:n])
}

// Process renders len(out) samples.
//
// in is the live input and may be nil or shorter than out; missing
// samples read as silence. events is sorted in place by Offset, which is
// relative to out[0]. Events at or past len(out) apply at the end of the
// call.
func (e *Engine) Process(out, in []float32, events []Event) {
	slices.SortStableFunc(events, compareOffset)
	if len(out) == 0 {
		for _, ev := range events {
			e.apply(ev)
		}
		return
	}

	next := 0
	for start := 0; start < len(out); start += e.maxBlock {
		end := min(start+e.maxBlock, len(out))
		k := next
		for k < len(events) && (events[k].Offset < end || end == len(out)) {
			k++
		}
		var blockIn []float32
		if start < len(in) {
			blockIn = in[start:min(end, len(in))]
		}
		e.processBlock(out[start:end], blockIn, events[next:k], start)
		next = k
	}
}

func (e *Engine) processBlock(out, in []float32, events []Event, base int) {
	n := len(out)
	input, voiced := e.input[:n], e.voiced[:n]

	e.updateControls(n)
	e.fillInput(input, in)
	e.renderVoices(input, voiced, events, base)
	e.postProcess(voiced)
	vecmath.ScaleBlock(voiced, voiced, e.eff[Volume])

	for i, y := range voiced {
		v := float32(y)
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			v = 0
		}
		out[i] = math32.Max(-1, math32.Min(1, v))
	}
}

// updateControls reads the parameter snapshot, advances the LFO by one
// block and pushes the modulated values into every processor.
func (e *Engine) updateControls(n int) {
	e.params.Snapshot(&e.base)

	e.lfo.SetRate(e.base[LFORate])
	e.lfo.SetShape(e.base[LFOShape])
	e.router.SetDepth(e.base[LFODepth])
	e.router.SetSelector(e.base[LFODest])
	e.router.Route(e.lfo.Tick(n), &e.mod)

	for i := range e.eff {
		e.eff[i] = paramTable[i].Modulate(e.base[i], e.mod[i])
	}

	e.source = int(math.Round(e.eff[Source]))
	e.vocoder.SetStretch(e.eff[SampleSpeed])
	e.freeze.SetFreeze(e.eff[Freeze] >= 0.5)
	e.freeze.SetFreezeSize(int(math.Round(e.eff[FreezeSize])))

	e.voices.SetShape(e.base[Shape])
	e.voices.SetShapeMod(e.eff[Shape] - e.base[Shape])
	e.voices.SetStretch(e.base[Stretch])
	e.voices.SetStretchMod(e.eff[Stretch] - e.base[Stretch])
	e.voices.SetQ(e.eff[Q])
	e.voices.SetSubLevel(e.eff[Sub])
	e.voices.SetADSR(e.eff[Attack], e.eff[Decay], e.eff[Sustain], e.eff[Release])

	if e.eff[Octave] > 0 {
		e.octaver.SetShift(2)
	} else {
		e.octaver.SetShift(0.5)
	}

	e.delay.SetDelayMs(e.base[DelayTime])
	e.delay.ApplyModulation((e.eff[DelayTime] - e.base[DelayTime]) * e.sampleRate / 1000)
	e.delay.SetFeedback(e.eff[Feedback])

	e.drive.SetDrive(e.eff[Drive])
	e.lpf.SetQ(e.eff[LPFResonance])
}

func (e *Engine) fillInput(dst []float64, in []float32) {
	gain, mix := e.eff[Gain], e.eff[Mix]
	switch e.source {
	case SourceNoise:
		for i := range dst {
			dst[i] = e.noise.Process()
		}
	case SourceSample:
		e.vocoder.Process(dst)
		for i, x := range dst {
			dst[i] = x*gain*mix + e.noise.Process()*(1-mix)
		}
	default:
		for i := range dst {
			var x float64
			if i < len(in) {
				x = float64(in[i])
			}
			dst[i] = x*gain*mix + e.noise.Process()*(1-mix)
		}
	}
	for i, x := range dst {
		dst[i] = e.freeze.Process(x)
	}
}

// renderVoices runs the voice pool, splitting the block at event
// offsets. An event closer than minSub to the previous split is applied
// at that split instead.
func (e *Engine) renderVoices(in, out []float64, events []Event, base int) {
	pos := 0
	for _, ev := range events {
		off := min(max(ev.Offset-base, 0), len(in))
		if off-pos >= e.minSub {
			e.voices.ProcessBlock(in[pos:off], out[pos:off])
			pos = off
		}
		e.apply(ev)
	}
	e.voices.ProcessBlock(in[pos:], out[pos:])
}

func (e *Engine) postProcess(buf []float64) {
	oct := math.Abs(e.eff[Octave])
	target := core.Clamp(e.eff[LPFCutoff], minCutoffHz, maxCutoffRatio*e.sampleRate)
	for i, y := range buf {
		y += e.octaver.Process(y) * oct
		y = e.delay.Process(y)
		y = e.balance.Process(e.drive.Process(y), y)
		e.lpf.SetCutoff(e.cutoff.Process(target))
		buf[i] = e.lpf.Process(y)
	}
}

// Reset silences every voice and clears all effect state. Parameters and
// the loaded sample are kept.
func (e *Engine) Reset() {
	e.voices.Reset()
	e.freeze.Reset()
	e.octaver.Reset()
	e.delay.Reset()
	e.balance.Reset()
	e.lpf.Reset()
	e.cutoff.Reset()
	e.lfo.Reset()
	e.noise.Reset()
	e.vocoder.Reset()
	e.mod = modBus{}
}

// Params returns the parameter store.
func (e *Engine) Params() *Params { return e.params }

// Queue returns the event queue drained by Render.
func (e *Engine) Queue() *EventQueue { return e.queue }

// Settings returns the settings in effect.
func (e *Engine) Settings() config.Settings { return e.settings }

// LFOSlots returns the three destinations the LFO selector spans.
func (e *Engine) LFOSlots() [modulation.NumSlots]ParamID {
	var out [modulation.NumSlots]ParamID
	for i, d := range e.router.Slots() {
		out[i] = ParamID(d)
	}
	return out
}

// Effective returns the value of id after modulation in the last block.
func (e *Engine) Effective(id ParamID) float64 {
	if !id.Valid() {
		return 0
	}
	return e.eff[id]
}

// Voices exposes the voice pool for inspection.
func (e *Engine) Voices() *synth.Manager { return e.voices }

func (e *Engine) SampleRate() float64 { return e.sampleRate }
func (e *Engine) MaxBlockSize() int   { return e.maxBlock }
