package synth

import (
	"fmt"

	"github.com/cwbudde/algo-sculpt/dsp/core"
	"github.com/cwbudde/algo-sculpt/dsp/envelope"
	"github.com/cwbudde/algo-sculpt/dsp/filter/harmonic"
	"github.com/cwbudde/algo-sculpt/dsp/osc"
)

// NoNote marks a voice that is not bound to a note.
const NoNote = -1

// Sub-oscillator mix levels. The second (two octaves down) only fades in
// over the upper half of the sub range.
const (
	sub1Level = 0.1
	sub2Level = 0.15
)

// State is the lifecycle stage of a voice, derived from its envelope.
type State int

const (
	StateIdle State = iota
	StateActive
	StateReleasing
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateReleasing:
		return "releasing"
	default:
		return "unknown"
	}
}

// Voice is one note of polyphony.
type Voice struct {
	index int

	env  *envelope.Envelope
	bank *harmonic.Bank
	sub1 *osc.Oscillator
	sub2 *osc.Oscillator

	note      int
	velocity  int
	timestamp uint64
	bend      float64
	sub       float64
	held      bool

	onIdle func(index int)
}

// NewVoice creates an idle voice.
func NewVoice(sampleRate float64, bankOpts ...harmonic.Option) (*Voice, error) {
	env, err := envelope.NewDefault(sampleRate)
	if err != nil {
		return nil, fmt.Errorf("voice envelope: %w", err)
	}
	bank, err := harmonic.New(sampleRate, bankOpts...)
	if err != nil {
		return nil, fmt.Errorf("voice filter bank: %w", err)
	}
	sub1, err := osc.New(sampleRate, 0)
	if err != nil {
		return nil, fmt.Errorf("voice sub oscillator: %w", err)
	}
	sub2, err := osc.New(sampleRate, 0)
	if err != nil {
		return nil, fmt.Errorf("voice sub oscillator: %w", err)
	}

	v := &Voice{
		env:  env,
		bank: bank,
		sub1: sub1,
		sub2: sub2,
		note: NoNote,
	}
	env.OnRelease = v.released

	return v, nil
}

// NoteOn binds the voice to note and starts its envelope. A voice coming
// from idle starts from clean filter and oscillator state.
func (v *Voice) NoteOn(note, velocity int, timestamp uint64) {
	if v.State() == StateIdle {
		v.bank.Clear()
		v.sub1.Reset()
		v.sub2.Reset()
	}
	v.note = note
	v.held = false
	v.tune()
	v.Retrigger(velocity, timestamp)
}

// Retrigger restarts the attack without changing the note.
func (v *Voice) Retrigger(velocity int, timestamp uint64) {
	v.velocity = velocity
	v.timestamp = timestamp
	v.held = false
	v.env.NoteOn(velocity)
}

// NoteOff starts the release.
func (v *Voice) NoteOff() {
	v.held = false
	v.env.NoteOff()
}

// Kill silences the voice immediately without a release.
func (v *Voice) Kill() {
	v.env.Reset()
	v.bank.Clear()
	v.note = NoNote
	v.held = false
}

// SetBend applies a pitch offset in semitones.
func (v *Voice) SetBend(semitones float64) {
	if semitones == v.bend {
		return
	}
	v.bend = semitones
	v.bank.SetBend(semitones)
	v.tuneSubs()
}

// SetSubLevel sets the sub-oscillator amount in [0, 1].
func (v *Voice) SetSubLevel(level float64) {
	v.sub = core.Clamp(level, 0, 1)
}

func (v *Voice) tune() {
	if v.note == NoNote {
		return
	}
	v.bank.SetFrequency(core.MIDIToFreq(float64(v.note)))
	v.tuneSubs()
}

func (v *Voice) tuneSubs() {
	if v.note == NoNote {
		return
	}
	f := core.MIDIToFreq(float64(v.note)) * core.SemitonesToRatio(v.bend)
	v.sub1.SetFrequency(f / 2)
	v.sub2.SetFrequency(f / 4)
}

// Process renders one sample from input x.
func (v *Voice) Process(x float64) float64 {
	vol := v.env.Tick()
	if vol == 0 {
		v.bank.Clear()
		return 0
	}

	s1 := v.sub1.Process()
	s2 := v.sub2.Process()
	sub := s1*v.sub*sub1Level + s2*max(v.sub-0.5, 0)*sub2Level

	return (v.bank.Process(x) + sub) * vol
}

// ProcessBlock renders len(out) samples from in.
func (v *Voice) ProcessBlock(in, out []float64) {
	for i := range out {
		out[i] = v.Process(in[i])
	}
}

func (v *Voice) released() {
	v.note = NoNote
	v.held = false
	if v.onIdle != nil {
		v.onIdle(v.index)
	}
}

// State derives the lifecycle stage from the envelope.
func (v *Voice) State() State {
	switch {
	case v.env.IsIdle():
		return StateIdle
	case v.env.IsReleasing():
		return StateReleasing
	default:
		return StateActive
	}
}

func (v *Voice) Note() int                    { return v.note }
func (v *Voice) Velocity() int                { return v.velocity }
func (v *Voice) Timestamp() uint64            { return v.timestamp }
func (v *Voice) Held() bool                   { return v.held }
func (v *Voice) Level() float64               { return v.env.Level() }
func (v *Voice) Envelope() *envelope.Envelope { return v.env }
func (v *Voice) Bank() *harmonic.Bank         { return v.bank }
