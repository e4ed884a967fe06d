package synth

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-sculpt/dsp/core"
	"github.com/cwbudde/algo-sculpt/dsp/filter/harmonic"
	"github.com/cwbudde/algo-sculpt/dsp/filter/svf"
	"github.com/cwbudde/algo-vecmath"
)

const (
	// MaxVoices bounds the pool size.
	MaxVoices = 32

	defaultMaxBlock = 1024
)

// ManagerOption configures a Manager.
type ManagerOption func(*managerConfig) error

type managerConfig struct {
	bankOpts []harmonic.Option
	maxBlock int
}

// WithBankOptions forwards options to every voice's filter bank.
func WithBankOptions(opts ...harmonic.Option) ManagerOption {
	return func(cfg *managerConfig) error {
		cfg.bankOpts = append(cfg.bankOpts, opts...)
		return nil
	}
}

// WithMaxBlockSize sizes the per-voice scratch buffer used by ProcessBlock.
func WithMaxBlockSize(n int) ManagerOption {
	return func(cfg *managerConfig) error {
		if n <= 0 {
			return fmt.Errorf("voice manager block size must be > 0: %d", n)
		}
		cfg.maxBlock = n
		return nil
	}
}

// Manager owns a fixed voice pool.
//
// NoteOn allocation order:
//
//  1. a voice already playing the note is retriggered
//  2. otherwise the first idle voice
//  3. otherwise the first releasing voice
//  4. otherwise the active voice with the oldest timestamp is stolen
//
// Ties are broken by pool index. This is a heuristic, not an optimal
// scheduler; it guarantees at most one voice per note and that NoteOff
// always finds the voice of a sounding note.
type Manager struct {
	voices  []*Voice
	order   []int
	scratch []float64

	clock uint64
	pedal bool
	bend  float64
	qGain float64
}

// NewManager creates a manager with n voices.
func NewManager(sampleRate float64, n int, opts ...ManagerOption) (*Manager, error) {
	if n < 1 || n > MaxVoices {
		return nil, fmt.Errorf("voice count must be in [1, %d]: %d", MaxVoices, n)
	}

	cfg := managerConfig{maxBlock: defaultMaxBlock}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	m := &Manager{
		voices:  make([]*Voice, n),
		order:   make([]int, 0, n),
		scratch: make([]float64, cfg.maxBlock),
		qGain:   math.Sqrt(harmonic.DefaultQ),
	}
	for i := range m.voices {
		v, err := NewVoice(sampleRate, cfg.bankOpts...)
		if err != nil {
			return nil, err
		}
		v.index = i
		v.onIdle = m.reclaim
		m.voices[i] = v
	}

	return m, nil
}

// NoteOn starts note at velocity. Velocity 0 is a note-off.
func (m *Manager) NoteOn(note, velocity int) {
	if note < 0 || note > 127 {
		return
	}
	if velocity <= 0 {
		m.NoteOff(note)
		return
	}

	m.clock++

	if i := m.find(note); i >= 0 {
		m.voices[i].Retrigger(velocity, m.clock)
		m.touch(i)
		return
	}

	i := m.firstIn(StateIdle)
	if i < 0 {
		i = m.firstIn(StateReleasing)
	}
	if i < 0 {
		i = m.oldestActive()
	}

	v := m.voices[i]
	v.SetBend(m.bend)
	v.NoteOn(note, velocity, m.clock)
	m.touch(i)
}

// NoteOff releases the voice bound to note. While the sustain pedal is
// down the release is deferred until the pedal lifts.
func (m *Manager) NoteOff(note int) {
	i := m.find(note)
	if i < 0 || m.voices[i].State() != StateActive {
		return
	}
	if m.pedal {
		m.voices[i].held = true
		return
	}
	m.voices[i].NoteOff()
	m.remove(i)
}

// SetSustainPedal sets the pedal state. Lifting it releases held notes.
func (m *Manager) SetSustainPedal(down bool) {
	m.pedal = down
	if down {
		return
	}
	for i, v := range m.voices {
		if v.held {
			v.NoteOff()
			m.remove(i)
		}
	}
}

// AllNotesOff releases every sounding voice and forgets held notes.
func (m *Manager) AllNotesOff() {
	for _, v := range m.voices {
		if v.State() == StateActive {
			v.NoteOff()
		}
		v.held = false
	}
	m.order = m.order[:0]
}

// Reset silences all voices immediately.
func (m *Manager) Reset() {
	for _, v := range m.voices {
		v.Kill()
	}
	m.order = m.order[:0]
	m.pedal = false
}

// SetPitchBend applies a pitch offset in semitones to all voices.
func (m *Manager) SetPitchBend(semitones float64) {
	if math.IsNaN(semitones) {
		return
	}
	m.bend = semitones
	for _, v := range m.voices {
		v.SetBend(semitones)
	}
}

// SetShape sets the harmonic shape of every voice.
func (m *Manager) SetShape(x float64) {
	for _, v := range m.voices {
		v.bank.SetShape(x)
	}
}

// SetShapeMod sets the shape modulation offset of every voice.
func (m *Manager) SetShapeMod(x float64) {
	for _, v := range m.voices {
		v.bank.SetShapeMod(x)
	}
}

// SetQ sets the bandpass resonance of every voice. The voice sum is
// scaled by sqrt(Q) to offset the narrower passband.
func (m *Manager) SetQ(q float64) {
	if math.IsNaN(q) {
		return
	}
	m.qGain = math.Sqrt(core.Clamp(q, svf.MinQ, svf.MaxQ))
	for _, v := range m.voices {
		v.bank.SetQ(q)
	}
}

// SetStretch sets the harmonic stretch of every voice.
func (m *Manager) SetStretch(s float64) {
	for _, v := range m.voices {
		v.bank.SetStretch(s)
	}
}

// SetStretchMod sets the stretch modulation offset of every voice.
func (m *Manager) SetStretchMod(s float64) {
	for _, v := range m.voices {
		v.bank.SetStretchMod(s)
	}
}

// SetSubLevel sets the sub-oscillator amount of every voice.
func (m *Manager) SetSubLevel(level float64) {
	for _, v := range m.voices {
		v.SetSubLevel(level)
	}
}

// SetADSR sets envelope times (ms) and sustain level of every voice.
func (m *Manager) SetADSR(attackMs, decayMs, sustain, releaseMs float64) {
	for _, v := range m.voices {
		v.env.SetAttack(attackMs)
		v.env.SetDecay(decayMs)
		v.env.SetSustain(sustain)
		v.env.SetRelease(releaseMs)
	}
}

// Process renders one sample of the voice sum.
func (m *Manager) Process(x float64) float64 {
	sum := 0.0
	for _, v := range m.voices {
		if v.State() == StateIdle {
			continue
		}
		sum += v.Process(x)
	}
	return sum * m.qGain
}

// ProcessBlock renders the voice sum for in into out. Both must have the
// same length.
func (m *Manager) ProcessBlock(in, out []float64) {
	clear(out)
	for start := 0; start < len(out); start += len(m.scratch) {
		end := min(start+len(m.scratch), len(out))
		dst := out[start:end]
		tmp := m.scratch[:end-start]
		for _, v := range m.voices {
			if v.State() == StateIdle {
				continue
			}
			v.ProcessBlock(in[start:end], tmp)
			vecmath.AddBlockInPlace(dst, tmp)
		}
	}
	vecmath.ScaleBlock(out, out, m.qGain)
}

func (m *Manager) find(note int) int {
	for i, v := range m.voices {
		if v.note == note && v.State() != StateIdle {
			return i
		}
	}
	return -1
}

func (m *Manager) firstIn(s State) int {
	for i, v := range m.voices {
		if v.State() == s {
			return i
		}
	}
	return -1
}

func (m *Manager) oldestActive() int {
	best := -1
	for i, v := range m.voices {
		if v.State() != StateActive {
			continue
		}
		if best < 0 || v.timestamp < m.voices[best].timestamp {
			best = i
		}
	}
	if best < 0 {
		return 0
	}
	return best
}

// touch moves voice i to the newest end of the steal order.
func (m *Manager) touch(i int) {
	m.remove(i)
	m.order = append(m.order, i)
}

func (m *Manager) remove(i int) {
	for k, idx := range m.order {
		if idx == i {
			m.order = append(m.order[:k], m.order[k+1:]...)
			return
		}
	}
}

func (m *Manager) reclaim(i int) {
	m.remove(i)
}

// ActiveOrder appends the steal order, oldest first, to dst.
func (m *Manager) ActiveOrder(dst []int) []int {
	return append(dst, m.order...)
}

// Voice returns voice i.
func (m *Manager) Voice(i int) *Voice { return m.voices[i] }

// NumVoices returns the pool size.
func (m *Manager) NumVoices() int { return len(m.voices) }

// ActiveCount returns the number of non-idle voices.
func (m *Manager) ActiveCount() int {
	n := 0
	for _, v := range m.voices {
		if v.State() != StateIdle {
			n++
		}
	}
	return n
}

// SustainPedal reports the pedal state.
func (m *Manager) SustainPedal() bool { return m.pedal }
