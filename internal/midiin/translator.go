// Package midiin turns incoming MIDI messages into engine events and
// parameter changes.
package midiin

import (
	"log/slog"
	"sync/atomic"

	"gitlab.com/gomidi/midi/v2"

	"github.com/cwbudde/algo-sculpt/config"
	"github.com/cwbudde/algo-sculpt/engine"
)

// Controller numbers handled outside the parameter pages.
const (
	CCSustain     = 64
	CCAllNotesOff = 123

	// BendRange is the pitch bend range in semitones.
	BendRange = 12.0
)

// pages maps the two controller pages to parameters. Page 0 starts at
// CC 20 and page 1 at CC 40; the index within the slice is the offset.
var pages = [2]struct {
	first  uint8
	params []engine.ParamID
}{
	{first: 20, params: []engine.ParamID{
		engine.Mix, engine.LPFResonance, engine.LPFCutoff, engine.Shape,
		engine.Q, engine.Sub, engine.Attack, engine.Decay,
		engine.Sustain, engine.Release, engine.Gain, engine.Feedback,
	}},
	{first: 40, params: []engine.ParamID{
		engine.DelayTime, engine.Stretch, engine.FreezeSize, engine.Freeze,
		engine.Drive, engine.LFOShape, engine.LFORate, engine.LFODepth,
		engine.LFODest, engine.Octave, engine.Volume, engine.Source,
		engine.SampleSpeed,
	}},
}

// CCParam returns the parameter controller cc drives on page.
func CCParam(page int, cc uint8) (engine.ParamID, bool) {
	if page < 0 || page >= len(pages) {
		return 0, false
	}
	p := pages[page]
	if cc < p.first || int(cc-p.first) >= len(p.params) {
		return 0, false
	}
	return p.params[cc-p.first], true
}

// Translator converts MIDI messages for one engine. Handle may be called
// from a single listener goroutine.
type Translator struct {
	sink    engine.EventSink
	params  *engine.Params
	channel uint8
	page    int
	log     *slog.Logger

	dropped atomic.Uint64
}

// NewTranslator creates a translator filtered by the settings' channel
// (0 is omni) using the settings' controller page.
func NewTranslator(sink engine.EventSink, params *engine.Params, s config.Settings, log *slog.Logger) *Translator {
	if log == nil {
		log = slog.Default()
	}
	if s.MIDIChannel > 16 {
		log.Warn("midi channel above 16 never matches", "channel", s.MIDIChannel)
	}
	return &Translator{
		sink:    sink,
		params:  params,
		channel: s.MIDIChannel,
		page:    int(s.ParamMode),
		log:     log,
	}
}

func (t *Translator) accepts(ch uint8) bool {
	return t.channel == 0 || ch+1 == t.channel
}

// Handle applies msg and reports whether it was used.
func (t *Translator) Handle(msg midi.Message) bool {
	var ch, key, vel, cc, val uint8
	var rel int16
	var abs uint16

	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		if !t.accepts(ch) {
			return false
		}
		t.push(engine.Event{Kind: engine.NoteOn, Note: int(key), Velocity: int(vel)})
	case msg.GetNoteEnd(&ch, &key):
		if !t.accepts(ch) {
			return false
		}
		t.push(engine.Event{Kind: engine.NoteOff, Note: int(key)})
	case msg.GetPitchBend(&ch, &rel, &abs):
		if !t.accepts(ch) {
			return false
		}
		t.push(engine.Event{Kind: engine.PitchBend, Value: float64(rel) / 8192 * BendRange})
	case msg.GetControlChange(&ch, &cc, &val):
		if !t.accepts(ch) {
			return false
		}
		return t.control(cc, val)
	default:
		return false
	}
	return true
}

func (t *Translator) control(cc, val uint8) bool {
	switch cc {
	case CCSustain:
		v := 0.0
		if val >= 64 {
			v = 1
		}
		t.push(engine.Event{Kind: engine.SustainPedal, Value: v})
		return true
	case CCAllNotesOff:
		t.push(engine.Event{Kind: engine.AllNotesOff})
		return true
	}
	id, ok := CCParam(t.page, cc)
	if !ok {
		return false
	}
	t.params.SetNormalized(id, float64(val)/127)
	return true
}

func (t *Translator) push(ev engine.Event) {
	if err := t.sink.Push(ev); err != nil {
		if t.dropped.Add(1) == 1 {
			t.log.Warn("midi event dropped", "event", ev, "err", err)
		}
	}
}

// Dropped returns how many events were lost to a full queue.
func (t *Translator) Dropped() uint64 { return t.dropped.Load() }
