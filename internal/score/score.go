// Package score compiles Lua performance scripts into timed engine cues
// and renders them offline.
//
// A script runs once at compile time with these globals:
//
//	rate                      sample rate in Hz
//	note(n, vel, seconds)     note on now, note off after seconds
//	on(n, vel) / off(n)       bare note on and off
//	bend(semitones)           pitch bend
//	pedal(down)               sustain pedal
//	panic()                   all notes off
//	set(name, value)          parameter change
//	wait(seconds) / at(sec)   move the cursor relatively or absolutely
//	now()                     cursor position in seconds
//	length(seconds)           fix the rendered duration
package score

import (
	"fmt"
	"math"
	"slices"

	lua "github.com/yuin/gopher-lua"

	"github.com/cwbudde/algo-sculpt/engine"
)

// DefaultTail is rendered after the last cue when no length is set.
const DefaultTail = 2.0

// CueKind distinguishes events from parameter changes.
type CueKind int

const (
	CueEvent CueKind = iota
	CueParam
)

// Cue is one timed action.
type Cue struct {
	At    int
	Kind  CueKind
	Event engine.Event
	Param engine.ParamID
	Value float64
}

// Score is a compiled script.
type Score struct {
	SampleRate int
	Length     int
	Cues       []Cue
}

type compiler struct {
	rate   int
	cursor float64
	length float64
	cues   []Cue
}

func (c *compiler) at(sec float64) int { return int(math.Round(sec * float64(c.rate))) }

func (c *compiler) event(sec float64, ev engine.Event) {
	c.cues = append(c.cues, Cue{At: c.at(sec), Kind: CueEvent, Event: ev})
}

// Compile runs src and returns its cues sorted by time.
func Compile(src string, sampleRate int) (*Score, error) {
	return compile(sampleRate, func(L *lua.LState) error { return L.DoString(src) })
}

// CompileFile runs the script at path.
func CompileFile(path string, sampleRate int) (*Score, error) {
	return compile(sampleRate, func(L *lua.LState) error { return L.DoFile(path) })
}

func compile(sampleRate int, run func(*lua.LState) error) (*Score, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("score sample rate must be > 0: %d", sampleRate)
	}
	c := &compiler{rate: sampleRate, length: -1}

	L := lua.NewState()
	defer L.Close()
	c.install(L)

	if err := run(L); err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}

	slices.SortStableFunc(c.cues, func(a, b Cue) int { return a.At - b.At })
	s := &Score{SampleRate: sampleRate, Cues: c.cues}
	switch {
	case c.length >= 0:
		s.Length = c.at(c.length)
	case len(c.cues) > 0:
		s.Length = c.cues[len(c.cues)-1].At + c.at(DefaultTail)
	default:
		s.Length = c.at(math.Max(c.cursor, DefaultTail))
	}
	return s, nil
}

func (c *compiler) install(L *lua.LState) {
	L.SetGlobal("rate", lua.LNumber(c.rate))

	fns := map[string]lua.LGFunction{
		"note": func(L *lua.LState) int {
			n, vel, dur := L.CheckInt(1), L.OptInt(2, 100), float64(L.OptNumber(3, 0.5))
			if dur < 0 {
				L.ArgError(3, "duration must be >= 0")
			}
			c.event(c.cursor, engine.Event{Kind: engine.NoteOn, Note: n, Velocity: vel})
			c.event(c.cursor+dur, engine.Event{Kind: engine.NoteOff, Note: n})
			return 0
		},
		"on": func(L *lua.LState) int {
			c.event(c.cursor, engine.Event{Kind: engine.NoteOn, Note: L.CheckInt(1), Velocity: L.OptInt(2, 100)})
			return 0
		},
		"off": func(L *lua.LState) int {
			c.event(c.cursor, engine.Event{Kind: engine.NoteOff, Note: L.CheckInt(1)})
			return 0
		},
		"bend": func(L *lua.LState) int {
			c.event(c.cursor, engine.Event{Kind: engine.PitchBend, Value: float64(L.CheckNumber(1))})
			return 0
		},
		"pedal": func(L *lua.LState) int {
			v := 0.0
			if L.ToBool(1) {
				v = 1
			}
			c.event(c.cursor, engine.Event{Kind: engine.SustainPedal, Value: v})
			return 0
		},
		"panic": func(L *lua.LState) int {
			c.event(c.cursor, engine.Event{Kind: engine.AllNotesOff})
			return 0
		},
		"set": func(L *lua.LState) int {
			name, v := L.CheckString(1), float64(L.CheckNumber(2))
			id, err := engine.ParamByName(name)
			if err != nil {
				L.RaiseError("%v", err)
				return 0
			}
			c.cues = append(c.cues, Cue{At: c.at(c.cursor), Kind: CueParam, Param: id, Value: v})
			return 0
		},
		"wait": func(L *lua.LState) int {
			d := float64(L.CheckNumber(1))
			if d < 0 {
				L.ArgError(1, "wait must be >= 0")
			}
			c.cursor += d
			return 0
		},
		"at": func(L *lua.LState) int {
			t := float64(L.CheckNumber(1))
			if t < 0 {
				L.ArgError(1, "time must be >= 0")
			}
			c.cursor = t
			return 0
		},
		"now": func(L *lua.LState) int {
			L.Push(lua.LNumber(c.cursor))
			return 1
		},
		"length": func(L *lua.LState) int {
			t := float64(L.CheckNumber(1))
			if t < 0 {
				L.ArgError(1, "length must be >= 0")
			}
			c.length = t
			return 0
		},
	}
	for name, fn := range fns {
		L.SetGlobal(name, L.NewFunction(fn))
	}
}

// Render plays the score through e and returns the output. Parameter
// cues take effect at the start of the block containing them; events
// are sample accurate.
func (s *Score) Render(e *engine.Engine) []float32 {
	out := make([]float32, s.Length)
	block := e.MaxBlockSize()
	events := make([]engine.Event, 0, len(s.Cues))
	next := 0
	for start := 0; start < len(out); start += block {
		end := min(start+block, len(out))
		events = events[:0]
		for ; next < len(s.Cues) && s.Cues[next].At < end; next++ {
			cue := s.Cues[next]
			switch cue.Kind {
			case CueParam:
				e.Params().Set(cue.Param, cue.Value)
			case CueEvent:
				ev := cue.Event
				ev.Offset = cue.At - start
				events = append(events, ev)
			}
		}
		e.Process(out[start:end], nil, events)
	}
	return out
}
