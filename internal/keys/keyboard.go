// Package keys plays the engine from a computer keyboard in a raw
// terminal.
//
// Terminals report key presses but not releases, so note keys latch:
// the first press starts a note and the second releases it.
package keys

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/cwbudde/algo-sculpt/engine"
)

// row maps keys to semitones above the current octave's C.
const row = "awsedftgyhujkolp;"

const (
	defaultOctave = 4
	minOctave     = 0
	maxOctave     = 8
	velocity      = 100
)

// Action is what a key press asks the caller to do.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
)

// Keyboard holds the latch and octave state.
type Keyboard struct {
	sink   engine.EventSink
	octave int
	held   map[int]bool
	log    *slog.Logger
}

// New returns a keyboard pushing events to sink.
func New(sink engine.EventSink, log *slog.Logger) *Keyboard {
	if log == nil {
		log = slog.Default()
	}
	return &Keyboard{sink: sink, octave: defaultOctave, held: make(map[int]bool), log: log}
}

// Octave returns the current octave (C4 is MIDI 60).
func (k *Keyboard) Octave() int { return k.octave }

// Note maps a key to its MIDI note in the current octave.
func (k *Keyboard) Note(b byte) (int, bool) {
	i := strings.IndexByte(row, b)
	if i < 0 {
		return 0, false
	}
	return (k.octave+1)*12 + i, true
}

// Handle processes one key.
//
//	row keys   toggle a note
//	z / x      octave down / up
//	space      release everything
//	q, Ctrl-C  quit
func (k *Keyboard) Handle(b byte) (Action, error) {
	switch b {
	case 'q', 3:
		k.releaseAll()
		return ActionQuit, nil
	case ' ':
		return ActionNone, k.releaseAll()
	case 'z':
		k.octave = max(k.octave-1, minOctave)
		return ActionNone, nil
	case 'x':
		k.octave = min(k.octave+1, maxOctave)
		return ActionNone, nil
	}

	note, ok := k.Note(b)
	if !ok {
		return ActionNone, nil
	}
	if k.held[note] {
		delete(k.held, note)
		return ActionNone, k.sink.Push(engine.Event{Kind: engine.NoteOff, Note: note})
	}
	k.held[note] = true
	return ActionNone, k.sink.Push(engine.Event{Kind: engine.NoteOn, Note: note, Velocity: velocity})
}

func (k *Keyboard) releaseAll() error {
	clear(k.held)
	return k.sink.Push(engine.Event{Kind: engine.AllNotesOff})
}

type chunk struct {
	b   []byte
	err error
}

// Run reads keys from r until quit, EOF, a read error or ctx is done.
// A read blocked in r may outlive Run once ctx is cancelled.
func (k *Keyboard) Run(ctx context.Context, r io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	chunks := make(chan chunk)
	go func() {
		buf := make([]byte, 16)
		for {
			n, err := r.Read(buf)
			c := chunk{b: append([]byte(nil), buf[:n]...), err: err}
			select {
			case chunks <- c:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		var c chunk
		select {
		case <-ctx.Done():
			return nil
		case c = <-chunks:
		}
		for _, b := range c.b {
			act, err := k.Handle(b)
			if err != nil {
				k.log.Warn("key event dropped", "key", string(b), "err", err)
			}
			if act == ActionQuit {
				return nil
			}
		}
		if errors.Is(c.err, io.EOF) {
			return nil
		}
		if c.err != nil {
			return c.err
		}
	}
}

// RunTerminal puts stdin into raw mode and runs the keyboard until quit or
// ctx is done. The terminal is restored before it returns.
func (k *Keyboard) RunTerminal(ctx context.Context) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("keys: stdin is not a terminal")
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("keys: raw mode: %w", err)
	}
	defer func() { _ = term.Restore(fd, old) }()

	fmt.Fprint(os.Stdout, "keys: a-; play, z/x octave, space release, q quit\r\n")
	return k.Run(ctx, os.Stdin)
}
