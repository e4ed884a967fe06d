package engine

import (
	"cmp"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// EventKind identifies a performance event.
type EventKind uint8

const (
	NoteOn EventKind = iota
	NoteOff
	PitchBend
	SustainPedal
	AllNotesOff
)

func (k EventKind) String() string {
	switch k {
	case NoteOn:
		return "NoteOn"
	case NoteOff:
		return "NoteOff"
	case PitchBend:
		return "PitchBend"
	case SustainPedal:
		return "SustainPedal"
	case AllNotesOff:
		return "AllNotesOff"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// Event is a sample-accurate performance event.
//
// Offset is relative to the start of the block it is delivered with.
// Value carries the bend in semitones for PitchBend and the pedal
// position (>= 0.5 is down) for SustainPedal.
type Event struct {
	Offset   int
	Kind     EventKind
	Note     int
	Velocity int
	Value    float64
}

func (e Event) String() string {
	switch e.Kind {
	case NoteOn:
		return fmt.Sprintf("NoteOn(note=%d vel=%d @%d)", e.Note, e.Velocity, e.Offset)
	case NoteOff:
		return fmt.Sprintf("NoteOff(note=%d @%d)", e.Note, e.Offset)
	case PitchBend, SustainPedal:
		return fmt.Sprintf("%s(%.3f @%d)", e.Kind, e.Value, e.Offset)
	default:
		return fmt.Sprintf("%s(@%d)", e.Kind, e.Offset)
	}
}

func compareOffset(a, b Event) int { return cmp.Compare(a.Offset, b.Offset) }

// ErrQueueFull is returned by Push when the consumer has fallen behind.
var ErrQueueFull = errors.New("engine: event queue full")

// DefaultQueueCapacity is the EventQueue size used by New.
const DefaultQueueCapacity = 1024

// EventQueue is a fixed-size single-producer single-consumer ring.
//
// Exactly one goroutine may Push and exactly one may Drain. Neither side
// locks or allocates.
type EventQueue struct {
	buf  []Event
	mask uint64
	head atomic.Uint64 // next slot to read, owned by the consumer
	tail atomic.Uint64 // next slot to write, owned by the producer
}

// NewEventQueue returns a queue holding capacity events, rounded up to a
// power of two.
func NewEventQueue(capacity int) (*EventQueue, error) {
	if capacity < 1 || capacity > 1<<20 {
		return nil, fmt.Errorf("event queue capacity must be in [1, %d]: %d", 1<<20, capacity)
	}
	size := 1
	for size < capacity {
		size <<= 1
	}
	return &EventQueue{buf: make([]Event, size), mask: uint64(size - 1)}, nil
}

// Push appends ev. It fails with ErrQueueFull instead of overwriting.
func (q *EventQueue) Push(ev Event) error {
	tail := q.tail.Load()
	if tail-q.head.Load() == uint64(len(q.buf)) {
		return ErrQueueFull
	}
	q.buf[tail&q.mask] = ev
	q.tail.Store(tail + 1)
	return nil
}

// Drain moves up to len(dst) pending events into dst and returns the count.
func (q *EventQueue) Drain(dst []Event) int {
	head := q.head.Load()
	avail := q.tail.Load() - head
	n := min(uint64(len(dst)), avail)
	for i := range n {
		dst[i] = q.buf[(head+i)&q.mask]
	}
	q.head.Store(head + n)
	return int(n)
}

// Len returns the number of pending events.
func (q *EventQueue) Len() int { return int(q.tail.Load() - q.head.Load()) }

// Cap returns the queue capacity.
func (q *EventQueue) Cap() int { return len(q.buf) }

// EventSink accepts events from a control goroutine.
type EventSink interface {
	Push(ev Event) error
}

// Producer lets several control goroutines share one EventQueue by
// serializing their pushes. The audio side still drains without locking.
type Producer struct {
	mu sync.Mutex
	q  *EventQueue
}

// NewProducer wraps q.
func NewProducer(q *EventQueue) *Producer { return &Producer{q: q} }

// Push forwards ev to the queue.
func (p *Producer) Push(ev Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.q.Push(ev)
}
