// Package envelope provides the linear ADSR generator that gates each
// synth voice.
package envelope

import (
	"fmt"
	"math"
)

// Stage identifies the active envelope segment.
type Stage int

const (
	StageAttack Stage = iota
	StageDecay
	StageSustain
	StageRelease
	StageIdle
	numStages
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageAttack:
		return "attack"
	case StageDecay:
		return "decay"
	case StageSustain:
		return "sustain"
	case StageRelease:
		return "release"
	case StageIdle:
		return "idle"
	default:
		return "unknown"
	}
}

const (
	// MinTimeMs is the floor applied by the time setters.
	MinTimeMs = 1.0
	// MinSustain is the floor applied by SetSustain.
	MinSustain = 0.01

	defaultAttackMs  = 10.0
	defaultDecayMs   = 200.0
	defaultSustain   = 0.7
	defaultReleaseMs = 300.0

	levelEpsilon = 1e-9
)

// Envelope is a four-segment linear ramp generator.
//
// Levels stay in [0, 1]. NoteOn scales the attack peak and the sustain
// level by velocity/127. NoteOff derives the release slope from the level
// at that moment, so the release always lasts the configured time.
type Envelope struct {
	sampleRate float64

	attackMs  float64
	decayMs   float64
	sustain   float64
	releaseMs float64

	velocity float64
	stage    Stage
	level    float64
	target   [numStages]float64
	inc      [numStages]float64

	playing   bool
	releasing bool
	released  bool

	// OnRelease fires once each time a release reaches zero.
	OnRelease func()
}

// New creates an idle envelope. Times are in milliseconds.
func New(sampleRate, attackMs, decayMs, sustain, releaseMs float64) (*Envelope, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("envelope sample rate must be > 0: %f", sampleRate)
	}
	for _, v := range []float64{attackMs, decayMs, sustain, releaseMs} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("envelope parameters must be finite: %f", v)
		}
	}

	e := &Envelope{
		sampleRate: sampleRate,
		velocity:   1,
		stage:      StageIdle,
		released:   true,
	}
	e.SetAttack(attackMs)
	e.SetDecay(decayMs)
	e.SetSustain(sustain)
	e.SetRelease(releaseMs)

	return e, nil
}

// NewDefault creates an envelope with 10/200/0.7/300 settings.
func NewDefault(sampleRate float64) (*Envelope, error) {
	return New(sampleRate, defaultAttackMs, defaultDecayMs, defaultSustain, defaultReleaseMs)
}

// Rate returns the per-sample increment that covers distance in ms
// milliseconds, or -1 for a non-positive time.
func Rate(distance, ms, sampleRate float64) float64 {
	if ms > 0 {
		return distance / ((ms / 1000) * sampleRate)
	}
	return -1
}

// segmentRate treats the -1 sentinel as a full-scale jump per sample.
func (e *Envelope) segmentRate(distance, ms float64) float64 {
	r := Rate(distance, ms, e.sampleRate)
	if r < 0 {
		return 1
	}
	return r
}

// NoteOn restarts the attack from the current level.
func (e *Envelope) NoteOn(velocity int) {
	v := float64(min(max(velocity, 0), 127)) / 127
	e.velocity = v

	e.target[StageAttack] = v
	e.target[StageDecay] = v * e.sustain
	e.target[StageRelease] = 0
	e.inc[StageAttack] = e.segmentRate(v, e.attackMs)
	e.inc[StageDecay] = -e.segmentRate(v, e.decayMs)

	e.stage = StageAttack
	e.playing = true
	e.releasing = false
	e.released = false
}

// NoteOff enters the release segment. It is a no-op when idle.
func (e *Envelope) NoteOff() {
	if e.released {
		return
	}
	e.inc[StageRelease] = -e.segmentRate(e.level, e.releaseMs)
	e.stage = StageRelease
	e.playing = true
	e.releasing = true
}

// Tick advances one sample and returns the new level.
func (e *Envelope) Tick() float64 {
	if e.level > 1 {
		e.level = 1
	}

	switch e.stage {
	case StageAttack:
		e.level += e.inc[StageAttack]
		if e.level >= e.target[StageAttack] {
			e.level = e.target[StageAttack]
			e.stage = StageDecay
		}
	case StageDecay:
		e.level += e.inc[StageDecay]
		if e.level <= e.target[StageDecay]+levelEpsilon {
			e.level = e.target[StageDecay]
			e.stage = StageSustain
			e.playing = false
		}
	case StageSustain:
		// Follow sustain edits at the decay slope.
		target := e.target[StageDecay]
		if e.level > target {
			e.level = math.Max(e.level+e.inc[StageDecay], target)
		} else if e.level < target {
			e.level = math.Min(e.level-e.inc[StageDecay], target)
		}
	case StageRelease:
		e.level += e.inc[StageRelease]
		if e.level <= levelEpsilon {
			e.finishRelease()
		}
	default:
		e.level = 0
	}

	return e.level
}

func (e *Envelope) finishRelease() {
	e.level = 0
	e.stage = StageIdle
	e.playing = false
	e.releasing = false
	e.released = true
	if e.OnRelease != nil {
		e.OnRelease()
	}
}

// SetAttack sets the attack time in milliseconds (floored at MinTimeMs).
func (e *Envelope) SetAttack(ms float64) {
	ms = math.Max(ms, MinTimeMs)
	if ms == e.attackMs {
		return
	}
	e.attackMs = ms
	e.inc[StageAttack] = e.segmentRate(e.velocity, e.attackMs)
}

// SetDecay sets the decay time in milliseconds (floored at MinTimeMs).
func (e *Envelope) SetDecay(ms float64) {
	ms = math.Max(ms, MinTimeMs)
	if ms == e.decayMs {
		return
	}
	e.decayMs = ms
	e.inc[StageDecay] = -e.segmentRate(e.velocity, e.decayMs)
}

// SetSustain sets the sustain level, clamped to [MinSustain, 1].
func (e *Envelope) SetSustain(level float64) {
	level = math.Min(math.Max(level, MinSustain), 1)
	if level == e.sustain {
		return
	}
	e.sustain = level
	e.target[StageDecay] = e.velocity * e.sustain
}

// SetRelease sets the release time in milliseconds (floored at MinTimeMs).
func (e *Envelope) SetRelease(ms float64) {
	ms = math.Max(ms, MinTimeMs)
	if ms == e.releaseMs {
		return
	}
	e.releaseMs = ms
	from := e.velocity * e.sustain
	if e.releasing {
		from = e.level
	}
	e.inc[StageRelease] = -e.segmentRate(from, e.releaseMs)
}

// Reset forces the envelope to idle without firing OnRelease.
func (e *Envelope) Reset() {
	e.level = 0
	e.stage = StageIdle
	e.playing = false
	e.releasing = false
	e.released = true
}

func (e *Envelope) Level() float64      { return e.level }
func (e *Envelope) Stage() Stage        { return e.stage }
func (e *Envelope) Velocity() float64   { return e.velocity }
func (e *Envelope) IsIdle() bool        { return e.released }
func (e *Envelope) IsReleasing() bool   { return e.releasing }
func (e *Envelope) IsPlaying() bool     { return e.playing }
func (e *Envelope) Sustain() float64    { return e.sustain }
func (e *Envelope) SampleRate() float64 { return e.sampleRate }
