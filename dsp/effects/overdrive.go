package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-sculpt/dsp/core"
)

const (
	defaultOverdriveDrive = 0.3
	defaultBalanceCutoff  = 10.0
)

// softSat is a rational tanh approximation saturating at |x| >= 3.
func softSat(x float64) float64 {
	switch {
	case x <= -3:
		return -1
	case x >= 3:
		return 1
	default:
		return x * (27 + x*x) / (27 + 9*x*x)
	}
}

// Overdrive is a soft-clipping waveshaper whose pre-gain rises steeply
// with drive and whose post-gain keeps the peak level roughly constant.
type Overdrive struct {
	drive    float64
	preGain  float64
	postGain float64
}

// NewOverdrive creates an overdrive at the default drive.
func NewOverdrive() *Overdrive {
	o := &Overdrive{}
	o.SetDrive(defaultOverdriveDrive)
	return o
}

// SetDrive sets the drive amount in [0, 1].
func (o *Overdrive) SetDrive(drive float64) {
	if math.IsNaN(drive) {
		return
	}
	o.drive = core.Clamp(drive, 0, 1)

	d := 2 * o.drive
	d2 := d * d
	preA := d * 0.5
	preB := d2 * d2 * d * 24
	o.preGain = preA + (preB-preA)*d2

	squashed := d * (2 - d)
	o.postGain = 1 / softSat(0.33+squashed*(o.preGain-0.33))
}

// Process shapes one sample.
func (o *Overdrive) Process(x float64) float64 {
	return softSat(o.preGain*x) * o.postGain
}

func (o *Overdrive) Drive() float64 { return o.drive }

// Balance scales a signal so its RMS level follows a comparator signal.
// Both levels are tracked with one-pole power followers.
type Balance struct {
	c1, c2 float64
	q, r   float64
}

// NewBalance creates a balance with a 10 Hz level follower.
func NewBalance(sampleRate float64) (*Balance, error) {
	return NewBalanceCutoff(sampleRate, defaultBalanceCutoff)
}

// NewBalanceCutoff creates a balance with the given follower cutoff in Hz.
func NewBalanceCutoff(sampleRate, cutoffHz float64) (*Balance, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("balance sample rate must be > 0: %f", sampleRate)
	}
	if cutoffHz <= 0 || cutoffHz >= sampleRate/2 || math.IsNaN(cutoffHz) {
		return nil, fmt.Errorf("balance cutoff must be in (0, %f): %f", sampleRate/2, cutoffHz)
	}

	b := 2 - math.Cos(2*math.Pi*cutoffHz/sampleRate)
	c2 := b - math.Sqrt(b*b-1)
	return &Balance{c1: 1 - c2, c2: c2}, nil
}

// Process returns sig rescaled to the level of comp.
func (b *Balance) Process(sig, comp float64) float64 {
	b.q = core.FlushDenormals(b.c1*sig*sig + b.c2*b.q)
	b.r = core.FlushDenormals(b.c1*comp*comp + b.c2*b.r)

	if b.q == 0 {
		return 0
	}
	return sig * math.Sqrt(b.r/b.q)
}

// Reset clears the level followers.
func (b *Balance) Reset() {
	b.q = 0
	b.r = 0
}
