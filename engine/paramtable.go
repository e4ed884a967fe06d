package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ParamID indexes the parameter table.
type ParamID int

const (
	Mix ParamID = iota
	LPFResonance
	LPFCutoff
	Shape
	Q
	Sub
	Attack
	Decay
	Sustain
	Release
	Gain
	Feedback
	DelayTime
	Stretch
	FreezeSize
	Freeze
	Drive
	LFOShape
	LFORate
	LFODepth
	LFODest
	Octave
	Volume
	Source
	SampleSpeed

	// NumParams is the number of parameters.
	NumParams
)

// Input sources selected by the Source parameter.
const (
	SourceLive = iota
	SourceNoise
	SourceSample
)

// ErrUnknownParam is returned for names or ids outside the table.
var ErrUnknownParam = errors.New("engine: unknown parameter")

// Curve maps a normalized control position to a parameter value.
type Curve int

const (
	CurveLinear Curve = iota
	// CurveExp is quadratic, giving finer control near Min.
	CurveExp
	// CurveLog is geometric between Min and Max; both must be positive.
	CurveLog
)

func (c Curve) String() string {
	switch c {
	case CurveLinear:
		return "linear"
	case CurveExp:
		return "exp"
	case CurveLog:
		return "log"
	default:
		return fmt.Sprintf("Curve(%d)", int(c))
	}
}

// ParamSpec describes one parameter.
type ParamSpec struct {
	Name    string
	Unit    string
	Min     float64
	Max     float64
	Default float64
	Curve   Curve
}

var paramTable = [NumParams]ParamSpec{
	Mix:          {Name: "mix", Min: 0, Max: 1, Default: 0.5},
	LPFResonance: {Name: "lpf_resonance", Min: 0.5, Max: 10, Default: 0.707},
	LPFCutoff:    {Name: "lpf_cutoff", Unit: "Hz", Min: 30, Max: 18000, Default: 6000, Curve: CurveLog},
	Shape:        {Name: "shape", Min: 0, Max: 3, Default: 1},
	Q:            {Name: "q", Min: 0.4, Max: 30, Default: 10, Curve: CurveExp},
	Sub:          {Name: "sub", Min: 0, Max: 1},
	Attack:       {Name: "attack", Unit: "ms", Min: 5, Max: 4000, Default: 10, Curve: CurveExp},
	Decay:        {Name: "decay", Unit: "ms", Min: 5, Max: 4000, Default: 200, Curve: CurveExp},
	Sustain:      {Name: "sustain", Min: 0, Max: 1, Default: 0.7},
	Release:      {Name: "release", Unit: "ms", Min: 5, Max: 4000, Default: 300, Curve: CurveExp},
	Gain:         {Name: "gain", Min: 1, Max: 4, Default: 1},
	Feedback:     {Name: "feedback", Min: 0, Max: 0.99},
	DelayTime:    {Name: "delay_time", Unit: "ms", Min: 1, Max: 1000, Default: 250},
	Stretch:      {Name: "stretch", Min: 0.1, Max: 2, Default: 1},
	FreezeSize:   {Name: "freeze_size", Unit: "samples", Min: 64, Max: 8192, Default: 512},
	Freeze:       {Name: "freeze", Min: 0, Max: 1},
	Drive:        {Name: "drive", Min: 0.05, Max: 1, Default: 0.3},
	LFOShape:     {Name: "lfo_shape", Min: 0, Max: 3},
	LFORate:      {Name: "lfo_rate", Unit: "Hz", Min: 0.05, Max: 20, Default: 3, Curve: CurveExp},
	LFODepth:     {Name: "lfo_depth", Min: -1, Max: 1},
	LFODest:      {Name: "lfo_dest", Min: 0, Max: 2},
	Octave:       {Name: "octave", Min: -1, Max: 1},
	Volume:       {Name: "volume", Min: 0, Max: 2, Default: 1},
	Source:       {Name: "source", Min: 0, Max: 2},
	SampleSpeed:  {Name: "sample_speed", Min: 0, Max: 4, Default: 1},
}

// Spec returns the table entry for id.
func (id ParamID) Spec() ParamSpec {
	if !id.Valid() {
		return ParamSpec{}
	}
	return paramTable[id]
}

// Valid reports whether id is in the table.
func (id ParamID) Valid() bool { return id >= 0 && id < NumParams }

func (id ParamID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("ParamID(%d)", int(id))
	}
	return paramTable[id].Name
}

// ParamByName looks a parameter up by its table name, ignoring case.
func ParamByName(name string) (ParamID, error) {
	for i := range paramTable {
		if strings.EqualFold(paramTable[i].Name, name) {
			return ParamID(i), nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrUnknownParam, name)
}

// ParamSpecs returns a copy of the whole table in id order.
func ParamSpecs() []ParamSpec {
	out := make([]ParamSpec, NumParams)
	copy(out, paramTable[:])
	return out
}

// Clamp limits v to [Min, Max]. NaN maps to Default.
func (s ParamSpec) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return s.Default
	}
	return math.Min(math.Max(v, s.Min), s.Max)
}

// FromNormalized maps x in [0,1] onto the parameter range.
func (s ParamSpec) FromNormalized(x float64) float64 {
	if math.IsNaN(x) {
		return s.Default
	}
	x = math.Min(math.Max(x, 0), 1)
	switch s.Curve {
	case CurveExp:
		return s.Min + x*x*(s.Max-s.Min)
	case CurveLog:
		return s.Min * math.Pow(s.Max/s.Min, x)
	default:
		return s.Min + x*(s.Max-s.Min)
	}
}

// ToNormalized is the inverse of FromNormalized.
func (s ParamSpec) ToNormalized(v float64) float64 {
	if s.Max == s.Min {
		return 0
	}
	v = s.Clamp(v)
	switch s.Curve {
	case CurveExp:
		return math.Sqrt((v - s.Min) / (s.Max - s.Min))
	case CurveLog:
		return math.Log(v/s.Min) / math.Log(s.Max/s.Min)
	default:
		return (v - s.Min) / (s.Max - s.Min)
	}
}

// Modulate offsets base by mod in normalized units and maps the result
// back, so a full-depth LFO sweeps half the range either way.
func (s ParamSpec) Modulate(base, mod float64) float64 {
	if mod == 0 {
		return base
	}
	return s.FromNormalized(s.ToNormalized(base) + mod*modScale)
}

const modScale = 0.5
