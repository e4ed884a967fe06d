package engine

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Params is the engine's parameter store.
//
// Every value is stored as float64 bits in an atomic word, so any
// goroutine may Set while the audio goroutine takes a Snapshot.
type Params struct {
	values [NumParams]atomic.Uint64
}

// NewParams returns a store holding every parameter's default.
func NewParams() *Params {
	p := &Params{}
	p.Reset()
	return p
}

// Reset restores all defaults.
func (p *Params) Reset() {
	for i := range p.values {
		p.values[i].Store(math.Float64bits(paramTable[i].Default))
	}
}

// Set stores v clamped to the parameter's range. Unknown ids are ignored.
func (p *Params) Set(id ParamID, v float64) {
	if !id.Valid() {
		return
	}
	p.values[id].Store(math.Float64bits(paramTable[id].Clamp(v)))
}

// Get returns the current value, or 0 for unknown ids.
func (p *Params) Get(id ParamID) float64 {
	if !id.Valid() {
		return 0
	}
	return math.Float64frombits(p.values[id].Load())
}

// SetNormalized sets id from a 0..1 control position through its curve.
func (p *Params) SetNormalized(id ParamID, x float64) {
	if !id.Valid() {
		return
	}
	p.Set(id, paramTable[id].FromNormalized(x))
}

// Normalized returns the current value as a 0..1 control position.
func (p *Params) Normalized(id ParamID) float64 {
	if !id.Valid() {
		return 0
	}
	return paramTable[id].ToNormalized(p.Get(id))
}

// SetByName sets a parameter addressed by table name.
func (p *Params) SetByName(name string, v float64) error {
	id, err := ParamByName(name)
	if err != nil {
		return err
	}
	p.Set(id, v)
	return nil
}

// Snapshot copies every value into dst. Each value is read atomically;
// the copy as a whole is not a transaction.
func (p *Params) Snapshot(dst *[NumParams]float64) {
	for i := range p.values {
		dst[i] = math.Float64frombits(p.values[i].Load())
	}
}

// Values returns the current values keyed by parameter name.
func (p *Params) Values() map[string]float64 {
	out := make(map[string]float64, NumParams)
	for i := range p.values {
		out[paramTable[i].Name] = p.Get(ParamID(i))
	}
	return out
}

// ApplyPreset sets every value named in the preset. Names are checked
// before anything is written, so an invalid preset leaves p untouched.
func (p *Params) ApplyPreset(pr Preset) error {
	ids := make(map[ParamID]float64, len(pr.Values))
	for name, v := range pr.Values {
		id, err := ParamByName(name)
		if err != nil {
			return fmt.Errorf("preset %q: %w", pr.Name, err)
		}
		ids[id] = v
	}
	for id, v := range ids {
		p.Set(id, v)
	}
	return nil
}
