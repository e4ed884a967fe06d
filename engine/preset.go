package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Preset is a named set of parameter values, stored as JSON.
type Preset struct {
	Name   string             `json:"name"`
	Values map[string]float64 `json:"values"`
}

// PresetFromParams captures the current state of p.
func PresetFromParams(name string, p *Params) Preset {
	return Preset{Name: name, Values: p.Values()}
}

// Validate checks that every name in the preset is a known parameter.
func (pr Preset) Validate() error {
	names := make([]string, 0, len(pr.Values))
	for name := range pr.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := ParamByName(name); err != nil {
			return fmt.Errorf("preset %q: %w", pr.Name, err)
		}
	}
	return nil
}

// LoadPreset reads and validates a JSON preset file.
func LoadPreset(path string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, fmt.Errorf("load preset: %w", err)
	}
	var pr Preset
	if err := json.Unmarshal(data, &pr); err != nil {
		return Preset{}, fmt.Errorf("load preset %s: %w", path, err)
	}
	if pr.Name == "" {
		pr.Name = filepath.Base(path)
	}
	if err := pr.Validate(); err != nil {
		return Preset{}, err
	}
	return pr, nil
}

// SavePreset writes pr as indented JSON.
func SavePreset(path string, pr Preset) error {
	if err := pr.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(pr, "", "  ")
	if err != nil {
		return fmt.Errorf("save preset: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("save preset: %w", err)
	}
	return nil
}
