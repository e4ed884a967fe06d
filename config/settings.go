// Package config persists the small block of performance settings that
// survives restarts: MIDI channel, controller page and LFO routing.
package config

import (
	"encoding"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
)

// Limits enforced by Validate.
const (
	MaxMIDIChannel = 64
	MaxParamMode   = 1
	MaxLFODest     = 35
)

// Size is the length of the binary encoding.
const Size = 6

// ErrInvalidSettings marks settings that fail validation.
var ErrInvalidSettings = errors.New("config: invalid settings")

// Settings is the persisted configuration block.
//
// MIDIChannel 0 means omni. LFODest holds parameter table indices for
// the three modulation slots.
type Settings struct {
	Initialised bool
	MIDIChannel uint8
	ParamMode   uint8
	LFODest     [3]uint8
}

var (
	_ encoding.BinaryMarshaler   = Settings{}
	_ encoding.BinaryUnmarshaler = (*Settings)(nil)
)

// Default returns the factory settings: omni, first controller page and
// the LFO sweeping cutoff, delay time and freeze size.
func Default() Settings {
	return Settings{
		Initialised: true,
		LFODest:     [3]uint8{2, 12, 14},
	}
}

// Validate checks every field against its limit.
func (s Settings) Validate() error {
	if s.MIDIChannel > MaxMIDIChannel {
		return fmt.Errorf("%w: midi channel must be <= %d: %d", ErrInvalidSettings, MaxMIDIChannel, s.MIDIChannel)
	}
	if s.ParamMode > MaxParamMode {
		return fmt.Errorf("%w: param mode must be <= %d: %d", ErrInvalidSettings, MaxParamMode, s.ParamMode)
	}
	for i, d := range s.LFODest {
		if d > MaxLFODest {
			return fmt.Errorf("%w: lfo destination %d must be <= %d: %d", ErrInvalidSettings, i, MaxLFODest, d)
		}
	}
	return nil
}

// MarshalBinary encodes s into its fixed six-byte layout.
func (s Settings) MarshalBinary() ([]byte, error) {
	buf := make([]byte, Size)
	if s.Initialised {
		buf[0] = 1
	}
	buf[1] = s.MIDIChannel
	buf[2] = s.ParamMode
	copy(buf[3:], s.LFODest[:])
	return buf, nil
}

// UnmarshalBinary decodes data. The result is not validated.
func (s *Settings) UnmarshalBinary(data []byte) error {
	if len(data) != Size {
		return fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidSettings, Size, len(data))
	}
	s.Initialised = data[0] != 0
	s.MIDIChannel = data[1]
	s.ParamMode = data[2]
	copy(s.LFODest[:], data[3:])
	return nil
}

// DefaultPath returns ~/.config/sculpt/settings.bin.
func DefaultPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "sculpt", "settings.bin"), nil
}

// Load reads settings from path.
//
// It always returns usable settings: on a missing, short, uninitialised
// or out-of-range file it returns Default together with the reason.
func Load(path string) (Settings, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return Default(), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("load settings: %w", err)
	}
	var s Settings
	if err := s.UnmarshalBinary(data); err != nil {
		return Default(), err
	}
	if !s.Initialised {
		return Default(), fmt.Errorf("%w: %s is not initialised", ErrInvalidSettings, path)
	}
	if err := s.Validate(); err != nil {
		return Default(), err
	}
	return s, nil
}

// Save validates s and writes it to path, creating parent directories.
func Save(path string, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return err
	}
	s.Initialised = true
	data, err := s.MarshalBinary()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
