package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestBinaryLayout(t *testing.T) {
	s := Settings{Initialised: true, MIDIChannel: 5, ParamMode: 1, LFODest: [3]uint8{7, 8, 9}}
	data, err := s.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{1, 5, 1, 7, 8, 9}
	if string(data) != string(want) {
		t.Fatalf("MarshalBinary = %v, want %v", data, want)
	}

	var got Settings
	if err := got.UnmarshalBinary(data); err != nil {
		t.Fatal(err)
	}
	if got != s {
		t.Fatalf("UnmarshalBinary = %+v, want %+v", got, s)
	}
	if err := got.UnmarshalBinary(data[:4]); !errors.Is(err, ErrInvalidSettings) {
		t.Fatalf("short data err = %v, want ErrInvalidSettings", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*Settings)
		ok   bool
	}{
		{"default", func(*Settings) {}, true},
		{"channel 64", func(s *Settings) { s.MIDIChannel = 64 }, true},
		{"channel 65", func(s *Settings) { s.MIDIChannel = 65 }, false},
		{"mode 2", func(s *Settings) { s.ParamMode = 2 }, false},
		{"dest 35", func(s *Settings) { s.LFODest[2] = 35 }, true},
		{"dest 36", func(s *Settings) { s.LFODest[1] = 36 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mut(&s)
			err := s.Validate()
			if (err == nil) != tt.ok {
				t.Fatalf("Validate() = %v, want ok=%v", err, tt.ok)
			}
			if err != nil && !errors.Is(err, ErrInvalidSettings) {
				t.Fatalf("err = %v, want ErrInvalidSettings", err)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.bin")
	s := Settings{MIDIChannel: 3, ParamMode: 1, LFODest: [3]uint8{1, 2, 3}}
	if err := Save(path, s); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Initialised = true
	if got != s {
		t.Fatalf("Load = %+v, want %+v", got, s)
	}
}

func TestLoadFallsBack(t *testing.T) {
	dir := t.TempDir()

	got, err := Load(filepath.Join(dir, "missing.bin"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("missing err = %v, want fs.ErrNotExist", err)
	}
	if got != Default() {
		t.Fatalf("missing Load = %+v, want defaults", got)
	}

	bad := filepath.Join(dir, "bad.bin")
	if err := os.WriteFile(bad, []byte{1, 99, 0, 0, 0, 0}, 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = Load(bad)
	if !errors.Is(err, ErrInvalidSettings) || got != Default() {
		t.Fatalf("bad Load = %+v, %v; want defaults and ErrInvalidSettings", got, err)
	}

	uninit := filepath.Join(dir, "uninit.bin")
	if err := os.WriteFile(uninit, []byte{0, 1, 0, 0, 0, 0}, 0o644); err != nil {
		t.Fatal(err)
	}
	if got, err = Load(uninit); err == nil || got != Default() {
		t.Fatalf("uninitialised Load = %+v, %v; want defaults and error", got, err)
	}
}

func TestSaveRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.bin")
	if err := Save(path, Settings{ParamMode: 9}); !errors.Is(err, ErrInvalidSettings) {
		t.Fatalf("Save err = %v, want ErrInvalidSettings", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("invalid settings were written")
	}
}

func TestDefaultPath(t *testing.T) {
	p, err := DefaultPath()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	if filepath.Base(p) != "settings.bin" || filepath.Base(filepath.Dir(p)) != "sculpt" {
		t.Fatalf("DefaultPath = %q", p)
	}
}
