package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"

	"github.com/cwbudde/algo-sculpt/config"
	"github.com/cwbudde/algo-sculpt/engine"
	"github.com/cwbudde/algo-sculpt/internal/sampleio"
)

// engineFlags are shared by play and render.
type engineFlags struct {
	rate     int
	block    int
	voices   int
	seed     uint
	preset   string
	sample   string
	settings string
}

func (f *engineFlags) register(fs *flag.FlagSet) {
	fs.IntVar(&f.rate, "rate", 48000, "sample rate in Hz")
	fs.IntVar(&f.block, "block", 256, "maximum block size in samples")
	fs.IntVar(&f.voices, "voices", engine.DefaultVoices, "polyphony")
	fs.UintVar(&f.seed, "seed", engine.DefaultSeed, "noise seed")
	fs.StringVar(&f.preset, "preset", "", "JSON preset to apply")
	fs.StringVar(&f.sample, "sample", "", "WAV or MP3 file used as the sample source")
	fs.StringVar(&f.settings, "settings", "", "settings file (default ~/.config/sculpt/settings.bin)")
}

// build creates an engine from the flags. Missing or invalid settings
// are logged and replaced by defaults.
func (f *engineFlags) build(log *slog.Logger) (*engine.Engine, config.Settings, error) {
	e, err := engine.New(
		engine.WithSampleRate(float64(f.rate)),
		engine.WithMaxBlockSize(f.block),
		engine.WithVoices(f.voices),
		engine.WithSeed(uint32(f.seed)),
		engine.WithLogger(log),
	)
	if err != nil {
		return nil, config.Settings{}, err
	}

	s := loadSettings(f.settings, log)
	e.ApplySettings(s)

	if f.preset != "" {
		pr, err := engine.LoadPreset(f.preset)
		if err != nil {
			return nil, s, err
		}
		if err := e.Params().ApplyPreset(pr); err != nil {
			return nil, s, err
		}
		log.Info("preset applied", "name", pr.Name, "values", len(pr.Values))
	}

	if f.sample != "" {
		clip, err := sampleio.Load(f.sample, f.rate)
		if err != nil {
			return nil, s, err
		}
		e.SetInputSample(clip.Samples)
		e.Params().Set(engine.Source, engine.SourceSample)
	}
	return e, s, nil
}

func settingsPath(p string) (string, error) {
	if p != "" {
		return p, nil
	}
	return config.DefaultPath()
}

func loadSettings(p string, log *slog.Logger) config.Settings {
	path, err := settingsPath(p)
	if err != nil {
		log.Warn("no settings path, using defaults", "err", err)
		return config.Default()
	}
	s, err := config.Load(path)
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, fs.ErrNotExist) {
			level = slog.LevelDebug
		}
		log.Log(context.Background(), level, "settings not loaded, using defaults", "path", path, "err", err)
	}
	return s
}
