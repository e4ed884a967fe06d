package main

import (
	"flag"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/algo-sculpt/dsp/dither"
	"github.com/cwbudde/algo-sculpt/internal/sampleio"
	"github.com/cwbudde/algo-sculpt/internal/score"
)

func runRender(args []string, log *slog.Logger) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	var ef engineFlags
	ef.register(fs)
	scorePath := fs.String("score", "", "Lua score to render")
	outPath := fs.String("o", "out.wav", "output WAV path")
	note := fs.Int("note", 57, "note to hold when no score is given")
	seconds := fs.Float64("seconds", 2, "note length when no score is given")
	ditherName := fs.String("dither", "tpdf", "WAV dither: none, rect, tpdf or shaped")
	if err := fs.Parse(args); err != nil {
		return err
	}
	dt, err := dither.ParseType(*ditherName)
	if err != nil {
		return err
	}

	var sc *score.Score
	if *scorePath != "" {
		sc, err = score.CompileFile(*scorePath, ef.rate)
	} else {
		sc, err = score.Compile(fmt.Sprintf("note(%d, 100, %g)", *note, *seconds), ef.rate)
	}
	if err != nil {
		return err
	}

	e, _, err := ef.build(log)
	if err != nil {
		return err
	}

	start := time.Now()
	out := sc.Render(e)
	elapsed := time.Since(start)

	if err := sampleio.SaveWAV(*outPath, out, ef.rate, dither.WithType(dt), dither.WithSeed(uint64(ef.seed))); err != nil {
		return err
	}
	audio := time.Duration(float64(len(out)) / float64(ef.rate) * float64(time.Second))
	log.Info("rendered",
		"path", *outPath,
		"cues", len(sc.Cues),
		"duration", audio,
		"elapsed", elapsed,
		"realtime_factor", audio.Seconds()/max(elapsed.Seconds(), 1e-9))
	return nil
}
