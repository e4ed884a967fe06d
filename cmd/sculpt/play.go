package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-sculpt/engine"
	"github.com/cwbudde/algo-sculpt/internal/audioio"
	"github.com/cwbudde/algo-sculpt/internal/keys"
	"github.com/cwbudde/algo-sculpt/internal/midiin"
)

var (
	errTimeUp = errors.New("play duration elapsed")
	errQuit   = errors.New("keyboard quit")
)

func runPlay(args []string, log *slog.Logger) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	var ef engineFlags
	ef.register(fs)
	backend := fs.String("backend", "oto", "audio backend: oto (output only) or malgo (duplex)")
	port := fs.String("midi", "", "MIDI input port name, or \"list\" to show ports")
	useKeys := fs.Bool("keys", false, "play from the computer keyboard")
	duration := fs.Duration("duration", 0, "stop after this long (0 runs until interrupted)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *port == "list" {
		defer midiin.Close()
		for _, name := range midiin.Ports() {
			fmt.Println(name)
		}
		return nil
	}

	e, settings, err := ef.build(log)
	if err != nil {
		return err
	}
	producer := engine.NewProducer(e.Queue())

	if *port != "" {
		defer midiin.Close()
		tr := midiin.NewTranslator(producer, e.Params(), settings, log)
		stop, err := midiin.Listen(*port, tr, log)
		if err != nil {
			return err
		}
		defer func() {
			stop()
			if n := tr.Dropped(); n > 0 {
				log.Warn("midi events dropped", "count", n)
			}
		}()
	}

	out, err := audioio.New(*backend, audioio.Config{
		SampleRate: ef.rate,
		BlockSize:  ef.block,
		Logger:     log,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return out.Run(ctx, e.ProcessQueued)
	})
	if *useKeys {
		kb := keys.New(producer, log)
		g.Go(func() error {
			if err := kb.RunTerminal(ctx); err != nil {
				return err
			}
			return errQuit
		})
	}
	g.Go(func() error {
		if *duration <= 0 {
			<-ctx.Done()
			return nil
		}
		select {
		case <-time.After(*duration):
			return errTimeUp
		case <-ctx.Done():
			return nil
		}
	})

	log.Info("playing", "backend", out.Name(), "midi", *port, "keys", *useKeys)
	if err := g.Wait(); err != nil && !errors.Is(err, errTimeUp) && !errors.Is(err, errQuit) {
		return err
	}
	return nil
}
