package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-sculpt/config"
	"github.com/cwbudde/algo-sculpt/engine"
)

func runSettings(args []string, log *slog.Logger) error {
	fs := flag.NewFlagSet("settings", flag.ContinueOnError)
	path := fs.String("settings", "", "settings file (default ~/.config/sculpt/settings.bin)")
	channel := fs.Int("channel", -1, "MIDI channel, 0 for omni")
	mode := fs.Int("mode", -1, "controller page: 0 (CC 20-31) or 1 (CC 40-52)")
	dest := fs.String("dest", "", "three LFO destinations as names or indices, e.g. lpf_cutoff,delay_time,q")
	write := fs.Bool("write", false, "save the edited settings")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := settingsPath(*path)
	if err != nil {
		return err
	}
	s := loadSettings(p, log)

	if *channel >= 0 {
		s.MIDIChannel = uint8(min(*channel, 255))
	}
	if *mode >= 0 {
		s.ParamMode = uint8(min(*mode, 255))
	}
	if *dest != "" {
		d, err := parseDest(*dest)
		if err != nil {
			return err
		}
		s.LFODest = d
	}
	if err := s.Validate(); err != nil {
		return err
	}

	if *write {
		if err := config.Save(p, s); err != nil {
			return err
		}
		log.Info("settings saved", "path", p)
	}
	printSettings(p, s)
	return nil
}

func parseDest(v string) ([3]uint8, error) {
	var out [3]uint8
	parts := strings.Split(v, ",")
	if len(parts) != len(out) {
		return out, fmt.Errorf("want %d destinations, got %d", len(out), len(parts))
	}
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if n, err := strconv.Atoi(part); err == nil {
			if n < 0 || n > config.MaxLFODest {
				return out, fmt.Errorf("destination %d out of range: %d", i, n)
			}
			out[i] = uint8(n)
			continue
		}
		id, err := engine.ParamByName(part)
		if err != nil {
			return out, err
		}
		out[i] = uint8(id)
	}
	return out, nil
}

func printSettings(path string, s config.Settings) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "path\t%s\n", path)
	ch := strconv.Itoa(int(s.MIDIChannel))
	if s.MIDIChannel == 0 {
		ch = "omni"
	}
	fmt.Fprintf(w, "midi channel\t%s\n", ch)
	fmt.Fprintf(w, "param mode\t%d\n", s.ParamMode)
	for i, d := range s.LFODest {
		fmt.Fprintf(w, "lfo slot %d\t%d (%s)\n", i, d, engine.ParamID(d))
	}
	w.Flush()
}
