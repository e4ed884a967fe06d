// Command sculpt runs the harmonic resynthesis synthesizer.
//
// Usage:
//
//	sculpt [-log-level level] <command> [flags]
//
// Commands:
//
//	play      run live from a sound card, MIDI and/or the computer keyboard
//	render    render a Lua score to a WAV file
//	settings  show or edit the persisted settings
//	params    list the parameter table
//
// The log level may also be set with SCULPT_LOG_LEVEL.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

type command struct {
	name  string
	usage string
	run   func(args []string, log *slog.Logger) error
}

var commands = []command{
	{"play", "run the synthesizer live", runPlay},
	{"render", "render a Lua score to WAV", runRender},
	{"settings", "show or edit persisted settings", runSettings},
	{"params", "list parameters", runParams},
}

func main() {
	level := flag.String("log-level", envOr("SCULPT_LOG_LEVEL", "info"), "log level: debug, info, warn, error")
	flag.Usage = usage
	flag.Parse()

	log, err := newLogger(*level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	slog.SetDefault(log)

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}
	name, args := flag.Arg(0), flag.Args()[1:]
	for _, c := range commands {
		if c.name != name {
			continue
		}
		if err := c.run(args, log); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				os.Exit(0)
			}
			log.Error(name+" failed", "err", err)
			os.Exit(1)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
	usage()
	os.Exit(2)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: sculpt [-log-level level] <command> [flags]\n\nCommands:\n")
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %-9s %s\n", c.name, c.usage)
	}
	fmt.Fprintf(os.Stderr, "\nGlobal flags:\n")
	flag.PrintDefaults()
}

func newLogger(level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})), nil
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
