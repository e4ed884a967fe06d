package midiin

import (
	"fmt"
	"log/slog"

	"gitlab.com/gomidi/midi/v2"
)

// Ports lists the MIDI inputs offered by the registered driver.
func Ports() []string {
	ins := midi.GetInPorts()
	names := make([]string, 0, len(ins))
	for _, in := range ins {
		names = append(names, in.String())
	}
	return names
}

// Listen opens the input named port and feeds it to t until stop is
// called. A driver must be registered by the caller.
func Listen(port string, t *Translator, log *slog.Logger) (stop func(), err error) {
	in, err := midi.FindInPort(port)
	if err != nil {
		return nil, fmt.Errorf("midi input %q: %w", port, err)
	}
	stop, err = midi.ListenTo(in, func(msg midi.Message, _ int32) {
		t.Handle(msg)
	}, midi.HandleError(func(err error) {
		log.Warn("midi listener error", "port", port, "err", err)
	}))
	if err != nil {
		return nil, fmt.Errorf("listen to %q: %w", port, err)
	}
	log.Info("midi input connected", "port", in.String())
	return stop, nil
}

// Close releases the registered MIDI driver.
func Close() { midi.CloseDriver() }
