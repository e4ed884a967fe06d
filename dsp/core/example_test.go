package core_test

import (
	"fmt"

	"github.com/cwbudde/algo-sculpt/dsp/core"
)

func ExampleProcessorConfig_Validate() {
	cfg := core.ApplyProcessorOptions(core.WithSampleRate(48000), core.WithBlockSize(128))
	fmt.Println(cfg.SampleRate, cfg.BlockSize, cfg.Validate())

	cfg = core.ApplyProcessorOptions(core.WithBlockSize(core.MaxBlockSize + 1))
	fmt.Println(cfg.Validate() != nil)

	// Output:
	// 48000 128 <nil>
	// true
}

func ExampleMIDIToFreq() {
	fmt.Printf("%.1f %.1f\n", core.MIDIToFreq(69), core.MIDIToFreq(57))

	// Output:
	// 440.0 220.0
}
