package window_test

import (
	"fmt"

	"github.com/cwbudde/algo-sculpt/dsp/window"
)

func ExampleOverlapAddGain() {
	w := window.Generate(window.TypeHann, 2048, window.WithPeriodic())
	gain, err := window.OverlapAddGain(w, 256)
	if err != nil {
		panic(err)
	}

	fmt.Printf("%.3f\n", gain)

	// Output:
	// 4.000
}
