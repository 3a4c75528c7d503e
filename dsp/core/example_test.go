package core_test

import (
	"fmt"

	"github.com/cwbudde/algo-daw/dsp/core"
)

func ExampleApplyProcessorOptions() {
	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(44100),
		core.WithBlockSize(256),
	)

	fmt.Printf("%d samples per 2 s, block %d starts at %.3f s\n", cfg.Samples(2), 10, cfg.Seconds(10*cfg.BlockSize))

	// Output:
	// 88200 samples per 2 s, block 10 starts at 0.058 s
}

func ExampleInverseLerp() {
	// A 0 dB fader on a -60..+12 dB scale sits at 5/6 of its travel.
	pos := core.InverseLerp(-60, 12, 0)

	fmt.Printf("%.4f %.1f\n", pos, core.Lerp(-60, 12, pos))

	// Output:
	// 0.8333 0.0
}

func ExampleDBToLinear() {
	fmt.Printf("%.3f %.1f\n", core.DBToLinear(-6), core.LinearToDB(0.5))

	// Output:
	// 0.501 -6.0
}
