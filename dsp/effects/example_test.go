package effects_test

import (
	"fmt"

	"github.com/cwbudde/algo-daw/dsp/effects"
)

func ExampleEQ() {
	eq := effects.NewEQ()
	eq.SetParameter(effects.ParamLowGain, 40)

	p, _ := eq.Parameter(effects.ParamLowGain)
	fmt.Println(p.Value)

	// Output:
	// 12
}

func ExampleSaturation() {
	sat := effects.NewSaturation()
	sat.SetParameter(effects.ParamTone, 0)

	buf := []float64{0, 10}
	sat.Process(buf)
	fmt.Printf("%.3f %.3f\n", buf[0], buf[1])

	// Output:
	// 0.000 1.000
}
