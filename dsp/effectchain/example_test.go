package effectchain_test

import (
	"fmt"

	"github.com/cwbudde/algo-daw/dsp/effectchain"
	"github.com/cwbudde/algo-daw/dsp/effects"
	"github.com/cwbudde/algo-daw/idgen"
)

func ExampleRegistry() {
	r := effectchain.NewRegistry(effectchain.WithIDSource(idgen.NewCounter()))

	sat, _ := r.CreatePlugin(effectchain.TypeSaturation, map[string]float64{effects.ParamTone: 0})
	gate, _ := r.CreatePlugin(effectchain.TypeGate, nil)

	chain := r.CreateChain("guitar")
	chain.AddPlugin(gate.ID)
	chain.InsertPlugin(0, sat.ID)
	r.TogglePlugin(gate.ID)

	fmt.Println(chain.PluginIDs(), chain.EnabledPluginCount())

	// Output:
	// [saturation-1 gate-1] 1
}
