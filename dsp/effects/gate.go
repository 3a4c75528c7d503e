package effects

import (
	"math"

	"github.com/cwbudde/algo-daw/dsp/core"
)

// Gate is a hard-threshold noise gate.
//
// A sample at or above the threshold opens the gate and the gain rises
// towards unity with the attack time constant. Below the threshold a gate
// that has opened before decays by exp(-1/(release*fs)) per sample instead of
// cutting to silence. A gate that has never opened outputs exact zeros.
type Gate struct {
	paramSet

	sampleRate float64

	thresholdLin float64
	attackStep   float64
	releaseDecay float64

	gain   float64
	opened bool
	open   bool
}

// NewGate creates a gate with threshold -40 dB, attack 1 ms and release 100 ms.
func NewGate(sampleRate float64) (*Gate, error) {
	err := validateSampleRate("gate", sampleRate)
	if err != nil {
		return nil, err
	}

	g := &Gate{
		paramSet: newParamSet(
			Param{ID: ParamThreshold, Name: "Threshold", Unit: "dB", Min: -80, Max: 0, Default: -40},
			Param{ID: ParamAttack, Name: "Attack", Unit: "ms", Min: 0.1, Max: 50, Default: 1},
			Param{ID: ParamRelease, Name: "Release", Unit: "ms", Min: 10, Max: 500, Default: 100},
		),
		sampleRate: sampleRate,
	}
	g.update()

	return g, nil
}

// Name returns "Gate".
func (g *Gate) Name() string { return "Gate" }

// SetParameter writes a plain parameter value and refreshes cached coefficients.
func (g *Gate) SetParameter(id string, value float64) bool {
	if !g.set(id, value) {
		return false
	}

	g.update()

	return true
}

// IsOpen reports whether the last processed sample was above threshold.
func (g *Gate) IsOpen() bool { return g.open }

// Gain returns the current gate gain.
func (g *Gate) Gain() float64 { return g.gain }

// Process gates block in place.
func (g *Gate) Process(block []float64) {
	for i, x := range block {
		if math.Abs(x) >= g.thresholdLin {
			g.open = true
			g.opened = true
			g.gain += (1 - g.gain) * g.attackStep
		} else {
			g.open = false
			if !g.opened {
				block[i] = 0
				continue
			}

			g.gain = core.FlushDenormals(g.gain * g.releaseDecay)
		}

		block[i] = x * g.gain
	}
}

// Reset closes the gate and forgets that it was ever open.
func (g *Gate) Reset() {
	g.gain = 0
	g.open = false
	g.opened = false
}

func (g *Gate) update() {
	g.thresholdLin = core.DBToLinear(g.value(ParamThreshold))
	g.attackStep = smoothingStep(g.value(ParamAttack), g.sampleRate)
	g.releaseDecay = math.Exp(-1 / (g.value(ParamRelease) * 0.001 * g.sampleRate))
}
