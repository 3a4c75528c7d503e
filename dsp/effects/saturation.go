package effects

import (
	"math"

	"github.com/cwbudde/algo-daw/dsp/core"
)

const (
	ParamDrive = "drive"
	ParamTone  = "tone"

	// toneDarkening is the output attenuation at tone = 1.
	toneDarkening = 0.3
)

// Saturation is a tanh waveshaper: y = tanh(x*drive) * (1 - tone*0.3),
// clamped to [-1, 1].
type Saturation struct {
	paramSet
}

// NewSaturation creates a saturator with drive 2 and tone 0.5.
func NewSaturation() *Saturation {
	return &Saturation{
		paramSet: newParamSet(
			Param{ID: ParamDrive, Name: "Drive", Min: 1, Max: 20, Default: 2},
			Param{ID: ParamTone, Name: "Tone", Min: 0, Max: 1, Default: 0.5},
		),
	}
}

// Name returns "Saturation".
func (s *Saturation) Name() string { return "Saturation" }

// SetParameter writes a plain parameter value.
func (s *Saturation) SetParameter(id string, value float64) bool {
	return s.set(id, value)
}

// Process shapes block in place.
func (s *Saturation) Process(block []float64) {
	drive := s.value(ParamDrive)
	out := 1 - s.value(ParamTone)*toneDarkening

	for i, x := range block {
		block[i] = math.Tanh(x*drive) * out
	}

	core.ClampBlock(block, 1)
}

// Reset is a no-op; the saturator is stateless.
func (s *Saturation) Reset() {}
