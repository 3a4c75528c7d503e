package effects

import (
	"math"

	"github.com/cwbudde/algo-daw/dsp/delay"
)

const (
	ParamDryWet = "dryWet"
	ParamDecay  = "decay"

	reverbFeedback = 0.7
	// reverbLengthScale sets the delay length as a fraction of the decay time.
	reverbLengthScale = 0.1
)

// Reverb is a single feedback delay line. Its length is roughly
// sampleRate*decay*0.1 samples with a fixed feedback of 0.7; the output is
// dry*(1-dryWet) + delayed*dryWet.
type Reverb struct {
	paramSet

	sampleRate float64
	line       *delay.Line
}

// NewReverb creates a reverb with dryWet 0.3 and a 2 s decay.
func NewReverb(sampleRate float64) (*Reverb, error) {
	err := validateSampleRate("reverb", sampleRate)
	if err != nil {
		return nil, err
	}

	r := &Reverb{
		paramSet: newParamSet(
			Param{ID: ParamDryWet, Name: "Dry/Wet", Min: 0, Max: 1, Default: 0.3},
			Param{ID: ParamDecay, Name: "Decay", Unit: "s", Min: 0.5, Max: 5, Default: 2},
		),
		sampleRate: sampleRate,
	}

	r.line, err = delay.New(r.delayLength())
	if err != nil {
		return nil, err
	}

	return r, nil
}

// Name returns "Reverb".
func (r *Reverb) Name() string { return "Reverb" }

// SetParameter writes a plain parameter value. Changing the decay rebuilds
// the delay line, which clears its tail.
func (r *Reverb) SetParameter(id string, value float64) bool {
	if !r.set(id, value) {
		return false
	}

	if id == ParamDecay && r.line.Len() != r.delayLength() {
		// Resize only fails for a non-positive length, which delayLength rules out.
		_ = r.line.Resize(r.delayLength())
	}

	return true
}

// DelayLength returns the current delay line length in samples.
func (r *Reverb) DelayLength() int { return r.line.Len() }

// Process mixes the delayed signal into block in place.
func (r *Reverb) Process(block []float64) {
	wet := r.value(ParamDryWet)
	dry := 1 - wet
	for i, x := range block {
		block[i] = x*dry + r.line.Comb(x, reverbFeedback)*wet
	}
}

// Reset clears the delay line.
func (r *Reverb) Reset() {
	r.line.Reset()
}

func (r *Reverb) delayLength() int {
	return max(1, int(math.Round(r.sampleRate*r.value(ParamDecay)*reverbLengthScale)))
}
