package effects

import (
	"github.com/cwbudde/algo-daw/dsp/core"
	"github.com/cwbudde/algo-daw/dsp/filter/biquad"
	"github.com/cwbudde/algo-daw/dsp/filter/design"
)

const (
	ParamLowGain  = "lowGain"
	ParamMidGain  = "midGain"
	ParamHighGain = "highGain"

	minBandGainDB = -12.0
	maxBandGainDB = 12.0

	lowShelfHz  = 250.0
	midPeakHz   = 1000.0
	midPeakQ    = 0.7
	highShelfHz = 4000.0
)

func bandGainParams() []Param {
	return []Param{
		{ID: ParamLowGain, Name: "Low", Unit: "dB", Min: minBandGainDB, Max: maxBandGainDB},
		{ID: ParamMidGain, Name: "Mid", Unit: "dB", Min: minBandGainDB, Max: maxBandGainDB},
		{ID: ParamHighGain, Name: "High", Unit: "dB", Min: minBandGainDB, Max: maxBandGainDB},
	}
}

// EQ is the compatibility three-band EQ. It converts each band gain to
// linear and applies the average of the three factors to every sample; it
// does no frequency splitting. Use FilterEQ for per-band filtering.
type EQ struct {
	paramSet

	gain float64
}

// NewEQ returns an EQ with all bands at 0 dB.
func NewEQ() *EQ {
	e := &EQ{paramSet: newParamSet(bandGainParams()...)}
	e.update()

	return e
}

// Name returns "EQ".
func (e *EQ) Name() string { return "EQ" }

// SetParameter writes a band gain in dB.
func (e *EQ) SetParameter(id string, value float64) bool {
	if !e.set(id, value) {
		return false
	}

	e.update()

	return true
}

// Gain returns the averaged linear gain currently applied.
func (e *EQ) Gain() float64 { return e.gain }

// Process scales block by the averaged band gain.
func (e *EQ) Process(block []float64) {
	g := e.gain
	for i := range block {
		block[i] *= g
	}
}

// Reset is a no-op; the EQ holds no run-state.
func (e *EQ) Reset() {}

func (e *EQ) update() {
	e.gain = (core.DBToLinear(e.value(ParamLowGain)) +
		core.DBToLinear(e.value(ParamMidGain)) +
		core.DBToLinear(e.value(ParamHighGain))) / 3
}

// FilterEQ is a three-band EQ built from biquad sections: a low shelf at
// 250 Hz, a peak at 1 kHz and a high shelf at 4 kHz. It shares the EQ
// parameter schema so the two are interchangeable in a chain.
type FilterEQ struct {
	paramSet

	sampleRate float64
	// bands holds the low shelf, mid peak and high shelf in that order.
	bands biquad.Cascade
}

// NewFilterEQ creates a flat filtered EQ for the given sample rate.
func NewFilterEQ(sampleRate float64) (*FilterEQ, error) {
	err := validateSampleRate("filter eq", sampleRate)
	if err != nil {
		return nil, err
	}

	e := &FilterEQ{
		paramSet:   newParamSet(bandGainParams()...),
		sampleRate: sampleRate,
		bands:      biquad.NewCascade(biquad.Passthrough(), biquad.Passthrough(), biquad.Passthrough()),
	}
	e.update()

	return e, nil
}

// Name returns "Filter EQ".
func (e *FilterEQ) Name() string { return "Filter EQ" }

// SetParameter writes a band gain in dB and redesigns that band.
func (e *FilterEQ) SetParameter(id string, value float64) bool {
	if !e.set(id, value) {
		return false
	}

	e.update()

	return true
}

// Process runs the three bands in series.
func (e *FilterEQ) Process(block []float64) {
	e.bands.ProcessBlock(block)
}

// Reset clears filter memory.
func (e *FilterEQ) Reset() {
	e.bands.Reset()
}

func (e *FilterEQ) update() {
	e.bands[0].SetCoefficients(design.LowShelf(lowShelfHz, e.value(ParamLowGain), design.DefaultQ, e.sampleRate))
	e.bands[1].SetCoefficients(design.Peak(midPeakHz, e.value(ParamMidGain), midPeakQ, e.sampleRate))
	e.bands[2].SetCoefficients(design.HighShelf(highShelfHz, e.value(ParamHighGain), design.DefaultQ, e.sampleRate))
}
