package effects

import (
	"math"

	"github.com/cwbudde/algo-daw/dsp/core"
	"github.com/cwbudde/algo-daw/dsp/filter/biquad"
	"github.com/cwbudde/algo-daw/dsp/filter/design"
)

const (
	ParamThreshold  = "threshold"
	ParamRatio      = "ratio"
	ParamAttack     = "attack"
	ParamRelease    = "release"
	ParamMakeupGain = "makeupGain"

	minDetectorHz = 20.0
	maxDetectorHz = 20000.0
)

// DetectorFilter selects the key filter applied to the compressor's level
// detector signal.
type DetectorFilter string

const (
	DetectorNone     DetectorFilter = "none"
	DetectorLowpass  DetectorFilter = "lowpass"
	DetectorHighpass DetectorFilter = "highpass"
	DetectorBandpass DetectorFilter = "bandpass"
)

// Compressor is a hard-knee feed-forward compressor.
//
// Above the threshold the static curve is out = T + (|x| - T)/ratio, so the
// target gain is 1 + (1/ratio - 1)*(1 - T/|x|): unity at the threshold and
// falling monotonically towards 1/ratio as the level rises. The gain
// envelope moves towards that target with the attack time constant and back
// towards unity with the release time constant. Output is clamped to [-1, 1].
//
// The detector reads the processed signal by default, or an external key
// signal through ProcessWithSidechain. Either way it passes through the
// optional detector filter first.
type Compressor struct {
	paramSet

	sampleRate float64

	thresholdLin float64
	invRatio     float64
	makeupLin    float64
	attackStep   float64
	releaseStep  float64

	envelope float64

	detectorType DetectorFilter
	detectorHz   float64
	detector     *biquad.Section
}

// NewCompressor creates a compressor with threshold -20 dB, ratio 4:1,
// attack 10 ms, release 100 ms and no makeup gain.
func NewCompressor(sampleRate float64) (*Compressor, error) {
	err := validateSampleRate("compressor", sampleRate)
	if err != nil {
		return nil, err
	}

	c := &Compressor{
		paramSet: newParamSet(
			Param{ID: ParamThreshold, Name: "Threshold", Unit: "dB", Min: -60, Max: 0, Default: -20},
			Param{ID: ParamRatio, Name: "Ratio", Min: 1, Max: 16, Default: 4},
			Param{ID: ParamAttack, Name: "Attack", Unit: "ms", Min: 0.1, Max: 100, Default: 10},
			Param{ID: ParamRelease, Name: "Release", Unit: "ms", Min: 10, Max: 1000, Default: 100},
			Param{ID: ParamMakeupGain, Name: "Makeup", Unit: "dB", Min: 0, Max: 24, Default: 0},
		),
		sampleRate:   sampleRate,
		envelope:     1,
		detectorType: DetectorNone,
		detector:     biquad.NewSection(biquad.Passthrough()),
	}
	c.update()

	return c, nil
}

// Name returns "Compressor".
func (c *Compressor) Name() string { return "Compressor" }

// SetParameter writes a plain parameter value and refreshes cached coefficients.
func (c *Compressor) SetParameter(id string, value float64) bool {
	if !c.set(id, value) {
		return false
	}

	c.update()

	return true
}

// SetDetectorFilter configures the key filter on the detector path.
// Unknown filter types disable the filter. Setting the active filter again
// keeps the filter memory.
func (c *Compressor) SetDetectorFilter(filter DetectorFilter, freq float64) {
	freq = core.Clamp(freq, minDetectorHz, math.Min(maxDetectorHz, c.sampleRate*0.49))

	var coeffs biquad.Coefficients

	switch filter {
	case DetectorLowpass:
		coeffs = design.Lowpass(freq, design.DefaultQ, c.sampleRate)
	case DetectorHighpass:
		coeffs = design.Highpass(freq, design.DefaultQ, c.sampleRate)
	case DetectorBandpass:
		coeffs = design.Bandpass(freq, 1, c.sampleRate)
	default:
		filter = DetectorNone
		coeffs = biquad.Passthrough()
	}

	if filter == c.detectorType && core.NearlyEqual(freq, c.detectorHz, 1e-9) {
		return
	}

	c.detectorType = filter
	c.detectorHz = freq
	c.detector.SetCoefficients(coeffs)
	c.detector.Reset()
}

// Detector returns the active detector filter type and frequency.
func (c *Compressor) Detector() (DetectorFilter, float64) {
	return c.detectorType, c.detectorHz
}

// Gain returns the current gain envelope (1 means no reduction).
func (c *Compressor) Gain() float64 { return c.envelope }

// GainReductionDB returns the current gain reduction as a positive dB value.
func (c *Compressor) GainReductionDB() float64 {
	if c.envelope <= 0 {
		return math.Inf(1)
	}

	return -core.LinearToDB(c.envelope)
}

// StaticGain returns the steady-state gain the envelope converges to for a
// detector level (linear magnitude).
func (c *Compressor) StaticGain(level float64) float64 {
	level = math.Abs(level)
	if level <= c.thresholdLin {
		return 1
	}

	return 1 + (c.invRatio-1)*(1-c.thresholdLin/level)
}

// Process compresses block in place using its own signal as the detector.
func (c *Compressor) Process(block []float64) {
	for i, x := range block {
		block[i] = c.processSample(x, x)
	}
}

// ProcessWithSidechain compresses main in place, driving the detector from
// sidechain. A short or empty sidechain falls back to the main signal for
// the remaining samples.
func (c *Compressor) ProcessWithSidechain(main, sidechain []float64) {
	for i, x := range main {
		key := x
		if i < len(sidechain) {
			key = sidechain[i]
		}

		main[i] = c.processSample(x, key)
	}
}

// Reset returns the envelope to unity and clears detector filter memory.
func (c *Compressor) Reset() {
	c.envelope = 1
	c.detector.Reset()
}

func (c *Compressor) processSample(x, key float64) float64 {
	level := math.Abs(c.detector.ProcessSample(key))

	if level > c.thresholdLin {
		target := c.StaticGain(level)
		c.envelope += (target - c.envelope) * c.attackStep
	} else {
		c.envelope += (1 - c.envelope) * c.releaseStep
	}

	return core.Clamp(x*c.envelope*c.makeupLin, -1, 1)
}

func (c *Compressor) update() {
	c.thresholdLin = core.DBToLinear(c.value(ParamThreshold))
	c.invRatio = 1 / c.value(ParamRatio)
	c.makeupLin = core.DBToLinear(c.value(ParamMakeupGain))
	c.attackStep = smoothingStep(c.value(ParamAttack), c.sampleRate)
	c.releaseStep = smoothingStep(c.value(ParamRelease), c.sampleRate)
}
