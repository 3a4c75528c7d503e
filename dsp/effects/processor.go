package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-daw/dsp/core"
)

// Processor is the contract shared by every insert effect.
type Processor interface {
	// Name returns the display name of the processor.
	Name() string
	// Parameters returns a snapshot of the parameter schema with current values.
	Parameters() []Param
	// Parameter returns one parameter by ID.
	Parameter(id string) (Param, bool)
	// SetParameter writes a plain (unnormalized) value, clamped to the
	// parameter range. It reports false only for unknown IDs.
	SetParameter(id string, value float64) bool
	// Process transforms block in place.
	Process(block []float64)
	// Reset clears run-state (envelopes, delay lines, filter memory).
	Reset()
}

// SidechainProcessor is implemented by processors whose level detector can
// listen to a signal other than the one being processed.
type SidechainProcessor interface {
	ProcessWithSidechain(main, sidechain []float64)
}

// Param describes one processor parameter and holds its current value.
type Param struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Unit    string  `json:"unit,omitempty"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
	Value   float64 `json:"value"`
}

// Clamp limits v to the parameter range.
func (p Param) Clamp(v float64) float64 {
	return core.Clamp(v, p.Min, p.Max)
}

// Denormalize maps a normalized value in [0, 1] onto the parameter range.
func (p Param) Denormalize(norm float64) float64 {
	return core.Lerp(p.Min, p.Max, core.Clamp01(norm))
}

// Normalize maps a plain value onto [0, 1].
func (p Param) Normalize(v float64) float64 {
	return core.InverseLerp(p.Min, p.Max, v)
}

// SetNormalized writes a normalized value in [0, 1] to parameter id of p.
func SetNormalized(p Processor, id string, norm float64) bool {
	param, ok := p.Parameter(id)
	if !ok {
		return false
	}

	return p.SetParameter(id, param.Denormalize(norm))
}

// Normalized reads parameter id of p as a value in [0, 1].
func Normalized(p Processor, id string) (float64, bool) {
	param, ok := p.Parameter(id)
	if !ok {
		return 0, false
	}

	return param.Normalize(param.Value), true
}

// paramSet is the schema storage embedded by every processor.
type paramSet struct {
	params []Param
}

func newParamSet(specs ...Param) paramSet {
	params := make([]Param, len(specs))
	for i, p := range specs {
		p.Value = p.Clamp(p.Default)
		params[i] = p
	}

	return paramSet{params: params}
}

// Parameters returns a copy of the schema with current values.
func (s *paramSet) Parameters() []Param {
	out := make([]Param, len(s.params))
	copy(out, s.params)

	return out
}

// Parameter returns one parameter by ID.
func (s *paramSet) Parameter(id string) (Param, bool) {
	i := s.index(id)
	if i < 0 {
		return Param{}, false
	}

	return s.params[i], true
}

func (s *paramSet) index(id string) int {
	for i := range s.params {
		if s.params[i].ID == id {
			return i
		}
	}

	return -1
}

// set stores the clamped value and reports whether id is known.
func (s *paramSet) set(id string, value float64) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}

	s.params[i].Value = s.params[i].Clamp(value)

	return true
}

func (s *paramSet) value(id string) float64 {
	i := s.index(id)
	if i < 0 {
		return 0
	}

	return s.params[i].Value
}

func (s *paramSet) resetToDefaults() {
	for i := range s.params {
		s.params[i].Value = s.params[i].Clamp(s.params[i].Default)
	}
}

func validateSampleRate(kind string, sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%s sample rate must be positive and finite: %f", kind, sampleRate)
	}

	return nil
}

// smoothingStep returns the per-sample one-pole step for a time constant in
// milliseconds, using the half-life convention 1 - exp(-ln2 / (t * fs)).
func smoothingStep(ms, sampleRate float64) float64 {
	samples := ms * 0.001 * sampleRate
	if samples <= 0 {
		return 1
	}

	return 1 - math.Exp(-math.Ln2/samples)
}
