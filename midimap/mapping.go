// Package midimap maps MIDI control-change messages onto plugin
// parameters.
//
// A Table holds the mappings, applies incoming CC messages to a Target and
// can learn a mapping from the next CC it sees. Mappings are exchanged as a
// JSON array.
package midimap

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-daw/dsp/core"
)

// AnyChannel matches control changes on every MIDI channel.
const AnyChannel = -1

var (
	// ErrInvalidMapping is returned for a mapping outside the MIDI ranges.
	ErrInvalidMapping = errors.New("midimap: invalid mapping")
	// ErrMalformedMappings is returned when a mapping document cannot be decoded.
	ErrMalformedMappings = errors.New("midimap: malformed mapping data")
)

// Mapping routes one CC controller to one plugin parameter.
//
// MIDIMin..MIDIMax is the controller span that is stretched onto
// MinValue..MaxValue, both given as normalized parameter positions in
// [0, 1]. MaxValue below MinValue inverts the control.
type Mapping struct {
	ID          string  `json:"id"`
	PluginID    string  `json:"pluginId"`
	ParameterID string  `json:"parameterId"`
	MIDIChannel int     `json:"midiChannel"`
	MIDICC      int     `json:"midiCC"`
	MinValue    float64 `json:"minValue"`
	MaxValue    float64 `json:"maxValue"`
	MIDIMin     int     `json:"midiMin"`
	MIDIMax     int     `json:"midiMax"`
	Enabled     bool    `json:"enabled"`
	Name        string  `json:"name"`
}

// NewMapping returns an enabled full-range mapping on any channel.
func NewMapping(pluginID, parameterID string, cc int) Mapping {
	return Mapping{
		PluginID:    pluginID,
		ParameterID: parameterID,
		MIDIChannel: AnyChannel,
		MIDICC:      cc,
		MinValue:    0,
		MaxValue:    1,
		MIDIMin:     0,
		MIDIMax:     127,
		Enabled:     true,
	}
}

// Validate checks the MIDI ranges and the target fields.
func (m Mapping) Validate() error {
	switch {
	case m.PluginID == "" || m.ParameterID == "":
		return fmt.Errorf("%w: missing plugin or parameter", ErrInvalidMapping)
	case m.MIDIChannel < AnyChannel || m.MIDIChannel > 15:
		return fmt.Errorf("%w: channel %d", ErrInvalidMapping, m.MIDIChannel)
	case m.MIDICC < 0 || m.MIDICC > 127:
		return fmt.Errorf("%w: controller %d", ErrInvalidMapping, m.MIDICC)
	case m.MIDIMin < 0 || m.MIDIMin > 127 || m.MIDIMax < 0 || m.MIDIMax > 127:
		return fmt.Errorf("%w: midi span %d..%d", ErrInvalidMapping, m.MIDIMin, m.MIDIMax)
	case math.IsNaN(m.MinValue) || math.IsNaN(m.MaxValue):
		return fmt.Errorf("%w: NaN value range", ErrInvalidMapping)
	}

	return nil
}

// Matches reports whether a control change on channel/cc drives m.
func (m Mapping) Matches(channel, cc uint8) bool {
	return m.Enabled && int(cc) == m.MIDICC &&
		(m.MIDIChannel == AnyChannel || int(channel) == m.MIDIChannel)
}

// Value converts a controller value to the normalized parameter position.
func (m Mapping) Value(ccValue uint8) float64 {
	var t float64

	if m.MIDIMax == m.MIDIMin {
		if int(ccValue) >= m.MIDIMin {
			t = 1
		}
	} else {
		t = core.Clamp01(float64(int(ccValue)-m.MIDIMin) / float64(m.MIDIMax-m.MIDIMin))
	}

	return core.Clamp01(core.Lerp(m.MinValue, m.MaxValue, t))
}

// ControllerValue is the inverse of Value: the CC value that represents the
// normalized parameter position norm.
func (m Mapping) ControllerValue(norm float64) uint8 {
	t := core.InverseLerp(m.MinValue, m.MaxValue, core.Clamp01(norm))
	cc := core.Lerp(float64(m.MIDIMin), float64(m.MIDIMax), t)

	return uint8(core.Clamp(math.Round(cc), 0, 127))
}

func (m Mapping) normalized() Mapping {
	m.MinValue = core.Clamp01(m.MinValue)
	m.MaxValue = core.Clamp01(m.MaxValue)

	if m.Name == "" {
		m.Name = m.PluginID + "/" + m.ParameterID
	}

	return m
}
