package session

import (
	"maps"
	"slices"
	"strings"

	"github.com/cwbudde/algo-daw/automation"
	"github.com/cwbudde/algo-daw/dsp/effectchain"
	"github.com/cwbudde/algo-daw/dsp/effects"
	"github.com/cwbudde/algo-daw/routing"
)

// Suggestion is a candidate plugin produced by an external analysis
// service, with pre-filled parameter values and optional automation lanes
// keyed by parameter ID.
type Suggestion struct {
	Type       string                        `json:"type" yaml:"type"`
	Name       string                        `json:"name,omitempty" yaml:"name,omitempty"`
	Parameters map[string]float64            `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Bypassed   bool                          `json:"bypassed,omitempty" yaml:"bypassed,omitempty"`
	Automation map[string][]automation.Point `json:"automation,omitempty" yaml:"automation,omitempty"`
}

// AddPlugin creates a plugin of effectType on the chain of trackID.
func (s *Session) AddPlugin(trackID, effectType string, params map[string]float64) (*effectchain.Plugin, error) {
	err := s.requireTrack(trackID)
	if err != nil {
		return nil, err
	}

	p, err := s.plugins.CreatePlugin(effectType, params)
	if err != nil {
		return nil, err
	}

	s.plugins.CreateChain(trackID).AddPlugin(p.ID)
	s.syncDetectors(trackID)

	return p, nil
}

// ApplySuggestion builds the suggested plugin, appends it to the chain of
// trackID and installs its automation lanes in read mode.
func (s *Session) ApplySuggestion(trackID string, sg Suggestion) (*effectchain.Plugin, error) {
	err := s.requireTrack(trackID)
	if err != nil {
		return nil, err
	}

	p, err := s.plugins.CreatePlugin(sg.Type, sg.Parameters)
	if err != nil {
		s.log.Warn("session: suggestion rejected", "track", trackID, "type", sg.Type, "error", err)
		return nil, err
	}

	if sg.Name != "" {
		p.Name = sg.Name
	}

	p.Enabled = !sg.Bypassed
	s.plugins.CreateChain(trackID).AddPlugin(p.ID)

	for _, param := range slices.Sorted(maps.Keys(sg.Automation)) {
		s.SetAutomationLane(trackID, PluginParameterKey(p.ID, param), sg.Automation[param])
	}

	s.syncDetectors(trackID)

	s.log.Info("session: suggestion applied", "track", trackID, "plugin", p.ID, "type", p.Type)

	return p, nil
}

// RemovePlugin unregisters a plugin, drops it from every chain, and deletes
// its MIDI mappings and automation lanes.
func (s *Session) RemovePlugin(pluginID string) bool {
	if !s.plugins.RemovePlugin(pluginID) {
		return false
	}

	s.midi.RemovePlugin(pluginID)

	prefix := pluginID + "/"
	for _, c := range s.automation.Curves() {
		if strings.HasPrefix(c.Parameter, prefix) {
			s.automation.DeleteCurve(c.TrackID, c.Parameter)
		}
	}

	return true
}

// syncDetectors points the detector of every compressor on trackID at the
// active sidechain filter, or back to its own unfiltered signal.
func (s *Session) syncDetectors(trackID string) {
	c, ok := s.plugins.ChainForTrack(trackID)
	if !ok {
		return
	}

	sc, active := s.sidechains.GetSidechainSource(trackID)
	s.configureDetectors(c, sc, active)
}

func (s *Session) configureDetectors(c *effectchain.Chain, sc routing.SidechainConfig, active bool) {
	for _, id := range c.PluginIDs() {
		p, ok := s.plugins.Plugin(id)
		if !ok {
			continue
		}

		comp, isComp := p.Processor.(*effects.Compressor)
		if !isComp {
			continue
		}

		if active {
			comp.SetDetectorFilter(detectorFilter(sc.FilterType), sc.Frequency)
		} else {
			comp.SetDetectorFilter(effects.DetectorNone, 0)
		}
	}
}

func detectorFilter(f routing.FilterType) effects.DetectorFilter {
	switch f {
	case routing.FilterLowpass:
		return effects.DetectorLowpass
	case routing.FilterHighpass:
		return effects.DetectorHighpass
	case routing.FilterBandpass:
		return effects.DetectorBandpass
	default:
		return effects.DetectorNone
	}
}
