package session

import (
	"strings"

	"github.com/cwbudde/algo-daw/automation"
	"github.com/cwbudde/algo-daw/dsp/core"
	"github.com/cwbudde/algo-daw/dsp/effects"
)

// Automation parameter keys of the track strip. Plugin parameters use
// PluginParameterKey.
const (
	VolumeParameter = "volume"
	PanParameter    = "pan"
)

// PluginParameterKey returns the automation key of a plugin parameter.
func PluginParameterKey(pluginID, parameterID string) string {
	return pluginID + "/" + parameterID
}

func splitPluginKey(key string) (pluginID, parameterID string, ok bool) {
	return strings.Cut(key, "/")
}

// AutomationValue returns the current normalized value of an automation
// target. It is what a UI feeds into Recorder.RecordValue while a control
// moves.
func (s *Session) AutomationValue(trackID, key string) (float64, bool) {
	t, ok := s.tracks[trackID]
	if !ok {
		return 0, false
	}

	switch key {
	case VolumeParameter:
		return core.InverseLerp(MinTrackVolumeDB, MaxTrackVolumeDB, t.VolumeDB), true
	case PanParameter:
		return (t.Pan + 1) / 2, true
	}

	pluginID, paramID, ok := splitPluginKey(key)
	if !ok {
		return 0, false
	}

	p, ok := s.plugins.Plugin(pluginID)
	if !ok {
		return 0, false
	}

	return effects.Normalized(p.Processor, paramID)
}

// SetAutomationValue writes a normalized value to an automation target.
func (s *Session) SetAutomationValue(trackID, key string, norm float64) bool {
	t, ok := s.tracks[trackID]
	if !ok {
		return false
	}

	norm = core.Clamp01(norm)

	switch key {
	case VolumeParameter:
		t.VolumeDB = core.Lerp(MinTrackVolumeDB, MaxTrackVolumeDB, norm)
		return true
	case PanParameter:
		t.Pan = norm*2 - 1
		return true
	}

	pluginID, paramID, ok := splitPluginKey(key)
	if !ok {
		s.log.Warn("session: unknown automation target", "track", trackID, "parameter", key)
		return false
	}

	return s.plugins.SetPluginParameterNormalized(pluginID, paramID, norm)
}

// SetAutomationLane replaces the points of the curve for key on trackID and
// puts it in read mode, creating the curve if needed.
func (s *Session) SetAutomationLane(trackID, key string, points []automation.Point) {
	s.automation.SetAutomationMode(trackID, key, automation.ModeRead)
	s.automation.Edit(trackID, key, func(c automation.Curve) automation.Curve {
		c.Points = nil
		for _, p := range points {
			c = c.UpdatePoint(p)
		}

		return c
	})
}

// playsBack reports whether a curve drives its target during render. Read
// curves always do; touch and latch curves do while no capture is running.
func playsBack(c automation.Curve) bool {
	switch c.Mode {
	case automation.ModeRead:
		return true
	case automation.ModeTouch, automation.ModeLatch:
		return !c.Recording
	default:
		return false
	}
}

// applyAutomation writes the curve values at time t to their targets.
func (s *Session) applyAutomation(t float64) {
	for _, id := range s.order {
		for _, c := range s.automation.GetTrackAutomation(id) {
			if !playsBack(c) {
				continue
			}

			v, ok := c.ValueAt(t)
			if !ok {
				continue
			}

			s.SetAutomationValue(id, c.Parameter, v)
		}
	}
}
