// Package scene loads a YAML mix description and builds it into a session:
// tracks with generated sources, insert plugins, buses, routes, sidechains
// and automation lanes. Scene files refer to tracks and buses by name.
package scene

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"os"
	"slices"

	"github.com/cwbudde/algo-daw/automation"
	"github.com/cwbudde/algo-daw/dsp/signal"
	"github.com/cwbudde/algo-daw/routing"
	"github.com/cwbudde/algo-daw/session"
	"gopkg.in/yaml.v3"
)

// DefaultDuration is the render length in seconds of a scene without one.
const DefaultDuration = 2.0

// ErrInvalidScene wraps every structural error found by Validate or Build.
var ErrInvalidScene = errors.New("scene: invalid scene")

// Scene is the root of a scene file.
type Scene struct {
	Duration   float64     `yaml:"duration"`
	Tracks     []Track     `yaml:"tracks"`
	Buses      []Bus       `yaml:"buses"`
	Routes     []Route     `yaml:"routes"`
	Sidechains []Sidechain `yaml:"sidechains"`
}

// Track describes one track and its source signal. Automation lanes are
// keyed by session.VolumeParameter or session.PanParameter; plugin lanes
// live on the plugin.
type Track struct {
	Name       string                        `yaml:"name"`
	Signal     signal.Spec                   `yaml:"signal"`
	Volume     float64                       `yaml:"volume"`
	Pan        float64                       `yaml:"pan"`
	Mute       bool                          `yaml:"mute"`
	Solo       bool                          `yaml:"solo"`
	Bus        string                        `yaml:"bus"`
	Plugins    []session.Suggestion          `yaml:"plugins"`
	Automation map[string][]automation.Point `yaml:"automation"`
}

// Bus describes one group bus.
type Bus struct {
	Name   string  `yaml:"name"`
	Color  string  `yaml:"color"`
	Volume float64 `yaml:"volume"`
	Pan    float64 `yaml:"pan"`
	Mute   bool    `yaml:"mute"`
	Solo   bool    `yaml:"solo"`
}

// Route is an extra send. To names a track or bus; it is ignored for
// master sends. A route without a level sends at unity.
type Route struct {
	From     string                  `yaml:"from"`
	Type     routing.DestinationType `yaml:"type"`
	To       string                  `yaml:"to"`
	Level    *float64                `yaml:"level,omitempty"`
	Pan      float64                 `yaml:"pan"`
	PreFader bool                    `yaml:"preFader"`
}

// SendLevel returns the linear send level.
func (r Route) SendLevel() float64 {
	if r.Level == nil {
		return 1
	}

	return *r.Level
}

// Sidechain keys the compressors on Compressor from the dry signal of Source.
type Sidechain struct {
	Compressor string             `yaml:"compressor"`
	Source     string             `yaml:"source"`
	Filter     routing.FilterType `yaml:"filter"`
	Frequency  float64            `yaml:"frequency"`
}

// Parse decodes and validates a scene.
func Parse(data []byte) (Scene, error) {
	var sc Scene

	err := yaml.Unmarshal(data, &sc)
	if err != nil {
		return Scene{}, fmt.Errorf("scene: decode yaml: %w", err)
	}

	err = sc.Validate()
	if err != nil {
		return Scene{}, err
	}

	return sc, nil
}

// Load reads and parses a scene file.
func Load(path string) (Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scene{}, fmt.Errorf("scene: read %s: %w", path, err)
	}

	return Parse(data)
}

// Length returns the render length in seconds.
func (sc Scene) Length() float64 {
	if sc.Duration <= 0 || math.IsNaN(sc.Duration) {
		return DefaultDuration
	}

	return sc.Duration
}

// Validate checks names and references. It does not check plugin types
// or parameters, which are only known to the session catalog.
func (sc Scene) Validate() error {
	tracks := make(map[string]bool, len(sc.Tracks))
	buses := make(map[string]bool, len(sc.Buses))

	for _, b := range sc.Buses {
		if b.Name == "" || buses[b.Name] {
			return fmt.Errorf("%w: bus name %q empty or duplicated", ErrInvalidScene, b.Name)
		}

		buses[b.Name] = true
	}

	for _, t := range sc.Tracks {
		if t.Name == "" || tracks[t.Name] {
			return fmt.Errorf("%w: track name %q empty or duplicated", ErrInvalidScene, t.Name)
		}

		if t.Bus != "" && !buses[t.Bus] {
			return fmt.Errorf("%w: track %q names unknown bus %q", ErrInvalidScene, t.Name, t.Bus)
		}

		for key := range t.Automation {
			if key != session.VolumeParameter && key != session.PanParameter {
				return fmt.Errorf("%w: track %q automates unknown parameter %q", ErrInvalidScene, t.Name, key)
			}
		}

		tracks[t.Name] = true
	}

	for _, r := range sc.Routes {
		if !tracks[r.From] {
			return fmt.Errorf("%w: route from unknown track %q", ErrInvalidScene, r.From)
		}

		if lvl := r.SendLevel(); lvl < 0 || math.IsNaN(lvl) {
			return fmt.Errorf("%w: route from %q has level %v", ErrInvalidScene, r.From, lvl)
		}

		switch r.Type {
		case routing.ToTrack:
			if !tracks[r.To] {
				return fmt.Errorf("%w: route to unknown track %q", ErrInvalidScene, r.To)
			}
		case routing.ToBus:
			if !buses[r.To] {
				return fmt.Errorf("%w: route to unknown bus %q", ErrInvalidScene, r.To)
			}
		case routing.ToMaster:
		default:
			return fmt.Errorf("%w: route type %q", ErrInvalidScene, r.Type)
		}
	}

	for _, s := range sc.Sidechains {
		if !tracks[s.Compressor] || !tracks[s.Source] {
			return fmt.Errorf("%w: sidechain %q <- %q names an unknown track", ErrInvalidScene, s.Compressor, s.Source)
		}
	}

	return nil
}

// Build creates every scene object in s and renders the track sources. The
// returned inputs are keyed by track ID and cover Length() seconds at the
// generator sample rate, which should match the session.
func (sc Scene) Build(s *session.Session, gen *signal.Generator) (map[string][]float64, error) {
	err := sc.Validate()
	if err != nil {
		return nil, err
	}

	samples := max(1, gen.Config().Samples(sc.Length()))
	busIDs := make(map[string]string, len(sc.Buses))
	trackIDs := make(map[string]string, len(sc.Tracks))
	inputs := make(map[string][]float64, len(sc.Tracks))

	for _, b := range sc.Buses {
		bus := s.CreateBus(b.Name, b.Color)
		s.Buses().SetBusVolume(bus.ID, b.Volume)
		s.Buses().SetBusPan(bus.ID, b.Pan)
		s.Buses().SetMute(bus.ID, b.Mute)
		s.Buses().SetSolo(bus.ID, b.Solo)
		busIDs[b.Name] = bus.ID
	}

	for _, t := range sc.Tracks {
		id := s.AddTrack(t.Name).ID
		trackIDs[t.Name] = id

		s.SetTrackVolume(id, t.Volume)
		s.SetTrackPan(id, t.Pan)
		s.SetTrackMute(id, t.Mute)
		s.SetTrackSolo(id, t.Solo)

		if t.Bus != "" {
			err = s.AddTrackToBus(busIDs[t.Bus], id)
			if err != nil {
				return nil, err
			}
		}

		inputs[id], err = gen.Generate(t.Signal, samples)
		if err != nil {
			return nil, fmt.Errorf("scene: track %q: %w", t.Name, err)
		}

		for _, sg := range t.Plugins {
			_, err = s.ApplySuggestion(id, sg)
			if err != nil {
				return nil, fmt.Errorf("scene: track %q: %w", t.Name, err)
			}
		}

		for _, key := range slices.Sorted(maps.Keys(t.Automation)) {
			s.SetAutomationLane(id, key, t.Automation[key])
		}
	}

	for _, r := range sc.Routes {
		d := routing.Destination{Type: r.Type, Level: r.SendLevel(), Pan: r.Pan, PreFader: r.PreFader}

		switch r.Type {
		case routing.ToTrack:
			d.DestinationID = trackIDs[r.To]
		case routing.ToBus:
			d.DestinationID = busIDs[r.To]
		}

		if !s.AddRoute(trackIDs[r.From], d) {
			return nil, fmt.Errorf("%w: route %q -> %q rejected", ErrInvalidScene, r.From, r.To)
		}
	}

	for _, c := range sc.Sidechains {
		_, err = s.CreateSidechain(trackIDs[c.Compressor], trackIDs[c.Source], c.Frequency, c.Filter)
		if err != nil {
			return nil, fmt.Errorf("scene: sidechain %q <- %q: %w", c.Compressor, c.Source, err)
		}
	}

	return inputs, nil
}
