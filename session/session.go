// Package session wires the automation, effect, routing and MIDI engines
// into one explicitly constructed service object and implements the offline
// render path.
//
// A Session replaces process-wide manager singletons: every engine is built
// by New with one shared ID source and logger, so tests construct isolated
// sessions with deterministic IDs. A Session is not safe for concurrent use;
// UI events and render passes are expected on one goroutine.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/cwbudde/algo-daw/automation"
	"github.com/cwbudde/algo-daw/config"
	"github.com/cwbudde/algo-daw/dsp/core"
	"github.com/cwbudde/algo-daw/dsp/effectchain"
	"github.com/cwbudde/algo-daw/idgen"
	"github.com/cwbudde/algo-daw/measure/loudness"
	"github.com/cwbudde/algo-daw/measure/meter"
	"github.com/cwbudde/algo-daw/midimap"
	"github.com/cwbudde/algo-daw/routing"
	"gitlab.com/gomidi/midi/v2"
)

// Track fader range in dB.
const (
	MinTrackVolumeDB = -60.0
	MaxTrackVolumeDB = 12.0
)

var (
	// ErrUnknownTrack is returned when an operation names a missing track.
	ErrUnknownTrack = errors.New("session: unknown track")
	// ErrUnknownBus is returned when an operation names a missing bus.
	ErrUnknownBus = errors.New("session: unknown bus")
)

// Track is one mono source channel with a fader.
type Track struct {
	ID       string
	Name     string
	VolumeDB float64
	Pan      float64
	Muted    bool
	Soloed   bool
}

// Option configures a Session.
type Option func(*Session)

// WithIDSource sets the ID source shared by every engine.
func WithIDSource(src idgen.Source) Option {
	return func(s *Session) {
		if src != nil {
			s.ids = src
		}
	}
}

// WithLogger sets the logger shared by every engine.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// Session owns the engines and tracks of one project.
type Session struct {
	cfg config.Config
	ids idgen.Source
	log *slog.Logger

	automation *automation.Recorder
	plugins    *effectchain.Registry
	buses      *routing.BusManager
	routes     *routing.Engine
	sidechains *routing.SidechainRegistry
	midi       *midimap.Table

	tracks map[string]*Track
	order  []string

	meters      map[string]*meter.Meter
	masterMeter [2]*meter.Meter
	loudness    *loudness.Meter
	mix         mixBuffers
}

// New validates cfg and builds a session with empty engines.
func New(cfg config.Config, opts ...Option) (*Session, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	s := &Session{
		cfg:    cfg,
		ids:    idgen.NewUUID(),
		log:    slog.Default(),
		tracks: make(map[string]*Track),
		meters: make(map[string]*meter.Meter),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.automation = automation.NewRecorder(
		automation.WithMinimumInterval(cfg.Automation.MinimumRecordingInterval),
		automation.WithIDSource(s.ids),
		automation.WithLogger(s.log),
	)

	s.plugins = effectchain.NewRegistry(
		effectchain.WithCatalog(effectchain.DefaultCatalog(effectchain.WithFilterEQ(cfg.EQ.Mode == config.EQModeFilter))),
		effectchain.WithContext(effectchain.NewContext(core.WithSampleRate(cfg.SampleRate), core.WithBlockSize(cfg.BlockSize))),
		effectchain.WithIDSource(s.ids),
		effectchain.WithLogger(s.log),
	)

	routingOpts := []routing.Option{
		routing.WithIDSource(s.ids),
		routing.WithLogger(s.log),
		routing.WithExclusiveBusMembership(cfg.Routing.ExclusiveBusMembership),
	}
	s.buses = routing.NewBusManager(routingOpts...)
	s.routes = routing.NewEngine(routingOpts...)
	s.sidechains = routing.NewSidechainRegistry(routingOpts...)

	s.midi = midimap.NewTable(s.plugins, midimap.WithIDSource(s.ids), midimap.WithLogger(s.log))
	s.masterMeter = [2]*meter.Meter{s.newMeter(), s.newMeter()}
	s.loudness = loudness.New(loudness.WithSampleRate(cfg.SampleRate))

	return s, nil
}

func (s *Session) processorConfig() core.ProcessorConfig {
	return core.ProcessorConfig{SampleRate: s.cfg.SampleRate, BlockSize: s.cfg.BlockSize}
}

func (s *Session) newMeter() *meter.Meter {
	return meter.New(meter.WithSampleRate(s.cfg.SampleRate))
}

// Config returns the validated configuration.
func (s *Session) Config() config.Config { return s.cfg }

// Logger returns the session logger.
func (s *Session) Logger() *slog.Logger { return s.log }

// Automation returns the automation recorder.
func (s *Session) Automation() *automation.Recorder { return s.automation }

// Plugins returns the plugin and chain registry.
func (s *Session) Plugins() *effectchain.Registry { return s.plugins }

// Buses returns the bus manager. Use DeleteBus on the session to also drop
// routes that end at a bus.
func (s *Session) Buses() *routing.BusManager { return s.buses }

// Routes returns the routing engine. Prefer AddRoute on the session, which
// checks for cycles before committing a track route.
func (s *Session) Routes() *routing.Engine { return s.routes }

// Sidechains returns the sidechain registry.
func (s *Session) Sidechains() *routing.SidechainRegistry { return s.sidechains }

// MIDI returns the MIDI mapping table.
func (s *Session) MIDI() *midimap.Table { return s.midi }

// HandleMIDI applies an incoming MIDI message to mapped plugin parameters.
func (s *Session) HandleMIDI(msg midi.Message) int {
	return s.midi.Handle(msg)
}

// AddTrack creates a track at 0 dB, centered.
func (s *Session) AddTrack(name string) Track {
	t := &Track{ID: s.ids.Next("track"), Name: name}
	s.tracks[t.ID] = t
	s.order = append(s.order, t.ID)
	s.meters[t.ID] = s.newMeter()

	s.log.Debug("session: track added", "track", t.ID, "name", name)

	return *t
}

// Track returns a copy of one track.
func (s *Session) Track(id string) (Track, bool) {
	t, ok := s.tracks[id]
	if !ok {
		return Track{}, false
	}

	return *t, true
}

// Tracks returns copies of every track in creation order.
func (s *Session) Tracks() []Track {
	out := make([]Track, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.tracks[id])
	}

	return out
}

// RemoveTrack deletes a track together with its routes, bus membership,
// sidechains, automation, chain and plugins.
func (s *Session) RemoveTrack(id string) bool {
	if _, ok := s.tracks[id]; !ok {
		return false
	}

	var keyed []string

	for _, sc := range s.sidechains.Sidechains() {
		if sc.SourceTrackID == id && sc.CompressorTrackID != id {
			keyed = append(keyed, sc.CompressorTrackID)
		}
	}

	if c, ok := s.plugins.ChainForTrack(id); ok {
		for _, pid := range c.PluginIDs() {
			s.midi.RemovePlugin(pid)
		}

		s.plugins.DeleteChain(id, true)
	}

	s.routes.RemoveTrack(id)
	s.buses.RemoveTrack(id)
	s.sidechains.RemoveTrack(id)
	s.automation.ClearTrack(id)

	delete(s.tracks, id)
	delete(s.meters, id)
	s.mix.dropTrack(id)
	s.order = slices.DeleteFunc(s.order, func(t string) bool { return t == id })

	for _, tid := range keyed {
		s.syncDetectors(tid)
	}

	s.log.Debug("session: track removed", "track", id)

	return true
}

// SetTrackVolume sets the fader in dB, clamped to the track range.
func (s *Session) SetTrackVolume(id string, db float64) bool {
	return s.updateTrack(id, func(t *Track) { t.VolumeDB = core.Clamp(db, MinTrackVolumeDB, MaxTrackVolumeDB) })
}

// SetTrackPan sets the pan, clamped to [-1, 1].
func (s *Session) SetTrackPan(id string, pan float64) bool {
	return s.updateTrack(id, func(t *Track) { t.Pan = core.Clamp(pan, -1, 1) })
}

// SetTrackMute mutes or unmutes a track.
func (s *Session) SetTrackMute(id string, muted bool) bool {
	return s.updateTrack(id, func(t *Track) { t.Muted = muted })
}

// SetTrackSolo solos or unsolos a track.
func (s *Session) SetTrackSolo(id string, soloed bool) bool {
	return s.updateTrack(id, func(t *Track) { t.Soloed = soloed })
}

func (s *Session) updateTrack(id string, fn func(*Track)) bool {
	t, ok := s.tracks[id]
	if !ok {
		s.log.Warn("session: unknown track", "track", id)
		return false
	}

	fn(t)

	return true
}

func (s *Session) requireTrack(id string) error {
	if _, ok := s.tracks[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTrack, id)
	}

	return nil
}
