package session

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/cwbudde/algo-daw/automation"
	"github.com/cwbudde/algo-daw/config"
	"github.com/cwbudde/algo-daw/dsp/effectchain"
	"github.com/cwbudde/algo-daw/dsp/effects"
	"github.com/cwbudde/algo-daw/idgen"
	"github.com/cwbudde/algo-daw/midimap"
	"github.com/cwbudde/algo-daw/routing"
	"gitlab.com/gomidi/midi/v2"
)

func TestNewRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.SampleRate = 0

	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}

func TestTrackControls(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	tr := s.AddTrack("Vox")

	if tr.ID != "track-1" || tr.VolumeDB != 0 || tr.Pan != 0 {
		t.Fatalf("unexpected new track %+v", tr)
	}

	s.SetTrackVolume(tr.ID, 40)
	s.SetTrackPan(tr.ID, -3)
	s.SetTrackMute(tr.ID, true)
	s.SetTrackSolo(tr.ID, true)

	got, _ := s.Track(tr.ID)
	if got.VolumeDB != MaxTrackVolumeDB || got.Pan != -1 || !got.Muted || !got.Soloed {
		t.Fatalf("controls not applied/clamped: %+v", got)
	}

	if s.SetTrackVolume("nope", 0) {
		t.Fatal("unknown track accepted")
	}

	s.AddTrack("Gtr")

	names := []string{}
	for _, tr := range s.Tracks() {
		names = append(names, tr.Name)
	}

	if len(names) != 2 || names[0] != "Vox" || names[1] != "Gtr" {
		t.Fatalf("Tracks order = %v", names)
	}
}

func TestAddRouteRejectsCycles(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	a := s.AddTrack("a").ID
	b := s.AddTrack("b").ID
	c := s.AddTrack("c").ID

	to := func(id string) routing.Destination {
		return routing.Destination{Type: routing.ToTrack, DestinationID: id, Level: 1}
	}

	if !s.AddRoute(a, to(b)) || !s.AddRoute(b, to(c)) {
		t.Fatal("acyclic routes rejected")
	}

	tests := []struct {
		name string
		from string
		d    routing.Destination
	}{
		{"closes cycle", c, to(a)},
		{"self", a, to(a)},
		{"unknown track", a, to("ghost")},
		{"unknown source", "ghost", to(a)},
		{"unknown bus", a, routing.Destination{Type: routing.ToBus, DestinationID: "bus-9", Level: 1}},
	}

	for _, tt := range tests {
		if s.AddRoute(tt.from, tt.d) {
			t.Errorf("%s: route accepted", tt.name)
		}
	}

	if !s.WouldCreateCycle(c, a) || s.WouldCreateCycle(a, c) {
		t.Fatal("WouldCreateCycle disagrees with the committed graph")
	}
}

func TestDeleteBusDropsRoutes(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	tr := s.AddTrack("a").ID
	bus := s.CreateBus("Verb", "#00f")

	if err := s.AddTrackToBus(bus.ID, tr); err != nil {
		t.Fatalf("AddTrackToBus: %v", err)
	}

	if err := s.AddTrackToBus("bus-9", tr); !errors.Is(err, ErrUnknownBus) {
		t.Fatalf("unknown bus err = %v", err)
	}

	if err := s.AddTrackToBus(bus.ID, "ghost"); !errors.Is(err, ErrUnknownTrack) {
		t.Fatalf("unknown track err = %v", err)
	}

	if !s.AddRoute(tr, routing.Destination{Type: routing.ToBus, DestinationID: bus.ID, Level: 0.5}) {
		t.Fatal("bus route rejected")
	}

	if !s.DeleteBus(bus.ID) {
		t.Fatal("DeleteBus failed")
	}

	if n := len(s.Routes().RoutesForTrack(tr)); n != 0 {
		t.Fatalf("routes after bus delete = %d", n)
	}
}

func TestRemoveTrackCleansUp(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	kick := s.AddTrack("kick").ID
	bass := s.AddTrack("bass").ID
	bus := s.CreateBus("Drums", "")

	comp, err := s.AddPlugin(bass, effectchain.TypeCompressor, nil)
	if err != nil {
		t.Fatalf("AddPlugin: %v", err)
	}

	sat, err := s.AddPlugin(kick, effectchain.TypeSaturation, nil)
	if err != nil {
		t.Fatalf("AddPlugin: %v", err)
	}

	if _, err := s.MIDI().Add(midimap.NewMapping(sat.ID, effects.ParamDrive, 7)); err != nil {
		t.Fatalf("Add mapping: %v", err)
	}

	_ = s.AddTrackToBus(bus.ID, kick)
	s.AddRoute(kick, routing.Destination{Type: routing.ToTrack, DestinationID: bass, Level: 1})
	s.Automation().SetAutomationMode(kick, VolumeParameter, automation.ModeRead)

	if _, err := s.CreateSidechain(bass, kick, 120, routing.FilterLowpass); err != nil {
		t.Fatalf("CreateSidechain: %v", err)
	}

	if !s.RemoveTrack(kick) {
		t.Fatal("RemoveTrack failed")
	}

	if _, ok := s.Track(kick); ok {
		t.Error("track still present")
	}

	if _, ok := s.Plugins().Plugin(sat.ID); ok {
		t.Error("plugin of removed track still registered")
	}

	if n := len(s.MIDI().Mappings()); n != 0 {
		t.Errorf("mappings left = %d", n)
	}

	if b, _ := s.Buses().Bus(bus.ID); b.HasTrack(kick) {
		t.Error("bus still lists removed track")
	}

	if len(s.Routes().RoutesForTrack(kick)) != 0 || len(s.Automation().GetTrackAutomation(kick)) != 0 {
		t.Error("routes or automation left behind")
	}

	if s.Sidechains().HasActiveSidechain(bass) {
		t.Error("sidechain keyed from removed track still active")
	}

	p, _ := s.Plugins().Plugin(comp.ID)
	if f, _ := p.Processor.(*effects.Compressor).Detector(); f != effects.DetectorNone {
		t.Errorf("detector filter = %q, want none", f)
	}

	if s.RemoveTrack(kick) {
		t.Error("second RemoveTrack succeeded")
	}
}

func TestSidechainDetectorSync(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	bass := s.AddTrack("bass").ID
	kick := s.AddTrack("kick").ID

	p, err := s.AddPlugin(bass, effectchain.TypeCompressor, nil)
	if err != nil {
		t.Fatalf("AddPlugin: %v", err)
	}

	comp := p.Processor.(*effects.Compressor)

	sc, err := s.CreateSidechain(bass, kick, 150, routing.FilterHighpass)
	if err != nil {
		t.Fatalf("CreateSidechain: %v", err)
	}

	if f, hz := comp.Detector(); f != effects.DetectorHighpass || hz != 150 {
		t.Fatalf("detector = %q %v", f, hz)
	}

	s.SetSidechainEnabled(sc.ID, false)

	if f, _ := comp.Detector(); f != effects.DetectorNone {
		t.Fatalf("disabled sidechain left detector %q", f)
	}

	s.SetSidechainEnabled(sc.ID, true)
	s.DeleteSidechain(sc.ID)

	if f, _ := comp.Detector(); f != effects.DetectorNone {
		t.Fatalf("deleted sidechain left detector %q", f)
	}

	if _, err := s.CreateSidechain(bass, "ghost", 100, routing.FilterNone); !errors.Is(err, ErrUnknownTrack) {
		t.Fatalf("unknown source err = %v", err)
	}

	if _, err := s.CreateSidechain(bass, bass, 100, routing.FilterNone); !errors.Is(err, routing.ErrSelfSidechain) {
		t.Fatalf("self sidechain err = %v", err)
	}
}

func TestSidechainFilterFollowsConfig(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	bass := s.AddTrack("bass").ID
	kick := s.AddTrack("kick").ID

	p, err := s.AddPlugin(bass, effectchain.TypeCompressor, nil)
	if err != nil {
		t.Fatalf("AddPlugin: %v", err)
	}

	comp := p.Processor.(*effects.Compressor)

	sc, err := s.CreateSidechain(bass, kick, 100, routing.FilterLowpass)
	if err != nil {
		t.Fatalf("CreateSidechain: %v", err)
	}

	if !s.SetSidechainFilter(sc.ID, routing.FilterHighpass, 5000) {
		t.Fatal("SetSidechainFilter failed")
	}

	if f, hz := comp.Detector(); f != effects.DetectorHighpass || hz != 5000 {
		t.Fatalf("detector = %q %v, want highpass 5000", f, hz)
	}

	if s.SetSidechainFilter("sidechain-9", routing.FilterLowpass, 100) {
		t.Fatal("unknown sidechain accepted")
	}

	// Changes made on the registry directly, and compressors added behind
	// the session's back, are picked up by the next rendered block.
	s.Sidechains().SetSidechainFilter(sc.ID, routing.FilterBandpass, 800)

	late, err := s.Plugins().CreatePlugin(effectchain.TypeCompressor, nil)
	if err != nil {
		t.Fatalf("CreatePlugin: %v", err)
	}

	c, _ := s.Plugins().ChainForTrack(bass)
	c.AddPlugin(late.ID)

	s.RenderBlock(0, nil)

	for _, proc := range []*effects.Compressor{comp, late.Processor.(*effects.Compressor)} {
		if f, hz := proc.Detector(); f != effects.DetectorBandpass || hz != 800 {
			t.Fatalf("detector = %q %v, want bandpass 800", f, hz)
		}
	}
}

func TestApplySuggestionParameterOrder(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer

	s, err := New(config.Default(),
		WithIDSource(idgen.NewCounter()),
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tr := s.AddTrack("vox").ID

	_, err = s.ApplySuggestion(tr, Suggestion{
		Type:       effectchain.TypeGate,
		Parameters: map[string]float64{"zeta": 1, "alpha": 1, "mu": 1, "kappa": 1},
	})
	if err != nil {
		t.Fatalf("ApplySuggestion: %v", err)
	}

	var got []string

	for _, line := range strings.Split(logs.String(), "\n") {
		if _, after, ok := strings.Cut(line, "parameter="); ok {
			got = append(got, after)
		}
	}

	want := []string{"alpha", "kappa", "mu", "zeta"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("warned parameters = %v, want %v", got, want)
	}
}

func TestApplySuggestion(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	tr := s.AddTrack("vox").ID

	p, err := s.ApplySuggestion(tr, Suggestion{
		Type:       effectchain.TypeSaturation,
		Name:       "Warmth",
		Parameters: map[string]float64{effects.ParamDrive: 5, "bogus": 1},
		Bypassed:   true,
		Automation: map[string][]automation.Point{
			effects.ParamTone: {{Time: 0, Value: 0.2}, {Time: 2, Value: 0.8}},
		},
	})
	if err != nil {
		t.Fatalf("ApplySuggestion: %v", err)
	}

	if p.Name != "Warmth" || p.Enabled {
		t.Fatalf("plugin = %+v", p)
	}

	if v, _ := s.Plugins().PluginParameter(p.ID, effects.ParamDrive); v.Value != 5 {
		t.Fatalf("drive = %v, want 5", v.Value)
	}

	c, ok := s.Plugins().ChainForTrack(tr)
	if !ok || !c.Contains(p.ID) {
		t.Fatal("plugin not appended to chain")
	}

	curve, ok := s.Automation().Curve(tr, PluginParameterKey(p.ID, effects.ParamTone))
	if !ok || curve.Mode != automation.ModeRead || curve.PointCount() != 2 {
		t.Fatalf("automation lane = %+v, %v", curve, ok)
	}

	if _, err := s.ApplySuggestion(tr, Suggestion{Type: "phaser"}); !errors.Is(err, effectchain.ErrUnknownEffect) {
		t.Fatalf("unknown type err = %v", err)
	}

	if _, err := s.ApplySuggestion("ghost", Suggestion{Type: effectchain.TypeEQ}); !errors.Is(err, ErrUnknownTrack) {
		t.Fatalf("unknown track err = %v", err)
	}

	if !s.RemovePlugin(p.ID) {
		t.Fatal("RemovePlugin failed")
	}

	if n := len(s.Automation().GetTrackAutomation(tr)); n != 0 {
		t.Fatalf("plugin automation left = %d", n)
	}
}

func TestHandleMIDI(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	tr := s.AddTrack("gtr").ID

	p, err := s.AddPlugin(tr, effectchain.TypeSaturation, nil)
	if err != nil {
		t.Fatalf("AddPlugin: %v", err)
	}

	if _, err := s.MIDI().Add(midimap.NewMapping(p.ID, effects.ParamDrive, 7)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if n := s.HandleMIDI(midi.ControlChange(3, 7, 127)); n != 1 {
		t.Fatalf("writes = %d, want 1", n)
	}

	if v, _ := s.Plugins().PluginParameter(p.ID, effects.ParamDrive); v.Value != 20 {
		t.Fatalf("drive = %v, want 20", v.Value)
	}

	if n := s.HandleMIDI(midi.NoteOn(0, 60, 100)); n != 0 {
		t.Fatalf("note on produced %d writes", n)
	}
}
