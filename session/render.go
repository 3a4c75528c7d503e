package session

import (
	"math"

	"github.com/cwbudde/algo-daw/dsp/core"
	"github.com/cwbudde/algo-daw/measure/meter"
	"github.com/cwbudde/algo-daw/routing"
	"github.com/cwbudde/algo-vecmath"
	"github.com/viterin/vek"
)

// Output is one rendered stereo block.
type Output struct {
	Left  []float64
	Right []float64
}

type stereo struct {
	l, r []float64
}

type mixBuffers struct {
	dry    map[string][]float64
	pre    map[string][]float64
	post   map[string][]float64
	sends  map[string][]float64
	buses  map[string]*stereo
	master stereo
	tmp    []float64
}

func (m *mixBuffers) buffer(set *map[string][]float64, id string, n int) []float64 {
	if *set == nil {
		*set = make(map[string][]float64)
	}

	buf := core.EnsureLen((*set)[id], n)
	core.Zero(buf)
	(*set)[id] = buf

	return buf
}

func (m *mixBuffers) dropTrack(id string) {
	delete(m.dry, id)
	delete(m.pre, id)
	delete(m.post, id)
	delete(m.sends, id)
}

func (m *mixBuffers) bus(id string, n int) *stereo {
	if m.buses == nil {
		m.buses = make(map[string]*stereo)
	}

	b := m.buses[id]
	if b == nil {
		b = &stereo{}
		m.buses[id] = b
	}

	b.l = core.EnsureLen(b.l, n)
	b.r = core.EnsureLen(b.r, n)
	core.Zero(b.l)
	core.Zero(b.r)

	return b
}

// panGains returns constant-power left/right gains for pan in [-1, 1].
func panGains(pan float64) (float64, float64) {
	angle := (core.Clamp(pan, -1, 1) + 1) * math.Pi / 4

	return math.Cos(angle), math.Sin(angle)
}

// balanceGains returns left/right gains for a stereo balance in [-1, 1]:
// the side opposite the pan direction is attenuated linearly.
func balanceGains(pan float64) (float64, float64) {
	pan = core.Clamp(pan, -1, 1)

	return math.Min(1, 1-pan), math.Min(1, 1+pan)
}

// addScaled adds src*gain into dst using tmp as scratch.
func addScaled(dst, src, tmp []float64, gain float64) {
	if gain == 0 {
		return
	}

	copy(tmp, src)
	vek.MulNumber_Inplace(tmp, gain)
	vek.Add_Inplace(dst, tmp)
}

// addPanned adds a mono signal into a stereo pair.
func (st *stereo) addPanned(src, tmp []float64, gain, pan float64) {
	gl, gr := panGains(pan)
	addScaled(st.l, src, tmp, gain*gl)
	addScaled(st.r, src, tmp, gain*gr)
}

// trackGain returns the linear fader gain honoring mute and track solo.
func (s *Session) trackGain(t *Track, anySolo bool) float64 {
	if t.Muted || (anySolo && !t.Soloed) {
		return 0
	}

	return core.DBToLinear(t.VolumeDB)
}

// RenderBlock renders one block of Config().BlockSize samples starting at
// curve time start. inputs holds the dry mono signal of each track; missing
// or short inputs are zero-padded.
//
// Automation is applied once at the block start. Tracks run in routing
// order so track sends arrive before the receiving track is processed. A
// track's main output goes, post-fader and panned, to its bus or else to
// master; routes are additional sends. Sidechained compressors are keyed
// from the dry input of the source track, and their detector filters follow
// the active sidechain config.
func (s *Session) RenderBlock(start float64, inputs map[string][]float64) Output {
	n := s.cfg.BlockSize
	m := &s.mix

	s.applyAutomation(start)

	order, acyclic := s.routes.Order(s.order)
	if !acyclic {
		s.log.Warn("session: routing graph has a cycle, affected tracks render without their track sends")
	}

	m.tmp = core.EnsureLen(m.tmp, n)
	m.master.l = core.EnsureLen(m.master.l, n)
	m.master.r = core.EnsureLen(m.master.r, n)
	core.Zero(m.master.l)
	core.Zero(m.master.r)

	for _, id := range order {
		core.CopyInto(m.buffer(&m.dry, id, n), inputs[id])
		m.buffer(&m.sends, id, n)
	}

	for id := range m.buses {
		if _, ok := s.buses.Bus(id); !ok {
			delete(m.buses, id)
		}
	}

	for _, b := range s.buses.Buses() {
		m.bus(b.ID, n)
	}

	anySolo := false

	for _, t := range s.tracks {
		anySolo = anySolo || t.Soloed
	}

	for _, id := range order {
		t := s.tracks[id]

		pre := m.buffer(&m.pre, id, n)
		copy(pre, m.dry[id])
		vecmath.AddBlockInPlace(pre, m.sends[id])

		if c, ok := s.plugins.ChainForTrack(id); ok {
			sc, keyed := s.sidechains.GetSidechainSource(id)
			s.configureDetectors(c, sc, keyed)

			if keyed && m.dry[sc.SourceTrackID] != nil {
				c.ProcessWithSidechain(pre, m.dry[sc.SourceTrackID])
			} else {
				c.Process(pre)
			}
		}

		gain := s.trackGain(t, anySolo)

		post := m.buffer(&m.post, id, n)
		copy(post, pre)
		vecmath.ScaleBlockInPlace(post, gain)

		if tm := s.meters[id]; tm != nil {
			tm.Process(post)
		}

		if b, ok := s.buses.BusForTrack(id); ok {
			m.buses[b.ID].addPanned(post, m.tmp, 1, t.Pan)
		} else {
			m.master.addPanned(post, m.tmp, 1, t.Pan)
		}

		for _, d := range s.routes.RoutesForTrack(id) {
			src := post
			if d.PreFader {
				src = pre
			}

			s.send(id, d, src)
		}
	}

	for _, b := range s.buses.Buses() {
		if !s.buses.Audible(b.ID) {
			continue
		}

		bl, br := balanceGains(b.Pan)
		g := b.Gain()
		st := m.buses[b.ID]

		addScaled(m.master.l, st.l, m.tmp, g*bl)
		addScaled(m.master.r, st.r, m.tmp, g*br)
	}

	s.masterMeter[0].Process(m.master.l)
	s.masterMeter[1].Process(m.master.r)
	s.loudness.Process(m.master.l, m.master.r)

	out := Output{Left: make([]float64, n), Right: make([]float64, n)}
	copy(out.Left, m.master.l)
	copy(out.Right, m.master.r)

	return out
}

func (s *Session) send(from string, d routing.Destination, src []float64) {
	m := &s.mix

	switch d.Type {
	case routing.ToTrack:
		dst, ok := m.sends[d.DestinationID]
		if !ok {
			return
		}

		addScaled(dst, src, m.tmp, d.Level)
	case routing.ToBus:
		st, ok := m.buses[d.DestinationID]
		if !ok {
			s.log.Debug("session: send to missing bus dropped", "from", from, "bus", d.DestinationID)
			return
		}

		st.addPanned(src, m.tmp, d.Level, d.Pan)
	case routing.ToMaster:
		m.master.addPanned(src, m.tmp, d.Level, d.Pan)
	}
}

// Render renders duration seconds offline in block-sized steps and returns
// the stereo master. inputs are whole-signal dry track inputs.
func (s *Session) Render(duration float64, inputs map[string][]float64) Output {
	pc := s.processorConfig()

	total := pc.Samples(duration)
	if total <= 0 {
		return Output{}
	}

	out := Output{Left: make([]float64, total), Right: make([]float64, total)}
	block := make(map[string][]float64, len(inputs))

	for off := 0; off < total; off += s.cfg.BlockSize {
		for id, in := range inputs {
			lo := min(off, len(in))
			hi := min(off+s.cfg.BlockSize, len(in))
			block[id] = in[lo:hi]
		}

		o := s.RenderBlock(pc.Seconds(off), block)
		copy(out.Left[off:], o.Left)
		copy(out.Right[off:], o.Right)
	}

	return out
}

// TrackMeter returns the last post-fader reading of a track.
func (s *Session) TrackMeter(id string) (meter.Reading, bool) {
	tm, ok := s.meters[id]
	if !ok {
		return meter.Reading{}, false
	}

	return tm.Reading(), true
}

// MasterMeter returns the last readings of the left and right master
// channels.
func (s *Session) MasterMeter() (left, right meter.Reading) {
	return s.masterMeter[0].Reading(), s.masterMeter[1].Reading()
}

// MasterClipped reports whether either master channel has exceeded full
// scale since the last ResetMeters.
func (s *Session) MasterClipped() bool {
	return s.masterMeter[0].Clipped() || s.masterMeter[1].Clipped()
}

// ResetMeters clears every track and master meter.
func (s *Session) ResetMeters() {
	for _, m := range s.meters {
		m.Reset()
	}

	s.masterMeter[0].Reset()
	s.masterMeter[1].Reset()
	s.loudness.Reset()
}

// Loudness is the master loudness in LUFS.
type Loudness struct {
	Momentary  float64 `json:"momentary"`
	ShortTerm  float64 `json:"shortTerm"`
	Integrated float64 `json:"integrated"`
}

// MasterLoudness returns the loudness of the master since the last
// ResetMeters.
func (s *Session) MasterLoudness() Loudness {
	return Loudness{
		Momentary:  s.loudness.Momentary(),
		ShortTerm:  s.loudness.ShortTerm(),
		Integrated: s.loudness.Integrated(),
	}
}
