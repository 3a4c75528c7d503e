package routing

import (
	"slices"

	"github.com/cwbudde/algo-daw/dsp/core"
)

// Bus volume range in dB.
const (
	MinBusVolumeDB = -60.0
	MaxBusVolumeDB = 12.0
)

// Bus groups tracks under shared volume, pan, mute and solo controls.
type Bus struct {
	ID       string
	Name     string
	Color    string
	Tracks   []string
	VolumeDB float64
	Pan      float64
	Muted    bool
	Soloed   bool
}

// Gain returns the linear bus gain, 0 when muted.
func (b Bus) Gain() float64 {
	if b.Muted {
		return 0
	}

	return core.DBToLinear(b.VolumeDB)
}

// HasTrack reports whether trackID is a member.
func (b Bus) HasTrack(trackID string) bool {
	return slices.Contains(b.Tracks, trackID)
}

func (b *Bus) clone() Bus {
	out := *b
	out.Tracks = slices.Clone(b.Tracks)

	return out
}

// BusManager owns every bus of a session.
type BusManager struct {
	settings

	buses map[string]*Bus
	order []string
}

// NewBusManager returns an empty manager. Membership is exclusive unless
// WithExclusiveBusMembership(false) is passed.
func NewBusManager(opts ...Option) *BusManager {
	return &BusManager{
		settings: applyOptions(opts),
		buses:    make(map[string]*Bus),
	}
}

// CreateBus adds a bus at 0 dB, centered, unmuted.
func (m *BusManager) CreateBus(name, color string) Bus {
	b := &Bus{
		ID:    m.ids.Next("bus"),
		Name:  name,
		Color: color,
	}
	m.buses[b.ID] = b
	m.order = append(m.order, b.ID)

	m.log.Debug("routing: bus created", "bus", b.ID, "name", name)

	return b.clone()
}

// Bus returns a copy of one bus.
func (m *BusManager) Bus(id string) (Bus, bool) {
	b, ok := m.buses[id]
	if !ok {
		return Bus{}, false
	}

	return b.clone(), true
}

// Buses returns copies of every bus in creation order.
func (m *BusManager) Buses() []Bus {
	out := make([]Bus, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.buses[id].clone())
	}

	return out
}

// DeleteBus removes a bus. Its member tracks lose bus membership and are
// not reassigned.
func (m *BusManager) DeleteBus(id string) bool {
	if _, ok := m.buses[id]; !ok {
		return false
	}

	delete(m.buses, id)
	m.order = slices.DeleteFunc(m.order, func(s string) bool { return s == id })

	return true
}

// RenameBus changes the display name.
func (m *BusManager) RenameBus(id, name string) bool {
	return m.update(id, func(b *Bus) { b.Name = name })
}

// SetBusColor changes the display color.
func (m *BusManager) SetBusColor(id, color string) bool {
	return m.update(id, func(b *Bus) { b.Color = color })
}

// AddTrackToBus makes trackID a member of bus id. With exclusive
// membership the track leaves any other bus first. It reports false for an
// unknown bus or when the track already is a member.
func (m *BusManager) AddTrackToBus(id, trackID string) bool {
	b, ok := m.buses[id]
	if !ok {
		m.log.Warn("routing: unknown bus", "bus", id, "track", trackID)
		return false
	}

	if b.HasTrack(trackID) {
		return false
	}

	if m.exclusive {
		for _, other := range m.buses {
			if other != b {
				other.Tracks = slices.DeleteFunc(other.Tracks, func(s string) bool { return s == trackID })
			}
		}
	}

	b.Tracks = append(b.Tracks, trackID)

	return true
}

// RemoveTrackFromBus drops trackID from bus id.
func (m *BusManager) RemoveTrackFromBus(id, trackID string) bool {
	b, ok := m.buses[id]
	if !ok || !b.HasTrack(trackID) {
		return false
	}

	b.Tracks = slices.DeleteFunc(b.Tracks, func(s string) bool { return s == trackID })

	return true
}

// RemoveTrack drops trackID from every bus.
func (m *BusManager) RemoveTrack(trackID string) {
	for _, b := range m.buses {
		b.Tracks = slices.DeleteFunc(b.Tracks, func(s string) bool { return s == trackID })
	}
}

// BusForTrack returns the first bus, in creation order, that trackID
// belongs to.
func (m *BusManager) BusForTrack(trackID string) (Bus, bool) {
	for _, id := range m.order {
		if b := m.buses[id]; b.HasTrack(trackID) {
			return b.clone(), true
		}
	}

	return Bus{}, false
}

// BusesForTrack returns every bus trackID belongs to, in creation order.
func (m *BusManager) BusesForTrack(trackID string) []Bus {
	var out []Bus

	for _, id := range m.order {
		if b := m.buses[id]; b.HasTrack(trackID) {
			out = append(out, b.clone())
		}
	}

	return out
}

// SetBusVolume sets the bus volume in dB, clamped to
// [MinBusVolumeDB, MaxBusVolumeDB].
func (m *BusManager) SetBusVolume(id string, db float64) bool {
	return m.update(id, func(b *Bus) { b.VolumeDB = core.Clamp(db, MinBusVolumeDB, MaxBusVolumeDB) })
}

// SetBusPan sets the bus pan, clamped to [-1, 1].
func (m *BusManager) SetBusPan(id string, pan float64) bool {
	return m.update(id, func(b *Bus) { b.Pan = core.Clamp(pan, -1, 1) })
}

// SetMute mutes or unmutes a bus.
func (m *BusManager) SetMute(id string, muted bool) bool {
	return m.update(id, func(b *Bus) { b.Muted = muted })
}

// SetSolo solos or unsolos a bus.
func (m *BusManager) SetSolo(id string, soloed bool) bool {
	return m.update(id, func(b *Bus) { b.Soloed = soloed })
}

// AnySolo reports whether at least one bus is soloed.
func (m *BusManager) AnySolo() bool {
	for _, b := range m.buses {
		if b.Soloed {
			return true
		}
	}

	return false
}

// Audible reports whether bus id passes signal given the mute and solo
// state of all buses.
func (m *BusManager) Audible(id string) bool {
	b, ok := m.buses[id]
	if !ok || b.Muted {
		return false
	}

	return !m.AnySolo() || b.Soloed
}

func (m *BusManager) update(id string, fn func(*Bus)) bool {
	b, ok := m.buses[id]
	if !ok {
		m.log.Warn("routing: unknown bus", "bus", id)
		return false
	}

	fn(b)

	return true
}
