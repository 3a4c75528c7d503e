package session

import (
	"fmt"

	"github.com/cwbudde/algo-daw/routing"
)

// AddRoute commits a route from a track. Track destinations must exist and
// must not close a cycle; bus destinations must exist. It reports false,
// with a warning logged, when the route is rejected.
func (s *Session) AddRoute(fromTrackID string, d routing.Destination) bool {
	if _, ok := s.tracks[fromTrackID]; !ok {
		s.log.Warn("session: route from unknown track", "from", fromTrackID)
		return false
	}

	switch d.Type {
	case routing.ToTrack:
		if _, ok := s.tracks[d.DestinationID]; !ok {
			s.log.Warn("session: route to unknown track", "from", fromTrackID, "to", d.DestinationID)
			return false
		}

		if s.routes.WouldCreateCycle(fromTrackID, d.DestinationID) {
			s.log.Warn("session: cyclic route rejected", "from", fromTrackID, "to", d.DestinationID)
			return false
		}
	case routing.ToBus:
		if _, ok := s.buses.Bus(d.DestinationID); !ok {
			s.log.Warn("session: route to unknown bus", "from", fromTrackID, "to", d.DestinationID)
			return false
		}
	}

	return s.routes.AddRoute(fromTrackID, d)
}

// RemoveRoute deletes one route.
func (s *Session) RemoveRoute(fromTrackID string, typ routing.DestinationType, destinationID string) bool {
	return s.routes.RemoveRoute(fromTrackID, typ, destinationID)
}

// WouldCreateCycle reports whether a track route from → to would close a cycle.
func (s *Session) WouldCreateCycle(fromTrackID, toTrackID string) bool {
	return s.routes.WouldCreateCycle(fromTrackID, toTrackID)
}

// CreateBus adds a bus.
func (s *Session) CreateBus(name, color string) routing.Bus {
	return s.buses.CreateBus(name, color)
}

// DeleteBus removes a bus and every route that ends at it.
func (s *Session) DeleteBus(id string) bool {
	if !s.buses.DeleteBus(id) {
		return false
	}

	s.routes.RemoveBus(id)
	delete(s.mix.buses, id)

	return true
}

// AddTrackToBus assigns an existing track to an existing bus.
func (s *Session) AddTrackToBus(busID, trackID string) error {
	err := s.requireTrack(trackID)
	if err != nil {
		return err
	}

	if _, ok := s.buses.Bus(busID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBus, busID)
	}

	s.buses.AddTrackToBus(busID, trackID)

	return nil
}

// CreateSidechain keys the compressors on compressorTrackID from the dry
// input of sourceTrackID and configures their detector filters.
func (s *Session) CreateSidechain(compressorTrackID, sourceTrackID string, frequency float64, filter routing.FilterType) (routing.SidechainConfig, error) {
	for _, id := range []string{compressorTrackID, sourceTrackID} {
		err := s.requireTrack(id)
		if err != nil {
			return routing.SidechainConfig{}, err
		}
	}

	sc, err := s.sidechains.CreateSidechain(compressorTrackID, sourceTrackID, frequency, filter)
	if err != nil {
		return routing.SidechainConfig{}, err
	}

	s.syncDetectors(compressorTrackID)

	return sc, nil
}

// SetSidechainEnabled enables or disables a sidechain and reconfigures the
// detectors of its compressor track.
func (s *Session) SetSidechainEnabled(id string, enabled bool) bool {
	sc, ok := s.sidechains.Sidechain(id)
	if !ok || !s.sidechains.SetSidechainEnabled(id, enabled) {
		return false
	}

	s.syncDetectors(sc.CompressorTrackID)

	return true
}

// SetSidechainFilter changes the detector filter of a sidechain and
// reconfigures the detectors of its compressor track.
func (s *Session) SetSidechainFilter(id string, filter routing.FilterType, frequency float64) bool {
	sc, ok := s.sidechains.Sidechain(id)
	if !ok || !s.sidechains.SetSidechainFilter(id, filter, frequency) {
		return false
	}

	s.syncDetectors(sc.CompressorTrackID)

	return true
}

// DeleteSidechain removes a sidechain and reconfigures the detectors of its
// compressor track.
func (s *Session) DeleteSidechain(id string) bool {
	sc, ok := s.sidechains.Sidechain(id)
	if !ok {
		return false
	}

	s.sidechains.DeleteSidechain(id)
	s.syncDetectors(sc.CompressorTrackID)

	return true
}
