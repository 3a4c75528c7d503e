package routing

import (
	"cmp"
	"math"
	"slices"

	"github.com/cwbudde/algo-daw/dsp/core"
)

// DestinationType names the kind of node a route ends at.
type DestinationType string

const (
	ToTrack  DestinationType = "track"
	ToBus    DestinationType = "bus"
	ToMaster DestinationType = "master"
)

// Valid reports whether d is a known destination type.
func (d DestinationType) Valid() bool {
	return d == ToTrack || d == ToBus || d == ToMaster
}

// MaxSendLevel is the upper bound of a route level (linear, +6 dB).
const MaxSendLevel = 2.0

// Destination is one outgoing edge of a track.
type Destination struct {
	Type          DestinationType `json:"type"`
	DestinationID string          `json:"destinationId"`
	Level         float64         `json:"level"`
	Pan           float64         `json:"pan"`
	PreFader      bool            `json:"preFader"`
}

func (d Destination) sameTarget(o Destination) bool {
	return d.Type == o.Type && d.DestinationID == o.DestinationID
}

func (d Destination) normalized() Destination {
	if math.IsNaN(d.Level) {
		d.Level = 0
	}

	d.Level = core.Clamp(d.Level, 0, MaxSendLevel)
	d.Pan = core.Clamp(d.Pan, -1, 1)

	return d
}

// Engine maps source tracks to ordered sets of destinations.
//
// Engine does not reject cyclic track-to-track edges by itself; callers
// check WouldCreateCycle before committing one.
type Engine struct {
	settings

	routes map[string][]Destination
}

// NewEngine returns an engine without routes.
func NewEngine(opts ...Option) *Engine {
	return &Engine{
		settings: applyOptions(opts),
		routes:   make(map[string][]Destination),
	}
}

// AddRoute appends d to the destinations of fromTrackID. Level and pan are
// clamped. It reports false for an invalid destination or when the source
// already routes to the same (type, id) pair.
func (e *Engine) AddRoute(fromTrackID string, d Destination) bool {
	if fromTrackID == "" || !d.Type.Valid() || (d.Type != ToMaster && d.DestinationID == "") {
		e.log.Warn("routing: invalid route", "from", fromTrackID, "type", d.Type, "to", d.DestinationID)
		return false
	}

	for _, existing := range e.routes[fromTrackID] {
		if existing.sameTarget(d) {
			e.log.Warn("routing: duplicate route rejected", "from", fromTrackID, "type", d.Type, "to", d.DestinationID)
			return false
		}
	}

	e.routes[fromTrackID] = append(e.routes[fromTrackID], d.normalized())

	return true
}

// UpdateRoute replaces level, pan and pre-fader state of the existing route
// to d's (type, id) pair.
func (e *Engine) UpdateRoute(fromTrackID string, d Destination) bool {
	dests := e.routes[fromTrackID]
	for i := range dests {
		if dests[i].sameTarget(d) {
			dests[i] = d.normalized()
			return true
		}
	}

	return false
}

// RemoveRoute deletes the route from fromTrackID to (typ, destinationID).
func (e *Engine) RemoveRoute(fromTrackID string, typ DestinationType, destinationID string) bool {
	dests := e.routes[fromTrackID]
	target := Destination{Type: typ, DestinationID: destinationID}

	i := slices.IndexFunc(dests, target.sameTarget)
	if i < 0 {
		return false
	}

	dests = slices.Delete(dests, i, i+1)
	if len(dests) == 0 {
		delete(e.routes, fromTrackID)
	} else {
		e.routes[fromTrackID] = dests
	}

	return true
}

// RoutesForTrack returns the destinations of trackID in insertion order.
func (e *Engine) RoutesForTrack(trackID string) []Destination {
	return slices.Clone(e.routes[trackID])
}

// Sources returns every track with at least one route, sorted.
func (e *Engine) Sources() []string {
	out := make([]string, 0, len(e.routes))
	for id := range e.routes {
		out = append(out, id)
	}

	slices.Sort(out)

	return out
}

// RemoveTrack deletes the routes of trackID and every track route that
// ends at it.
func (e *Engine) RemoveTrack(trackID string) {
	delete(e.routes, trackID)

	for from, dests := range e.routes {
		dests = slices.DeleteFunc(dests, func(d Destination) bool {
			return d.Type == ToTrack && d.DestinationID == trackID
		})

		if len(dests) == 0 {
			delete(e.routes, from)
		} else {
			e.routes[from] = dests
		}
	}
}

// RemoveBus deletes every route that ends at busID.
func (e *Engine) RemoveBus(busID string) {
	for from, dests := range e.routes {
		dests = slices.DeleteFunc(dests, func(d Destination) bool {
			return d.Type == ToBus && d.DestinationID == busID
		})

		if len(dests) == 0 {
			delete(e.routes, from)
		} else {
			e.routes[from] = dests
		}
	}
}

// WouldCreateCycle reports whether adding the edge fromTrackID → toTrackID
// would close a cycle, that is whether fromTrackID is reachable from
// toTrackID over track destinations. A self-edge is always a cycle.
func (e *Engine) WouldCreateCycle(fromTrackID, toTrackID string) bool {
	if fromTrackID == toTrackID {
		return true
	}

	visited := map[string]bool{toTrackID: true}
	stack := []string{toTrackID}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, d := range e.routes[id] {
			if d.Type != ToTrack {
				continue
			}

			if d.DestinationID == fromTrackID {
				return true
			}

			if !visited[d.DestinationID] {
				visited[d.DestinationID] = true
				stack = append(stack, d.DestinationID)
			}
		}
	}

	return false
}

// Order returns trackIDs in an order where every track comes after all
// tracks that send to it. Ties keep the input order. If the track edges
// among trackIDs contain a cycle, the tracks on it are appended in input
// order and ok is false.
func (e *Engine) Order(trackIDs []string) (order []string, ok bool) {
	pos := make(map[string]int, len(trackIDs))
	for i, id := range trackIDs {
		pos[id] = i
	}

	indegree := make(map[string]int, len(trackIDs))
	outgoing := make(map[string][]string, len(trackIDs))

	for _, from := range trackIDs {
		for _, d := range e.routes[from] {
			if d.Type != ToTrack {
				continue
			}

			if _, known := pos[d.DestinationID]; !known || d.DestinationID == from {
				continue
			}

			outgoing[from] = append(outgoing[from], d.DestinationID)
			indegree[d.DestinationID]++
		}
	}

	ready := make([]string, 0, len(trackIDs))

	for _, id := range trackIDs {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	byInput := func(a, b string) int { return cmp.Compare(pos[a], pos[b]) }
	done := make(map[string]bool, len(trackIDs))
	order = make([]string, 0, len(trackIDs))

	for len(ready) > 0 {
		slices.SortFunc(ready, byInput)

		id := ready[0]
		ready = ready[1:]

		order = append(order, id)
		done[id] = true

		for _, to := range outgoing[id] {
			indegree[to]--
			if indegree[to] == 0 {
				ready = append(ready, to)
			}
		}
	}

	if len(order) == len(trackIDs) {
		return order, true
	}

	for _, id := range trackIDs {
		if !done[id] {
			order = append(order, id)
		}
	}

	return order, false
}
