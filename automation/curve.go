package automation

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/cwbudde/algo-daw/dsp/core"
)

var (
	// ErrUnknownMode is returned for a mode name outside off/read/write/touch/latch.
	ErrUnknownMode = errors.New("automation: unknown mode")
	// ErrMalformedAutomation is returned when an automation document cannot be decoded.
	ErrMalformedAutomation = errors.New("automation: malformed automation data")
)

// Mode is the automation mode of a curve.
type Mode string

const (
	ModeOff   Mode = "off"
	ModeRead  Mode = "read"
	ModeWrite Mode = "write"
	ModeTouch Mode = "touch"
	ModeLatch Mode = "latch"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeOff, ModeRead, ModeWrite, ModeTouch, ModeLatch:
		return true
	default:
		return false
	}
}

// ParseMode returns the mode named s.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}

	return m, nil
}

// Captures reports whether m records live values (write, touch or latch).
func (m Mode) Captures() bool {
	return m == ModeWrite || m == ModeTouch || m == ModeLatch
}

// CurveType selects the interpolation shape of the segment ending at a point.
type CurveType string

const (
	Linear CurveType = "linear"
	// Exponential eases out: fast start, slow finish.
	Exponential CurveType = "exponential"
	// Logarithmic eases in: slow start, fast finish.
	Logarithmic CurveType = "logarithmic"
)

// Valid reports whether c is a known curve type.
func (c CurveType) Valid() bool {
	return c == Linear || c == Exponential || c == Logarithmic
}

// Point is one automation breakpoint.
type Point struct {
	Time      float64   `json:"time" yaml:"time"`
	Value     float64   `json:"value" yaml:"value"`
	CurveType CurveType `json:"curveType" yaml:"curveType"`
}

// Curve is the automation lane of one (track, parameter) pair.
// Points are sorted ascending by Time with at most one point per time.
type Curve struct {
	ID        string
	TrackID   string
	Parameter string
	Points    []Point
	Mode      Mode
	Recording bool
}

// clone returns a copy that shares no point storage with c.
func (c Curve) clone() Curve {
	c.Points = slices.Clone(c.Points)

	return c
}

// ValueAt returns the interpolated curve value at time t. It reports false
// for a curve without points.
//
// Before the first point the first value is held, after the last point the
// last value is held. Between two points the segment shape is taken from
// the later point's CurveType.
func (c Curve) ValueAt(t float64) (float64, bool) {
	return valueAt(c.Points, t)
}

func valueAt(points []Point, t float64) (float64, bool) {
	n := len(points)
	if n == 0 {
		return 0, false
	}

	idx := sort.Search(n, func(i int) bool { return points[i].Time >= t })

	switch idx {
	case 0:
		return points[0].Value, true
	case n:
		return points[n-1].Value, true
	}

	p1, p2 := points[idx-1], points[idx]

	dt := p2.Time - p1.Time
	if dt == 0 {
		return p1.Value, true
	}

	frac := core.Clamp01((t - p1.Time) / dt)

	return interpolate(p1.Value, p2.Value, frac, p2.CurveType), true
}

func interpolate(v1, v2, t float64, shape CurveType) float64 {
	switch shape {
	case Exponential:
		return v1 + (v2-v1)*(1-(1-t)*(1-t))
	case Logarithmic:
		return v1 + (v2-v1)*t*t
	default:
		return v1 + (v2-v1)*t
	}
}

// UpdatePoint returns a curve with p inserted in time order, replacing any
// point at exactly the same time. The value is clamped to [0, 1] and a
// negative time to 0.
func (c Curve) UpdatePoint(p Point) Curve {
	out := c.clone()
	out.Points = insertPoint(out.Points, normalizePoint(p))

	return out
}

// RemovePoint returns a curve without the point at time t.
func (c Curve) RemovePoint(t float64) Curve {
	out := c.clone()
	out.Points = slices.DeleteFunc(out.Points, func(p Point) bool { return p.Time == t })

	return out
}

// ShiftPoints returns a curve with every point moved by offset seconds.
// Times are clamped at 0; when clamping makes times collide the point that
// was originally later wins.
func (c Curve) ShiftPoints(offset float64) Curve {
	out := c.clone()

	shifted := make([]Point, 0, len(out.Points))
	for _, p := range out.Points {
		p.Time = math.Max(0, p.Time+offset)
		shifted = insertPoint(shifted, p)
	}

	out.Points = shifted

	return out
}

// ScaleValues returns a curve whose values are linearly remapped from their
// current range onto [lo, hi] (both clamped to [0, 1]). If every point has
// the same value, all of them map to the midpoint of [lo, hi].
func (c Curve) ScaleValues(lo, hi float64) Curve {
	out := c.clone()
	if len(out.Points) == 0 {
		return out
	}

	lo, hi = core.Clamp01(lo), core.Clamp01(hi)

	vmin, vmax := out.Points[0].Value, out.Points[0].Value
	for _, p := range out.Points[1:] {
		vmin = math.Min(vmin, p.Value)
		vmax = math.Max(vmax, p.Value)
	}

	for i := range out.Points {
		if vmax == vmin {
			out.Points[i].Value = (lo + hi) / 2
			continue
		}

		t := (out.Points[i].Value - vmin) / (vmax - vmin)
		out.Points[i].Value = core.Clamp01(core.Lerp(lo, hi, t))
	}

	return out
}

// Duplicate returns a copy of the curve under a new ID. The copy is never
// recording.
func (c Curve) Duplicate(newID string) Curve {
	out := c.clone()
	out.ID = newID
	out.Recording = false

	return out
}

// PointCount returns the number of points.
func (c Curve) PointCount() int {
	return len(c.Points)
}

func normalizePoint(p Point) Point {
	if math.IsNaN(p.Time) || p.Time < 0 {
		p.Time = 0
	}

	p.Value = core.Clamp01(p.Value)

	if !p.CurveType.Valid() {
		p.CurveType = Linear
	}

	return p
}

// insertPoint inserts p into sorted points, replacing a point at the same time.
func insertPoint(points []Point, p Point) []Point {
	idx, found := slices.BinarySearchFunc(points, p.Time, func(e Point, t float64) int {
		switch {
		case e.Time < t:
			return -1
		case e.Time > t:
			return 1
		default:
			return 0
		}
	})

	if found {
		points[idx] = p
		return points
	}

	return slices.Insert(points, idx, p)
}

// normalizePoints sorts, clamps and de-duplicates points; for duplicate
// times the later entry in the input wins.
func normalizePoints(points []Point) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		out = insertPoint(out, normalizePoint(p))
	}

	return out
}
