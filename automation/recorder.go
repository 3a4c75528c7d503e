package automation

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/cwbudde/algo-daw/dsp/core"
	"github.com/cwbudde/algo-daw/idgen"
)

// DefaultMinimumInterval is the default minimum curve-time gap, in seconds,
// between two captured points.
const DefaultMinimumInterval = 0.02

type curveKey struct {
	trackID   string
	parameter string
}

// capture is an in-progress recording pass.
type capture struct {
	points []Point
}

// Stats summarizes the recorder contents.
type Stats struct {
	TotalCurves     int
	RecordingCurves int
	TotalPoints     int
	ByMode          map[Mode]int
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithMinimumInterval sets the minimum capture interval in seconds.
// Negative values are treated as 0.
func WithMinimumInterval(seconds float64) Option {
	return func(r *Recorder) {
		r.minInterval = max(0, seconds)
	}
}

// WithIDSource sets the curve ID source.
func WithIDSource(src idgen.Source) Option {
	return func(r *Recorder) {
		if src != nil {
			r.ids = src
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Recorder) {
		if l != nil {
			r.log = l
		}
	}
}

// Recorder owns every automation curve, keyed by (track, parameter), and
// runs the per-curve record/playback state machine.
//
// Recorder is not safe for concurrent use; it is driven from the single
// engine thread.
type Recorder struct {
	curves   map[curveKey]*Curve
	captures map[curveKey]*capture

	minInterval float64
	ids         idgen.Source
	log         *slog.Logger
}

// NewRecorder returns an empty recorder.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		curves:      make(map[curveKey]*Curve),
		captures:    make(map[curveKey]*capture),
		minInterval: DefaultMinimumInterval,
		ids:         idgen.NewUUID(),
		log:         slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// MinimumInterval returns the capture interval in seconds.
func (r *Recorder) MinimumInterval() float64 {
	return r.minInterval
}

func (r *Recorder) ensureCurve(k curveKey) *Curve {
	c := r.curves[k]
	if c != nil {
		return c
	}

	c = &Curve{
		ID:        r.ids.Next("curve"),
		TrackID:   k.trackID,
		Parameter: k.parameter,
		Mode:      ModeRead,
	}
	r.curves[k] = c

	r.log.Debug("automation curve created", "curve", c.ID, "track", k.trackID, "parameter", k.parameter)

	return c
}

// StartRecording begins a capture pass in mode (write, touch or latch),
// creating the curve on first use. An active pass on the same key is
// finalized first. It reports false for a non-capturing mode.
func (r *Recorder) StartRecording(trackID, parameter string, mode Mode) bool {
	if !mode.Captures() {
		r.log.Warn("automation: start recording ignored, mode does not capture",
			"track", trackID, "parameter", parameter, "mode", mode)

		return false
	}

	k := curveKey{trackID, parameter}
	if r.captures[k] != nil {
		r.finalize(k, ModeRead)
	}

	c := r.ensureCurve(k)
	c.Mode = mode
	c.Recording = true
	r.captures[k] = &capture{}

	return true
}

// StopRecording merges the captured points into the curve, then switches it
// to read mode. Without an active pass it does nothing.
func (r *Recorder) StopRecording(trackID, parameter string) {
	k := curveKey{trackID, parameter}
	if r.captures[k] == nil {
		return
	}

	r.finalize(k, ModeRead)
}

// StopAll finalizes every active capture pass.
func (r *Recorder) StopAll() {
	for k := range r.captures {
		r.finalize(k, ModeRead)
	}
}

// finalize merges the capture buffer of k into its curve and leaves the
// curve in mode.
func (r *Recorder) finalize(k curveKey, mode Mode) {
	cp := r.captures[k]
	delete(r.captures, k)

	c := r.curves[k]
	if c == nil {
		return
	}

	if cp != nil {
		for _, p := range cp.points {
			c.Points = insertPoint(c.Points, p)
		}
	}

	c.Recording = false
	c.Mode = mode

	r.log.Debug("automation capture finalized",
		"curve", c.ID, "captured", pointsLen(cp), "points", len(c.Points), "mode", mode)
}

func pointsLen(cp *capture) int {
	if cp == nil {
		return 0
	}

	return len(cp.points)
}

// IsRecording reports whether a capture pass is active for the key.
func (r *Recorder) IsRecording(trackID, parameter string) bool {
	return r.captures[curveKey{trackID, parameter}] != nil
}

// RecordValue captures value at curve time t for an active pass. The value
// is clamped to [0, 1]. A point is appended only when at least the minimum
// interval has passed since the previously captured point; it reports
// whether a point was appended.
func (r *Recorder) RecordValue(trackID, parameter string, value, t float64) bool {
	k := curveKey{trackID, parameter}

	cp := r.captures[k]
	if cp == nil {
		return false
	}

	c := r.curves[k]
	if c == nil || !c.Mode.Captures() {
		return false
	}

	if t < 0 {
		t = 0
	}

	if n := len(cp.points); n > 0 && t-cp.points[n-1].Time < r.minInterval {
		return false
	}

	cp.points = append(cp.points, Point{Time: t, Value: core.Clamp01(value), CurveType: Linear})

	return true
}

// SetAutomationMode changes the mode of a curve, creating it on first use.
// Leaving capture for off or read finalizes an active pass. Switching
// between capturing modes keeps the pass running. Unknown modes are
// rejected.
func (r *Recorder) SetAutomationMode(trackID, parameter string, mode Mode) bool {
	if !mode.Valid() {
		r.log.Warn("automation: unknown mode", "track", trackID, "parameter", parameter, "mode", mode)
		return false
	}

	k := curveKey{trackID, parameter}
	c := r.ensureCurve(k)

	if r.captures[k] != nil && !mode.Captures() {
		r.finalize(k, mode)
		return true
	}

	c.Mode = mode

	return true
}

// GetPlaybackValue returns the curve value at time t. It reports false when
// no curve exists, the curve is off, or it has no points.
func (r *Recorder) GetPlaybackValue(trackID, parameter string, t float64) (float64, bool) {
	c := r.curves[curveKey{trackID, parameter}]
	if c == nil || c.Mode == ModeOff {
		return 0, false
	}

	return c.ValueAt(t)
}

// Curve returns a copy of the curve for the key.
func (r *Recorder) Curve(trackID, parameter string) (Curve, bool) {
	c := r.curves[curveKey{trackID, parameter}]
	if c == nil {
		return Curve{}, false
	}

	return c.clone(), true
}

// CapturedPoints returns a copy of the in-progress capture buffer.
func (r *Recorder) CapturedPoints(trackID, parameter string) []Point {
	cp := r.captures[curveKey{trackID, parameter}]
	if cp == nil {
		return nil
	}

	return slices.Clone(cp.points)
}

// Edit applies a pure curve edit (UpdatePoint, ShiftPoints, ...) and stores
// the resulting points. Identity, mode and recording state are kept. It
// reports false when the curve does not exist.
func (r *Recorder) Edit(trackID, parameter string, edit func(Curve) Curve) bool {
	c := r.curves[curveKey{trackID, parameter}]
	if c == nil {
		return false
	}

	c.Points = normalizePoints(edit(c.clone()).Points)

	return true
}

// GetTrackAutomation returns copies of every curve on a track, sorted by
// parameter name.
func (r *Recorder) GetTrackAutomation(trackID string) []Curve {
	var out []Curve

	for k, c := range r.curves {
		if k.trackID == trackID {
			out = append(out, c.clone())
		}
	}

	slices.SortFunc(out, func(a, b Curve) int { return cmp.Compare(a.Parameter, b.Parameter) })

	return out
}

// Curves returns copies of all curves sorted by track, then parameter.
func (r *Recorder) Curves() []Curve {
	out := make([]Curve, 0, len(r.curves))
	for _, c := range r.curves {
		out = append(out, c.clone())
	}

	slices.SortFunc(out, func(a, b Curve) int {
		return cmp.Or(cmp.Compare(a.TrackID, b.TrackID), cmp.Compare(a.Parameter, b.Parameter))
	})

	return out
}

// GetAutomationStats summarizes the recorder.
func (r *Recorder) GetAutomationStats() Stats {
	s := Stats{ByMode: make(map[Mode]int)}

	for _, c := range r.curves {
		s.TotalCurves++
		s.TotalPoints += len(c.Points)
		s.ByMode[c.Mode]++

		if c.Recording {
			s.RecordingCurves++
		}
	}

	return s
}

// DeleteCurve removes a curve and discards any active capture for it.
func (r *Recorder) DeleteCurve(trackID, parameter string) bool {
	k := curveKey{trackID, parameter}
	if r.curves[k] == nil {
		return false
	}

	delete(r.curves, k)
	delete(r.captures, k)

	return true
}

// ClearTrack deletes every curve of a track and returns how many were removed.
func (r *Recorder) ClearTrack(trackID string) int {
	n := 0

	for k := range r.curves {
		if k.trackID == trackID {
			delete(r.curves, k)
			delete(r.captures, k)
			n++
		}
	}

	return n
}

// replace installs c wholesale for its key, discarding any active capture.
// The existing curve ID is kept when there is one.
func (r *Recorder) replace(c Curve) Curve {
	k := curveKey{c.TrackID, c.Parameter}
	delete(r.captures, k)

	if old := r.curves[k]; old != nil {
		c.ID = old.ID
	} else if c.ID == "" {
		c.ID = r.ids.Next("curve")
	}

	c.Points = normalizePoints(c.Points)
	c.Recording = false

	stored := c.clone()
	r.curves[k] = &stored

	return c
}
