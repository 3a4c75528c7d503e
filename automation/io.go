package automation

import (
	"encoding/json"
	"fmt"
)

// document is the JSON exchange form of one curve.
type document struct {
	Parameter string  `json:"parameter"`
	Mode      Mode    `json:"mode"`
	Points    []Point `json:"points"`
}

// trackDocument bundles every curve of one track.
type trackDocument struct {
	TrackID string     `json:"trackId"`
	Curves  []document `json:"curves"`
}

func toDocument(c Curve) document {
	pts := c.Points
	if pts == nil {
		pts = []Point{}
	}

	return document{Parameter: c.Parameter, Mode: c.Mode, Points: pts}
}

// MarshalCurve encodes c in the exchange format
// {parameter, mode, points: [{time, value, curveType}]}.
func MarshalCurve(c Curve) ([]byte, error) {
	return json.Marshal(toDocument(c))
}

// UnmarshalCurve decodes and validates one exchange document. The returned
// curve has no ID or track; points are sorted and clamped.
func UnmarshalCurve(data []byte) (Curve, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Curve{}, fmt.Errorf("%w: %w", ErrMalformedAutomation, err)
	}

	return fromDocument(doc)
}

func fromDocument(doc document) (Curve, error) {
	if doc.Parameter == "" {
		return Curve{}, fmt.Errorf("%w: missing parameter", ErrMalformedAutomation)
	}

	if doc.Mode == "" {
		doc.Mode = ModeRead
	}

	if !doc.Mode.Valid() {
		return Curve{}, fmt.Errorf("%w: %w: %q", ErrMalformedAutomation, ErrUnknownMode, doc.Mode)
	}

	for i, p := range doc.Points {
		if p.CurveType != "" && !p.CurveType.Valid() {
			return Curve{}, fmt.Errorf("%w: point %d: unknown curve type %q", ErrMalformedAutomation, i, p.CurveType)
		}
	}

	return Curve{
		Parameter: doc.Parameter,
		Mode:      doc.Mode,
		Points:    normalizePoints(doc.Points),
	}, nil
}

// ExportCurve returns the exchange document of one curve.
func (r *Recorder) ExportCurve(trackID, parameter string) ([]byte, error) {
	c, ok := r.Curve(trackID, parameter)
	if !ok {
		return nil, fmt.Errorf("automation: no curve for track %q parameter %q", trackID, parameter)
	}

	return MarshalCurve(c)
}

// ImportCurve replaces the curve named in data on trackID wholesale. On
// malformed input the error is logged and returned and the recorder is left
// unchanged.
func (r *Recorder) ImportCurve(trackID string, data []byte) (Curve, error) {
	c, err := UnmarshalCurve(data)
	if err != nil {
		r.log.Warn("automation import rejected", "track", trackID, "error", err)
		return Curve{}, err
	}

	c.TrackID = trackID

	return r.replace(c), nil
}

// ExportTrack encodes every curve of a track.
func (r *Recorder) ExportTrack(trackID string) ([]byte, error) {
	doc := trackDocument{TrackID: trackID, Curves: []document{}}
	for _, c := range r.GetTrackAutomation(trackID) {
		doc.Curves = append(doc.Curves, toDocument(c))
	}

	return json.Marshal(doc)
}

// ImportTrack replaces the curves named in data on trackID. The whole
// document is validated before any curve is installed. It returns the
// number of curves imported.
func (r *Recorder) ImportTrack(trackID string, data []byte) (int, error) {
	var doc trackDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		err = fmt.Errorf("%w: %w", ErrMalformedAutomation, err)
		r.log.Warn("automation track import rejected", "track", trackID, "error", err)

		return 0, err
	}

	curves := make([]Curve, 0, len(doc.Curves))
	for i, d := range doc.Curves {
		c, err := fromDocument(d)
		if err != nil {
			err = fmt.Errorf("curve %d: %w", i, err)
			r.log.Warn("automation track import rejected", "track", trackID, "error", err)

			return 0, err
		}

		c.TrackID = trackID
		curves = append(curves, c)
	}

	for _, c := range curves {
		r.replace(c)
	}

	return len(curves), nil
}
