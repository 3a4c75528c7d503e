package routing

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/cwbudde/algo-daw/dsp/core"
)

// FilterType selects the detector filter of a sidechain.
type FilterType string

const (
	FilterNone     FilterType = "none"
	FilterLowpass  FilterType = "lowpass"
	FilterHighpass FilterType = "highpass"
	FilterBandpass FilterType = "bandpass"
)

// Valid reports whether f is a known filter type.
func (f FilterType) Valid() bool {
	switch f {
	case FilterNone, FilterLowpass, FilterHighpass, FilterBandpass:
		return true
	default:
		return false
	}
}

// Sidechain detector frequency range in Hz.
const (
	MinSidechainFrequency = 20.0
	MaxSidechainFrequency = 20000.0
)

// ErrSelfSidechain is returned when a track is keyed from itself.
var ErrSelfSidechain = errors.New("routing: sidechain source equals compressor track")

// SidechainConfig keys the compressor on CompressorTrackID from the signal
// of SourceTrackID.
type SidechainConfig struct {
	ID                string     `json:"id"`
	CompressorTrackID string     `json:"compressorTrackId"`
	SourceTrackID     string     `json:"sourceTrackId"`
	Frequency         float64    `json:"frequency"`
	FilterType        FilterType `json:"filterType"`
	Enabled           bool       `json:"enabled"`
}

// SidechainRegistry holds sidechain configs. At most one config per
// compressor track is enabled: enabling one disables its siblings.
type SidechainRegistry struct {
	settings

	configs map[string]*SidechainConfig
	order   []string
}

// NewSidechainRegistry returns an empty registry.
func NewSidechainRegistry(opts ...Option) *SidechainRegistry {
	return &SidechainRegistry{
		settings: applyOptions(opts),
		configs:  make(map[string]*SidechainConfig),
	}
}

// CreateSidechain adds an enabled config, disabling any other config of the
// same compressor track. The frequency is clamped to
// [MinSidechainFrequency, MaxSidechainFrequency]; an unknown filter type
// becomes FilterNone.
func (r *SidechainRegistry) CreateSidechain(compressorTrackID, sourceTrackID string, frequency float64, filter FilterType) (SidechainConfig, error) {
	if compressorTrackID == "" || sourceTrackID == "" {
		return SidechainConfig{}, fmt.Errorf("routing: sidechain needs compressor and source tracks (%q, %q)", compressorTrackID, sourceTrackID)
	}

	if compressorTrackID == sourceTrackID {
		r.log.Warn("routing: self sidechain rejected", "track", compressorTrackID)
		return SidechainConfig{}, ErrSelfSidechain
	}

	if !filter.Valid() {
		r.log.Warn("routing: unknown sidechain filter, using none", "filter", filter)
		filter = FilterNone
	}

	if math.IsNaN(frequency) {
		frequency = MinSidechainFrequency
	}

	c := &SidechainConfig{
		ID:                r.ids.Next("sidechain"),
		CompressorTrackID: compressorTrackID,
		SourceTrackID:     sourceTrackID,
		Frequency:         core.Clamp(frequency, MinSidechainFrequency, MaxSidechainFrequency),
		FilterType:        filter,
	}

	r.configs[c.ID] = c
	r.order = append(r.order, c.ID)
	r.enable(c)

	r.log.Debug("routing: sidechain created", "sidechain", c.ID, "compressor", compressorTrackID, "source", sourceTrackID)

	return *c, nil
}

func (r *SidechainRegistry) enable(c *SidechainConfig) {
	for _, other := range r.configs {
		if other.CompressorTrackID == c.CompressorTrackID {
			other.Enabled = false
		}
	}

	c.Enabled = true
}

// Sidechain returns one config by ID.
func (r *SidechainRegistry) Sidechain(id string) (SidechainConfig, bool) {
	c, ok := r.configs[id]
	if !ok {
		return SidechainConfig{}, false
	}

	return *c, true
}

// SetSidechainEnabled enables or disables a config.
func (r *SidechainRegistry) SetSidechainEnabled(id string, enabled bool) bool {
	c, ok := r.configs[id]
	if !ok {
		r.log.Warn("routing: unknown sidechain", "sidechain", id)
		return false
	}

	if enabled {
		r.enable(c)
	} else {
		c.Enabled = false
	}

	return true
}

// SetSidechainFilter changes the detector filter of a config.
func (r *SidechainRegistry) SetSidechainFilter(id string, filter FilterType, frequency float64) bool {
	c, ok := r.configs[id]
	if !ok || !filter.Valid() || math.IsNaN(frequency) {
		return false
	}

	c.FilterType = filter
	c.Frequency = core.Clamp(frequency, MinSidechainFrequency, MaxSidechainFrequency)

	return true
}

// GetSidechainSource returns the enabled config of a compressor track.
func (r *SidechainRegistry) GetSidechainSource(compressorTrackID string) (SidechainConfig, bool) {
	for _, id := range r.order {
		if c := r.configs[id]; c.CompressorTrackID == compressorTrackID && c.Enabled {
			return *c, true
		}
	}

	return SidechainConfig{}, false
}

// HasActiveSidechain reports whether the compressor track has an enabled config.
func (r *SidechainRegistry) HasActiveSidechain(compressorTrackID string) bool {
	_, ok := r.GetSidechainSource(compressorTrackID)

	return ok
}

// SidechainsFor returns every config of a compressor track in creation order.
func (r *SidechainRegistry) SidechainsFor(compressorTrackID string) []SidechainConfig {
	var out []SidechainConfig

	for _, id := range r.order {
		if c := r.configs[id]; c.CompressorTrackID == compressorTrackID {
			out = append(out, *c)
		}
	}

	return out
}

// Sidechains returns every config in creation order.
func (r *SidechainRegistry) Sidechains() []SidechainConfig {
	out := make([]SidechainConfig, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.configs[id])
	}

	return out
}

// DeleteSidechain removes one config.
func (r *SidechainRegistry) DeleteSidechain(id string) bool {
	if _, ok := r.configs[id]; !ok {
		return false
	}

	delete(r.configs, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })

	return true
}

// RemoveTrack deletes every config that keys on or from trackID and returns
// how many were removed.
func (r *SidechainRegistry) RemoveTrack(trackID string) int {
	n := 0

	for _, id := range slices.Clone(r.order) {
		c := r.configs[id]
		if c.CompressorTrackID == trackID || c.SourceTrackID == trackID {
			r.DeleteSidechain(id)
			n++
		}
	}

	return n
}
