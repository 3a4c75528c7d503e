package meter

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// FloorDB is the reading reported for silence.
const FloorDB = -120.0

// Reading is a block level measurement.
type Reading struct {
	Peak   float64 `json:"peak"`
	RMS    float64 `json:"rms"`
	PeakDB float64 `json:"peakDb"`
	RMSDB  float64 `json:"rmsDb"`
}

// ToDB converts a linear amplitude to dB, floored at FloorDB.
func ToDB(linear float64) float64 {
	if !(linear > 0) {
		return FloorDB
	}

	return math.Max(FloorDB, 20*log10(linear))
}

// Measure returns the peak and RMS level of block.
func Measure(block []float64) Reading {
	if len(block) == 0 {
		return Reading{PeakDB: FloorDB, RMSDB: FloorDB}
	}

	peak := vecmath.MaxAbs(block)
	rms := math.Sqrt(vecmath.DotProduct(block, block) / float64(len(block)))

	return Reading{
		Peak:   peak,
		RMS:    rms,
		PeakDB: ToDB(peak),
		RMSDB:  ToDB(rms),
	}
}

// Meter follows a signal block by block with peak hold and decay.
type Meter struct {
	cfg Config

	last     Reading
	heldDB   float64
	holdLeft float64
	clipped  bool
}

// New creates a meter.
func New(opts ...Option) *Meter {
	m := &Meter{cfg: ApplyOptions(opts...)}
	m.Reset()

	return m
}

// Process measures block and updates the held peak.
func (m *Meter) Process(block []float64) Reading {
	r := Measure(block)
	m.last = r

	if r.Peak >= 1 {
		m.clipped = true
	}

	dt := float64(len(block)) / m.cfg.SampleRate

	switch {
	case r.PeakDB >= m.heldDB:
		m.heldDB = r.PeakDB
		m.holdLeft = m.cfg.PeakHold
	case m.holdLeft > 0:
		m.holdLeft -= dt
	default:
		m.heldDB = math.Max(r.PeakDB, m.heldDB-m.cfg.PeakDecay*dt)
	}

	return r
}

// Reading returns the last block measurement.
func (m *Meter) Reading() Reading { return m.last }

// HeldPeakDB returns the held peak in dB.
func (m *Meter) HeldPeakDB() float64 { return m.heldDB }

// Clipped reports whether any block since the last Reset reached full scale.
func (m *Meter) Clipped() bool { return m.clipped }

// Reset clears the held peak and the clip indicator.
func (m *Meter) Reset() {
	m.last = Reading{PeakDB: FloorDB, RMSDB: FloorDB}
	m.heldDB = FloorDB
	m.holdLeft = 0
	m.clipped = false
}
