// Package loudness measures programme loudness of the stereo master in
// LUFS following ITU-R BS.1770 / EBU R128: K-weighting, 400 ms momentary
// and 3 s short-term windows, and gated integrated loudness.
package loudness

import (
	"math"

	"github.com/cwbudde/algo-daw/dsp/filter/biquad"
	"github.com/cwbudde/algo-daw/dsp/filter/design"
)

// FloorLUFS is reported for silence and before any gating block passed.
const FloorLUFS = -120.0

const (
	kShelfHz     = 1500.0
	kShelfGainDB = 4.0
	kHighpassHz  = 38.0

	momentarySeconds = 0.4
	shortTermSeconds = 3.0
	// Gating blocks are momentary windows taken every 100 ms (75% overlap).
	gateStepSeconds = 0.1

	absoluteGate = -70.0
	relativeGate = -10.0
)

// newKWeighting returns the two-stage pre-filter of one channel: a 4 dB
// high shelf followed by a 38 Hz highpass.
func newKWeighting(sampleRate float64) biquad.Cascade {
	return biquad.NewCascade(
		design.HighShelf(kShelfHz, kShelfGainDB, design.DefaultQ, sampleRate),
		design.Highpass(kHighpassHz, design.DefaultQ, sampleRate),
	)
}

// window is a running sum over the last len(buf) values.
type window struct {
	buf  []float64
	pos  int
	fill int
	sum  float64
}

func newWindow(n int) window {
	return window{buf: make([]float64, max(1, n))}
}

func (w *window) push(v float64) {
	w.sum += v - w.buf[w.pos]
	if w.sum < 0 {
		w.sum = 0
	}

	w.buf[w.pos] = v
	w.pos = (w.pos + 1) % len(w.buf)
	w.fill = min(w.fill+1, len(w.buf))
}

func (w *window) full() bool { return w.fill == len(w.buf) }

func (w *window) mean() float64 { return w.sum / float64(len(w.buf)) }

func (w *window) reset() {
	clear(w.buf)
	w.pos, w.fill, w.sum = 0, 0, 0
}

// Meter follows a stereo signal. Both channels carry weight 1.
type Meter struct {
	cfg Config

	weights   [2]biquad.Cascade
	momentary window
	shortTerm window

	step      int
	sinceStep int
	blocks    []float64
}

// New creates a loudness meter.
func New(opts ...Option) *Meter {
	cfg := ApplyOptions(opts...)

	m := &Meter{
		cfg:       cfg,
		weights:   [2]biquad.Cascade{newKWeighting(cfg.SampleRate), newKWeighting(cfg.SampleRate)},
		momentary: newWindow(int(math.Round(momentarySeconds * cfg.SampleRate))),
		shortTerm: newWindow(int(math.Round(shortTermSeconds * cfg.SampleRate))),
		step:      max(1, int(math.Round(gateStepSeconds*cfg.SampleRate))),
	}

	return m
}

// Process measures one stereo block. A nil right channel measures left as
// a mono signal; a shorter right channel is treated as silent beyond its
// end.
func (m *Meter) Process(left, right []float64) {
	for i, l := range left {
		kl := m.weights[0].ProcessSample(l)
		power := kl * kl

		if right != nil {
			r := 0.0
			if i < len(right) {
				r = right[i]
			}

			kr := m.weights[1].ProcessSample(r)
			power += kr * kr
		}

		m.momentary.push(power)
		m.shortTerm.push(power)

		m.sinceStep++
		if m.sinceStep >= m.step {
			m.sinceStep = 0

			if m.momentary.full() {
				m.blocks = append(m.blocks, m.momentary.mean())
			}
		}
	}
}

// Momentary returns the loudness of the last 400 ms in LUFS.
func (m *Meter) Momentary() float64 { return toLUFS(m.momentary.mean()) }

// ShortTerm returns the loudness of the last 3 s in LUFS.
func (m *Meter) ShortTerm() float64 { return toLUFS(m.shortTerm.mean()) }

// Integrated returns the gated programme loudness since Reset in LUFS.
// Blocks below -70 LUFS are dropped, then blocks more than 10 LU below the
// mean of the rest.
func (m *Meter) Integrated() float64 {
	gated, mean := gate(m.blocks, func(p float64) bool { return toLUFS(p) > absoluteGate })
	if len(gated) == 0 {
		return FloorLUFS
	}

	threshold := toLUFS(mean) + relativeGate

	gated, mean = gate(gated, func(p float64) bool { return toLUFS(p) > threshold })
	if len(gated) == 0 {
		return FloorLUFS
	}

	return toLUFS(mean)
}

func gate(blocks []float64, keep func(float64) bool) ([]float64, float64) {
	var (
		out []float64
		sum float64
	)

	for _, p := range blocks {
		if keep(p) {
			out = append(out, p)
			sum += p
		}
	}

	if len(out) == 0 {
		return nil, 0
	}

	return out, sum / float64(len(out))
}

// Reset clears filter state, windows and gating history.
func (m *Meter) Reset() {
	for _, w := range m.weights {
		w.Reset()
	}

	m.momentary.reset()
	m.shortTerm.reset()
	m.sinceStep = 0
	m.blocks = nil
}

func toLUFS(meanSquare float64) float64 {
	if meanSquare <= 0 {
		return FloorLUFS
	}

	return math.Max(FloorLUFS, -0.691+10*math.Log10(meanSquare))
}
