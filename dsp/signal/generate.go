// Package signal generates deterministic test sources for offline mix
// renders: tones, noise and decaying pulse trains.
package signal

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-daw/dsp/core"
	"github.com/cwbudde/algo-vecmath"
)

// ErrUnknownKind is returned by Generate for an unsupported source kind.
var ErrUnknownKind = errors.New("signal: unknown source kind")

// Kind names a source shape.
type Kind string

const (
	KindSilence Kind = "silence"
	KindSine    Kind = "sine"
	KindNoise   Kind = "noise"
	// KindPulse is a train of exponentially decaying sine bursts, a
	// stand-in for a kick or a plucked note.
	KindPulse Kind = "pulse"
)

// Spec describes one source as it appears in a scene file.
type Spec struct {
	Kind      Kind    `yaml:"kind"`
	Frequency float64 `yaml:"frequency,omitempty"`
	Amplitude float64 `yaml:"amplitude,omitempty"`
	// Rate is the pulse rate in pulses per second.
	Rate float64 `yaml:"rate,omitempty"`
	// Decay is the pulse decay time constant in milliseconds.
	Decay float64 `yaml:"decay,omitempty"`
	Seed  int64   `yaml:"seed,omitempty"`
}

// Generator creates deterministic signals from a shared configuration.
type Generator struct {
	cfg  core.ProcessorConfig
	seed int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets the random seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a configured signal generator.
func NewGenerator(coreOpts []core.ProcessorOption, opts ...Option) *Generator {
	g := &Generator{
		cfg:  core.ApplyProcessorOptions(coreOpts...),
		seed: 1,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return g
}

// Config returns the generator processor configuration.
func (g *Generator) Config() core.ProcessorConfig {
	return g.cfg
}

func (g *Generator) check(kind Kind, samples int) error {
	if samples <= 0 {
		return fmt.Errorf("%s samples must be > 0: %d", kind, samples)
	}

	if g.cfg.SampleRate <= 0 {
		return fmt.Errorf("%s sample rate must be > 0: %f", kind, g.cfg.SampleRate)
	}

	return nil
}

// Sine generates a sine wave.
func (g *Generator) Sine(freqHz, amplitude float64, samples int) ([]float64, error) {
	err := g.check(KindSine, samples)
	if err != nil {
		return nil, err
	}

	out := make([]float64, samples)
	step := 2 * math.Pi * freqHz / g.cfg.SampleRate

	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}

	return out, nil
}

// WhiteNoise generates white noise in [-amplitude, amplitude].
func (g *Generator) WhiteNoise(amplitude float64, samples int) ([]float64, error) {
	err := g.check(KindNoise, samples)
	if err != nil {
		return nil, err
	}

	if amplitude < 0 {
		return nil, fmt.Errorf("noise amplitude must be >= 0: %f", amplitude)
	}

	out := make([]float64, samples)
	rng := rand.New(rand.NewSource(g.seed))

	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}

	return out, nil
}

// Pulses generates rate bursts per second. Each burst is a sine at freqHz
// starting at phase zero with an envelope exp(-t/decay).
func (g *Generator) Pulses(freqHz, amplitude, rate, decayMs float64, samples int) ([]float64, error) {
	err := g.check(KindPulse, samples)
	if err != nil {
		return nil, err
	}

	if rate <= 0 || decayMs <= 0 {
		return nil, fmt.Errorf("pulse rate and decay must be > 0: %f, %f", rate, decayMs)
	}

	period := max(1, int(math.Round(g.cfg.SampleRate/rate)))
	step := 2 * math.Pi * freqHz / g.cfg.SampleRate
	decay := decayMs * 0.001 * g.cfg.SampleRate

	out := make([]float64, samples)
	for i := range out {
		n := float64(i % period)
		out[i] = amplitude * math.Exp(-n/decay) * math.Sin(step*n)
	}

	return out, nil
}

// Generate renders spec. A zero amplitude means full scale, a zero
// frequency 440 Hz, a zero rate 2 pulses per second and a zero decay
// 80 ms. A non-zero Seed overrides the generator seed.
func (g *Generator) Generate(spec Spec, samples int) ([]float64, error) {
	amp := spec.Amplitude
	if amp == 0 {
		amp = 1
	}

	freq := spec.Frequency
	if freq == 0 {
		freq = 440
	}

	switch spec.Kind {
	case KindSilence, "":
		err := g.check(KindSilence, samples)
		if err != nil {
			return nil, err
		}

		return make([]float64, samples), nil
	case KindSine:
		return g.Sine(freq, amp, samples)
	case KindNoise:
		ng := *g
		if spec.Seed != 0 {
			ng.seed = spec.Seed
		}

		return ng.WhiteNoise(amp, samples)
	case KindPulse:
		rate := spec.Rate
		if rate == 0 {
			rate = 2
		}

		decay := spec.Decay
		if decay == 0 {
			decay = 80
		}

		return g.Pulses(freq, amp, rate, decay, samples)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, spec.Kind)
	}
}

// Normalize scales data to target peak amplitude and returns a new slice.
func Normalize(data []float64, targetPeak float64) ([]float64, error) {
	if targetPeak < 0 {
		return nil, fmt.Errorf("normalize target peak must be >= 0: %f", targetPeak)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("normalize input must not be empty")
	}

	out := make([]float64, len(data))

	peak := vecmath.MaxAbs(data)
	if peak == 0 || targetPeak == 0 {
		return out, nil
	}

	copy(out, data)
	vecmath.ScaleBlockInPlace(out, targetPeak/peak)

	return out, nil
}
