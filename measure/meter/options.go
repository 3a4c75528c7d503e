package meter

import "github.com/cwbudde/algo-daw/dsp/core"

// Config defines meter ballistics.
type Config struct {
	core.ProcessorConfig
	// PeakHold is how long, in seconds, a peak is held before it decays.
	PeakHold float64
	// PeakDecay is the peak fall rate in dB per second after the hold.
	PeakDecay float64
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns a 1.5 s hold and a 20 dB/s fall.
func DefaultConfig() Config {
	return Config{
		ProcessorConfig: core.DefaultProcessorConfig(),
		PeakHold:        1.5,
		PeakDecay:       20,
	}
}

// WithSampleRate sets the sample rate used to convert block lengths to time.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *Config) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithPeakHold sets the peak hold time in seconds. Negative values are ignored.
func WithPeakHold(seconds float64) Option {
	return func(cfg *Config) {
		if seconds >= 0 {
			cfg.PeakHold = seconds
		}
	}
}

// WithPeakDecay sets the peak fall rate in dB per second. Negative values
// are ignored.
func WithPeakDecay(dbPerSecond float64) Option {
	return func(cfg *Config) {
		if dbPerSecond >= 0 {
			cfg.PeakDecay = dbPerSecond
		}
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
