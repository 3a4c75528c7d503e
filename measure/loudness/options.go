package loudness

import "github.com/cwbudde/algo-daw/dsp/core"

// Config holds the loudness meter configuration.
type Config struct {
	core.ProcessorConfig
}

// Option mutates a Config.
type Option func(*Config)

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *Config) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := Config{ProcessorConfig: core.DefaultProcessorConfig()}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
