package core

import "math"

// ProcessorConfig is the sample rate and render block size shared by the
// processors, meters and generators of one engine.
type ProcessorConfig struct {
	SampleRate float64
	BlockSize  int
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns the engine defaults for offline and streaming use.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate: 48000,
		BlockSize:  512,
	}
}

// WithSampleRate sets the processing sample rate. Non-positive values are ignored.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the processing block size. Non-positive values are ignored.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// Samples converts a duration in seconds to a sample count, rounded to the
// nearest sample. Negative durations give 0.
func (c ProcessorConfig) Samples(seconds float64) int {
	if seconds <= 0 || math.IsNaN(seconds) {
		return 0
	}

	return int(math.Round(seconds * c.SampleRate))
}

// Seconds converts a sample offset to a time in seconds.
func (c ProcessorConfig) Seconds(samples int) float64 {
	return float64(samples) / c.SampleRate
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
