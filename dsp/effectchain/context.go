package effectchain

import "github.com/cwbudde/algo-daw/dsp/core"

// Context provides environmental information that processor factories need.
type Context struct {
	SampleRate float64
}

// NewContext builds a Context from processor options.
func NewContext(opts ...core.ProcessorOption) Context {
	cfg := core.ApplyProcessorOptions(opts...)

	return Context{SampleRate: cfg.SampleRate}
}
