package effectchain

import "github.com/cwbudde/algo-daw/dsp/effects"

// Built-in effect type names.
const (
	TypeEQ         = "eq"
	TypeFilterEQ   = "eq-filter"
	TypeCompressor = "compressor"
	TypeGate       = "gate"
	TypeReverb     = "reverb"
	TypeSaturation = "saturation"
)

type catalogConfig struct {
	filterEQ bool
}

// CatalogOption configures the default catalog.
type CatalogOption func(*catalogConfig)

// WithFilterEQ makes the "eq" type build the per-band FilterEQ instead of
// the averaging EQ.
func WithFilterEQ(enabled bool) CatalogOption {
	return func(c *catalogConfig) { c.filterEQ = enabled }
}

// DefaultCatalog returns a Catalog pre-populated with all built-in processors.
func DefaultCatalog(opts ...CatalogOption) *Catalog {
	cfg := &catalogConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	c := NewCatalog()

	filterEQ := func(ctx Context) (effects.Processor, error) {
		return effects.NewFilterEQ(ctx.SampleRate)
	}

	if cfg.filterEQ {
		c.MustRegister(TypeEQ, filterEQ)
	} else {
		c.MustRegister(TypeEQ, func(_ Context) (effects.Processor, error) {
			return effects.NewEQ(), nil
		})
	}

	c.MustRegister(TypeFilterEQ, filterEQ)
	c.MustRegister(TypeCompressor, func(ctx Context) (effects.Processor, error) {
		return effects.NewCompressor(ctx.SampleRate)
	})
	c.MustRegister(TypeGate, func(ctx Context) (effects.Processor, error) {
		return effects.NewGate(ctx.SampleRate)
	})
	c.MustRegister(TypeReverb, func(ctx Context) (effects.Processor, error) {
		return effects.NewReverb(ctx.SampleRate)
	})
	c.MustRegister(TypeSaturation, func(_ Context) (effects.Processor, error) {
		return effects.NewSaturation(), nil
	})

	return c
}
