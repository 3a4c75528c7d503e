package effectchain

import (
	"errors"
	"fmt"
	"slices"

	"github.com/cwbudde/algo-daw/dsp/effects"
)

// Factory builds one processor instance.
type Factory func(ctx Context) (effects.Processor, error)

// ErrUnknownEffect is returned when a plugin references an unregistered effect type.
var ErrUnknownEffect = errors.New("unknown effect type")

var errDuplicateEffect = errors.New("duplicate effect type")

// Catalog maps effect type names to their factories.
type Catalog struct {
	factories map[string]Factory
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{factories: make(map[string]Factory)}
}

// Register adds a factory for the given effect type.
func (c *Catalog) Register(effectType string, factory Factory) error {
	if effectType == "" {
		return errors.New("empty effect type")
	}

	if factory == nil {
		return errors.New("nil factory")
	}

	if _, exists := c.factories[effectType]; exists {
		return fmt.Errorf("%w: %s", errDuplicateEffect, effectType)
	}

	c.factories[effectType] = factory

	return nil
}

// MustRegister is like Register but panics on error.
func (c *Catalog) MustRegister(effectType string, factory Factory) {
	err := c.Register(effectType, factory)
	if err != nil {
		panic("effectchain catalog: " + err.Error())
	}
}

// Lookup returns the factory for the given effect type, or nil.
func (c *Catalog) Lookup(effectType string) Factory {
	return c.factories[effectType]
}

// Types returns the registered effect types in sorted order.
func (c *Catalog) Types() []string {
	types := make([]string, 0, len(c.factories))
	for t := range c.factories {
		types = append(types, t)
	}

	slices.Sort(types)

	return types
}

// New builds a processor of the given type.
func (c *Catalog) New(effectType string, ctx Context) (effects.Processor, error) {
	factory := c.Lookup(effectType)
	if factory == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEffect, effectType)
	}

	p, err := factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("effectchain: create %s: %w", effectType, err)
	}

	return p, nil
}
