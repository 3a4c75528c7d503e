package effectchain

import "github.com/cwbudde/algo-daw/dsp/effects"

// Plugin is one processor instance addressable by ID.
type Plugin struct {
	ID        string
	Type      string
	Name      string
	Enabled   bool
	Processor effects.Processor
}

// PluginSource resolves plugin IDs referenced by chains.
type PluginSource interface {
	Plugin(id string) (*Plugin, bool)
}
