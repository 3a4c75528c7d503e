package effectchain

import (
	"math"
	"slices"

	"github.com/cwbudde/algo-daw/dsp/effects"
	"github.com/cwbudde/algo-vecmath"
)

// Chain is the ordered insert list of one track. It holds plugin IDs only;
// the instances live in a PluginSource.
type Chain struct {
	ID      string
	TrackID string

	plugins    []string
	bypass     bool
	outputGain float64
	src        PluginSource
}

// NewChain creates an empty chain with unity output gain.
func NewChain(id, trackID string, src PluginSource) *Chain {
	return &Chain{
		ID:         id,
		TrackID:    trackID,
		outputGain: 1,
		src:        src,
	}
}

// PluginIDs returns the plugin order.
func (c *Chain) PluginIDs() []string {
	return slices.Clone(c.plugins)
}

// Contains reports whether the chain references pluginID.
func (c *Chain) Contains(pluginID string) bool {
	return slices.Contains(c.plugins, pluginID)
}

// AddPlugin appends pluginID. A plugin appears at most once per chain.
func (c *Chain) AddPlugin(pluginID string) bool {
	return c.InsertPlugin(len(c.plugins), pluginID)
}

// InsertPlugin places pluginID at index, clamped to the valid range.
func (c *Chain) InsertPlugin(index int, pluginID string) bool {
	if pluginID == "" || c.Contains(pluginID) {
		return false
	}

	index = max(0, min(index, len(c.plugins)))
	c.plugins = slices.Insert(c.plugins, index, pluginID)

	return true
}

// RemovePlugin drops pluginID from the order.
func (c *Chain) RemovePlugin(pluginID string) bool {
	i := slices.Index(c.plugins, pluginID)
	if i < 0 {
		return false
	}

	c.plugins = slices.Delete(c.plugins, i, i+1)

	return true
}

// MovePlugin moves pluginID to newIndex, clamped to the valid range.
func (c *Chain) MovePlugin(pluginID string, newIndex int) bool {
	i := slices.Index(c.plugins, pluginID)
	if i < 0 {
		return false
	}

	c.plugins = slices.Delete(c.plugins, i, i+1)
	newIndex = max(0, min(newIndex, len(c.plugins)))
	c.plugins = slices.Insert(c.plugins, newIndex, pluginID)

	return true
}

// SetBypass turns the whole chain into a pass-through.
func (c *Chain) SetBypass(bypass bool) { c.bypass = bypass }

// Bypassed reports whether the chain is bypassed.
func (c *Chain) Bypassed() bool { return c.bypass }

// SetOutputGain sets the linear post-chain gain. Negative and NaN values
// become 0.
func (c *Chain) SetOutputGain(gain float64) {
	if math.IsNaN(gain) || gain < 0 {
		gain = 0
	}

	c.outputGain = gain
}

// OutputGain returns the linear post-chain gain.
func (c *Chain) OutputGain() float64 { return c.outputGain }

// PluginCount returns the number of referenced plugins.
func (c *Chain) PluginCount() int { return len(c.plugins) }

// EnabledPluginCount returns the number of referenced plugins that exist and
// are enabled.
func (c *Chain) EnabledPluginCount() int {
	n := 0

	for _, id := range c.plugins {
		if p, ok := c.lookup(id); ok && p.Enabled {
			n++
		}
	}

	return n
}

func (c *Chain) lookup(id string) (*Plugin, bool) {
	if c.src == nil {
		return nil, false
	}

	p, ok := c.src.Plugin(id)
	if !ok || p == nil || p.Processor == nil {
		return nil, false
	}

	return p, true
}

// Process runs every enabled plugin over block in order, then applies the
// output gain. A bypassed chain leaves block untouched.
func (c *Chain) Process(block []float64) {
	c.ProcessWithSidechain(block, nil)
}

// ProcessWithSidechain is like Process but hands sidechain to every plugin
// whose detector accepts one. A nil sidechain behaves like Process.
func (c *Chain) ProcessWithSidechain(block, sidechain []float64) {
	if c.bypass {
		return
	}

	for _, id := range c.plugins {
		p, ok := c.lookup(id)
		if !ok || !p.Enabled {
			continue
		}

		if sc, isSC := p.Processor.(effects.SidechainProcessor); isSC && sidechain != nil {
			sc.ProcessWithSidechain(block, sidechain)
			continue
		}

		p.Processor.Process(block)
	}

	if c.outputGain != 1 {
		vecmath.ScaleBlockInPlace(block, c.outputGain)
	}
}
