package effectchain

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/cwbudde/algo-daw/dsp/effects"
	"github.com/cwbudde/algo-daw/idgen"
)

var (
	// ErrDuplicatePlugin is returned when a plugin ID is already registered.
	ErrDuplicatePlugin = errors.New("duplicate plugin id")
	// ErrInvalidPlugin is returned for a nil plugin or one without a processor.
	ErrInvalidPlugin = errors.New("invalid plugin")
)

// Option configures a Registry.
type Option func(*Registry)

// WithCatalog sets the processor catalog. The default is DefaultCatalog().
func WithCatalog(c *Catalog) Option {
	return func(r *Registry) {
		if c != nil {
			r.catalog = c
		}
	}
}

// WithContext sets the context handed to factories.
func WithContext(ctx Context) Option {
	return func(r *Registry) { r.ctx = ctx }
}

// WithIDSource sets the plugin and chain ID source.
func WithIDSource(src idgen.Source) Option {
	return func(r *Registry) {
		if src != nil {
			r.ids = src
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// Registry owns every plugin instance and every track chain of a session.
// It is not safe for concurrent use.
type Registry struct {
	catalog *Catalog
	ctx     Context
	ids     idgen.Source
	log     *slog.Logger

	plugins map[string]*Plugin
	order   []string
	chains  map[string]*Chain // by track ID
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		ctx:     NewContext(),
		ids:     idgen.NewUUID(),
		log:     slog.Default(),
		plugins: make(map[string]*Plugin),
		chains:  make(map[string]*Chain),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.catalog == nil {
		r.catalog = DefaultCatalog()
	}

	return r
}

// Catalog returns the processor catalog.
func (r *Registry) Catalog() *Catalog { return r.catalog }

// Context returns the factory context.
func (r *Registry) Context() Context { return r.ctx }

// CreatePlugin builds and registers an enabled plugin of effectType with
// the given plain parameter values. Unknown parameter names are logged and
// skipped.
func (r *Registry) CreatePlugin(effectType string, params map[string]float64) (*Plugin, error) {
	proc, err := r.catalog.New(effectType, r.ctx)
	if err != nil {
		r.log.Warn("effectchain: create plugin failed", "type", effectType, "error", err)
		return nil, err
	}

	p := &Plugin{
		ID:        r.ids.Next(effectType),
		Type:      effectType,
		Name:      proc.Name(),
		Enabled:   true,
		Processor: proc,
	}

	r.applyParams(p, params)
	r.store(p)

	return p, nil
}

// AddPlugin registers an externally built plugin and appends it to the
// chain of trackID, creating the chain when needed. A missing ID is
// assigned; a missing name is taken from the processor.
func (r *Registry) AddPlugin(trackID string, p *Plugin) error {
	if p == nil || p.Processor == nil {
		return ErrInvalidPlugin
	}

	if p.ID == "" {
		p.ID = r.ids.Next(cmp.Or(p.Type, "plugin"))
	}

	if _, exists := r.plugins[p.ID]; exists {
		r.log.Warn("effectchain: duplicate plugin", "plugin", p.ID, "track", trackID)
		return fmt.Errorf("%w: %s", ErrDuplicatePlugin, p.ID)
	}

	if p.Name == "" {
		p.Name = p.Processor.Name()
	}

	r.store(p)
	r.CreateChain(trackID).AddPlugin(p.ID)

	return nil
}

func (r *Registry) store(p *Plugin) {
	r.plugins[p.ID] = p
	r.order = append(r.order, p.ID)

	r.log.Debug("effectchain: plugin registered", "plugin", p.ID, "type", p.Type)
}

func (r *Registry) applyParams(p *Plugin, params map[string]float64) {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	for _, k := range keys {
		if !p.Processor.SetParameter(k, params[k]) {
			r.log.Warn("effectchain: unknown parameter", "plugin", p.ID, "parameter", k)
		}
	}
}

// Plugin returns a registered plugin.
func (r *Registry) Plugin(id string) (*Plugin, bool) {
	p, ok := r.plugins[id]

	return p, ok
}

// Plugins returns every registered plugin in registration order.
func (r *Registry) Plugins() []*Plugin {
	out := make([]*Plugin, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.plugins[id])
	}

	return out
}

// RemovePlugin unregisters a plugin and removes it from every chain.
func (r *Registry) RemovePlugin(id string) bool {
	if _, ok := r.plugins[id]; !ok {
		return false
	}

	delete(r.plugins, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })

	for _, c := range r.chains {
		c.RemovePlugin(id)
	}

	return true
}

// TogglePlugin flips the enabled flag and returns the new state.
func (r *Registry) TogglePlugin(id string) (enabled, ok bool) {
	p, ok := r.plugins[id]
	if !ok {
		return false, false
	}

	p.Enabled = !p.Enabled

	return p.Enabled, true
}

// SetPluginEnabled sets the enabled flag.
func (r *Registry) SetPluginEnabled(id string, enabled bool) bool {
	p, ok := r.plugins[id]
	if !ok {
		return false
	}

	p.Enabled = enabled

	return true
}

// SetPluginParameter writes a plain parameter value (clamped by the
// processor). It reports false for an unknown plugin or parameter.
func (r *Registry) SetPluginParameter(id, param string, value float64) bool {
	p, ok := r.plugins[id]
	if !ok {
		r.log.Warn("effectchain: unknown plugin", "plugin", id)
		return false
	}

	return p.Processor.SetParameter(param, value)
}

// SetPluginParameterNormalized writes a value in [0, 1] mapped onto the
// parameter range.
func (r *Registry) SetPluginParameterNormalized(id, param string, norm float64) bool {
	p, ok := r.plugins[id]
	if !ok {
		r.log.Warn("effectchain: unknown plugin", "plugin", id)
		return false
	}

	return effects.SetNormalized(p.Processor, param, norm)
}

// PluginParameter reads one parameter of a plugin.
func (r *Registry) PluginParameter(id, param string) (effects.Param, bool) {
	p, ok := r.plugins[id]
	if !ok {
		return effects.Param{}, false
	}

	return p.Processor.Parameter(param)
}

// CreateChain returns the chain of trackID, creating an empty one first if
// needed.
func (r *Registry) CreateChain(trackID string) *Chain {
	if c, ok := r.chains[trackID]; ok {
		return c
	}

	c := NewChain(r.ids.Next("chain"), trackID, r)
	r.chains[trackID] = c

	r.log.Debug("effectchain: chain created", "chain", c.ID, "track", trackID)

	return c
}

// ChainForTrack returns the chain of trackID.
func (r *Registry) ChainForTrack(trackID string) (*Chain, bool) {
	c, ok := r.chains[trackID]

	return c, ok
}

// Chains returns every chain sorted by track ID.
func (r *Registry) Chains() []*Chain {
	out := make([]*Chain, 0, len(r.chains))
	for _, c := range r.chains {
		out = append(out, c)
	}

	slices.SortFunc(out, func(a, b *Chain) int { return cmp.Compare(a.TrackID, b.TrackID) })

	return out
}

// DeleteChain removes the chain of trackID. With dropPlugins the plugins it
// referenced are unregistered too; otherwise they stay addressable by ID.
func (r *Registry) DeleteChain(trackID string, dropPlugins bool) bool {
	c, ok := r.chains[trackID]
	if !ok {
		return false
	}

	delete(r.chains, trackID)

	if dropPlugins {
		for _, id := range c.PluginIDs() {
			r.RemovePlugin(id)
		}
	}

	return true
}
