package midimap

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"github.com/cwbudde/algo-daw/idgen"
	"gitlab.com/gomidi/midi/v2"
)

// Target receives normalized parameter writes.
type Target interface {
	SetPluginParameterNormalized(pluginID, parameterID string, norm float64) bool
}

// Option configures a Table.
type Option func(*Table)

// WithIDSource sets the mapping ID source.
func WithIDSource(src idgen.Source) Option {
	return func(t *Table) {
		if src != nil {
			t.ids = src
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Table) {
		if l != nil {
			t.log = l
		}
	}
}

type learnRequest struct {
	pluginID    string
	parameterID string
}

// Table holds CC mappings in insertion order. It is not safe for
// concurrent use.
type Table struct {
	target Target
	ids    idgen.Source
	log    *slog.Logger

	mappings []Mapping
	learn    *learnRequest
}

// NewTable returns an empty table that writes to target.
func NewTable(target Target, opts ...Option) *Table {
	t := &Table{
		target: target,
		ids:    idgen.NewUUID(),
		log:    slog.Default(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Add validates m, assigns an ID when it has none, and stores it.
func (t *Table) Add(m Mapping) (Mapping, error) {
	if err := m.Validate(); err != nil {
		return Mapping{}, err
	}

	if m.ID == "" {
		m.ID = t.ids.Next("midimap")
	}

	if _, ok := t.Mapping(m.ID); ok {
		return Mapping{}, fmt.Errorf("%w: duplicate id %s", ErrInvalidMapping, m.ID)
	}

	m = m.normalized()
	t.mappings = append(t.mappings, m)

	t.log.Debug("midimap: mapping added", "mapping", m.ID, "cc", m.MIDICC, "plugin", m.PluginID, "parameter", m.ParameterID)

	return m, nil
}

// Mapping returns one mapping by ID.
func (t *Table) Mapping(id string) (Mapping, bool) {
	i := t.index(id)
	if i < 0 {
		return Mapping{}, false
	}

	return t.mappings[i], true
}

// Mappings returns every mapping in insertion order.
func (t *Table) Mappings() []Mapping {
	return slices.Clone(t.mappings)
}

// Remove deletes one mapping.
func (t *Table) Remove(id string) bool {
	i := t.index(id)
	if i < 0 {
		return false
	}

	t.mappings = slices.Delete(t.mappings, i, i+1)

	return true
}

// RemovePlugin deletes every mapping that targets pluginID.
func (t *Table) RemovePlugin(pluginID string) int {
	before := len(t.mappings)
	t.mappings = slices.DeleteFunc(t.mappings, func(m Mapping) bool { return m.PluginID == pluginID })

	return before - len(t.mappings)
}

// SetEnabled enables or disables one mapping.
func (t *Table) SetEnabled(id string, enabled bool) bool {
	i := t.index(id)
	if i < 0 {
		return false
	}

	t.mappings[i].Enabled = enabled

	return true
}

func (t *Table) index(id string) int {
	return slices.IndexFunc(t.mappings, func(m Mapping) bool { return m.ID == id })
}

// Learn arms the table: the next control change received by Handle becomes
// a full-range mapping on its channel for the given parameter.
func (t *Table) Learn(pluginID, parameterID string) {
	t.learn = &learnRequest{pluginID: pluginID, parameterID: parameterID}
}

// CancelLearn disarms a pending Learn.
func (t *Table) CancelLearn() { t.learn = nil }

// Learning reports whether a Learn is pending.
func (t *Table) Learning() bool { return t.learn != nil }

// Handle applies a MIDI message. Messages other than control changes are
// ignored. It returns the number of parameter writes that succeeded; a
// message consumed by Learn counts as zero writes.
func (t *Table) Handle(msg midi.Message) int {
	var channel, cc, value uint8
	if !msg.GetControlChange(&channel, &cc, &value) {
		return 0
	}

	if t.learn != nil {
		req := t.learn
		t.learn = nil

		m := NewMapping(req.pluginID, req.parameterID, int(cc))
		m.MIDIChannel = int(channel)

		if _, err := t.Add(m); err != nil {
			t.log.Warn("midimap: learn failed", "error", err)
		}

		return 0
	}

	if t.target == nil {
		return 0
	}

	applied := 0

	for _, m := range t.mappings {
		if !m.Matches(channel, cc) {
			continue
		}

		if t.target.SetPluginParameterNormalized(m.PluginID, m.ParameterID, m.Value(value)) {
			applied++
		} else {
			t.log.Warn("midimap: target rejected write", "mapping", m.ID, "plugin", m.PluginID, "parameter", m.ParameterID)
		}
	}

	return applied
}

// Feedback returns the control-change messages that put every enabled
// controller mapped to the parameter at position norm, for motorized or
// LED-ring surfaces. Any-channel mappings answer on channel 0.
func (t *Table) Feedback(pluginID, parameterID string, norm float64) []midi.Message {
	var out []midi.Message

	for _, m := range t.mappings {
		if !m.Enabled || m.PluginID != pluginID || m.ParameterID != parameterID {
			continue
		}

		channel := uint8(0)
		if m.MIDIChannel != AnyChannel {
			channel = uint8(m.MIDIChannel)
		}

		out = append(out, midi.ControlChange(channel, uint8(m.MIDICC), m.ControllerValue(norm)))
	}

	return out
}

// Export encodes the table as a JSON array.
func (t *Table) Export() ([]byte, error) {
	if t.mappings == nil {
		return []byte("[]"), nil
	}

	return json.Marshal(t.mappings)
}

// Import replaces the table with the mappings in data. Every entry is
// validated first; on any error the table is left unchanged.
func (t *Table) Import(data []byte) (int, error) {
	var in []Mapping
	if err := json.Unmarshal(data, &in); err != nil {
		err = fmt.Errorf("%w: %w", ErrMalformedMappings, err)
		t.log.Warn("midimap: import rejected", "error", err)

		return 0, err
	}

	out := make([]Mapping, 0, len(in))
	seen := make(map[string]bool, len(in))

	for i, m := range in {
		if err := m.Validate(); err != nil {
			err = fmt.Errorf("%w: entry %d: %w", ErrMalformedMappings, i, err)
			t.log.Warn("midimap: import rejected", "error", err)

			return 0, err
		}

		if m.ID == "" {
			m.ID = t.ids.Next("midimap")
		}

		if seen[m.ID] {
			err := fmt.Errorf("%w: duplicate id %s", ErrMalformedMappings, m.ID)
			t.log.Warn("midimap: import rejected", "error", err)

			return 0, err
		}

		seen[m.ID] = true
		out = append(out, m.normalized())
	}

	t.mappings = out

	return len(out), nil
}
