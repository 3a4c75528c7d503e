// Package idgen provides injectable identifier sources for engine entities.
//
// Services take a Source at construction time so tests can use a Counter and
// assert exact IDs, while applications use UUIDs.
package idgen

import (
	"strconv"

	"github.com/google/uuid"
)

// Source produces unique identifiers. The prefix names the entity kind
// (for example "bus" or "curve").
type Source interface {
	Next(prefix string) string
}

// Counter yields prefix-1, prefix-2, ... with one sequence per prefix.
// It is not safe for concurrent use.
type Counter struct {
	seq map[string]int
}

// NewCounter returns a Counter starting at 1 for every prefix.
func NewCounter() *Counter {
	return &Counter{seq: make(map[string]int)}
}

// Next returns the next identifier for prefix.
func (c *Counter) Next(prefix string) string {
	c.seq[prefix]++

	return prefix + "-" + strconv.Itoa(c.seq[prefix])
}

// UUID yields prefix-<random v4 uuid>.
type UUID struct{}

// NewUUID returns a random UUID source.
func NewUUID() UUID {
	return UUID{}
}

// Next returns a new random identifier for prefix.
func (UUID) Next(prefix string) string {
	id := uuid.New().String()
	if prefix == "" {
		return id
	}

	return prefix + "-" + id
}

// Func adapts a plain function to Source.
type Func func(prefix string) string

// Next calls f.
func (f Func) Next(prefix string) string {
	return f(prefix)
}
