package routing

import (
	"log/slog"

	"github.com/cwbudde/algo-daw/idgen"
)

type settings struct {
	ids       idgen.Source
	log       *slog.Logger
	exclusive bool
}

func defaultSettings() settings {
	return settings{
		ids:       idgen.NewUUID(),
		log:       slog.Default(),
		exclusive: true,
	}
}

// Option configures a BusManager, Engine or SidechainRegistry.
type Option func(*settings)

// WithIDSource sets the identifier source.
func WithIDSource(src idgen.Source) Option {
	return func(s *settings) {
		if src != nil {
			s.ids = src
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

// WithExclusiveBusMembership controls whether adding a track to a bus
// removes it from the bus it belonged to before. Only BusManager reads it.
func WithExclusiveBusMembership(exclusive bool) Option {
	return func(s *settings) { s.exclusive = exclusive }
}

func applyOptions(opts []Option) settings {
	s := defaultSettings()
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}

	return s
}
