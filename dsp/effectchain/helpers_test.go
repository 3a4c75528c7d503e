package effectchain

import (
	"io"
	"log/slog"

	"github.com/cwbudde/algo-daw/dsp/effects"
	"github.com/cwbudde/algo-daw/idgen"
)

// scaleProcessor multiplies by a fixed factor and records calls.
type scaleProcessor struct {
	factor   float64
	calls    *[]string
	name     string
	sidechan int
}

func (s *scaleProcessor) Name() string                      { return s.name }
func (s *scaleProcessor) Parameters() []effects.Param       { return nil }
func (s *scaleProcessor) SetParameter(string, float64) bool { return false }
func (s *scaleProcessor) Reset()                            {}

func (s *scaleProcessor) Parameter(string) (effects.Param, bool) {
	return effects.Param{}, false
}

func (s *scaleProcessor) Process(block []float64) {
	if s.calls != nil {
		*s.calls = append(*s.calls, s.name)
	}

	for i := range block {
		block[i] *= s.factor
	}
}

// keyedProcessor adds its sidechain sample to every main sample.
type keyedProcessor struct {
	scaleProcessor
}

func (k *keyedProcessor) ProcessWithSidechain(main, side []float64) {
	k.sidechan++

	for i := range main {
		main[i] += side[i]
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRegistry(opts ...Option) *Registry {
	base := []Option{WithIDSource(idgen.NewCounter()), WithLogger(quietLogger())}

	return NewRegistry(append(base, opts...)...)
}
