package routing

import (
	"io"
	"log/slog"

	"github.com/cwbudde/algo-daw/idgen"
)

func testOptions(extra ...Option) []Option {
	return append([]Option{
		WithIDSource(idgen.NewCounter()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, extra...)
}
