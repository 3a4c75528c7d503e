package session

import (
	"io"
	"log/slog"
	"testing"

	"github.com/cwbudde/algo-daw/config"
	"github.com/cwbudde/algo-daw/idgen"
)

func newTestSession(t *testing.T, edit ...func(*config.Config)) *Session {
	t.Helper()

	cfg := config.Default()
	cfg.BlockSize = 64

	for _, fn := range edit {
		fn(&cfg)
	}

	s, err := New(cfg,
		WithIDSource(idgen.NewCounter()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	return s
}
