package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/cwbudde/algo-daw/config"
	"github.com/cwbudde/algo-daw/dsp/effectchain"
	"github.com/cwbudde/algo-daw/idgen"
	"github.com/cwbudde/algo-daw/internal/testutil"
	"github.com/cwbudde/algo-daw/session"
)

func testReport(t *testing.T) report {
	t.Helper()

	cfg := config.Default()
	cfg.SampleRate = 8000
	cfg.BlockSize = 100

	s, err := session.New(cfg,
		session.WithIDSource(idgen.NewCounter()),
		session.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}

	tr := s.AddTrack("lead").ID
	if _, err := s.AddPlugin(tr, effectchain.TypeEQ, nil); err != nil {
		t.Fatalf("AddPlugin: %v", err)
	}

	in := testutil.DeterministicSine(1000, 8000, 0.5, 800)
	out, tracks := render(s, 0.1, map[string][]float64{tr: in})

	if len(out.Left) != 800 {
		t.Fatalf("rendered %d samples, want 800", len(out.Left))
	}

	rep, err := buildReport("demo.yaml", s, out, tracks)
	if err != nil {
		t.Fatalf("buildReport: %v", err)
	}

	return rep
}

func TestRenderCollectsTrackStats(t *testing.T) {
	t.Parallel()

	rep := testReport(t)

	if len(rep.Tracks) != 1 {
		t.Fatalf("tracks = %d", len(rep.Tracks))
	}

	st := rep.Tracks[0]
	if st.Name != "lead" || len(st.Plugins) != 1 || st.Plugins[0] != "EQ" {
		t.Fatalf("track stats = %+v", st)
	}

	// The EQ at its defaults is flat, so the track keeps the sine level.
	if math.Abs(st.PeakDB-20*math.Log10(0.5)) > 0.1 {
		t.Fatalf("peak = %.3f dB", st.PeakDB)
	}

	if math.Abs(st.RMSDB-20*math.Log10(0.5/math.Sqrt2)) > 0.1 {
		t.Fatalf("rms = %.3f dB", st.RMSDB)
	}

	if rep.Profile.Mid < 0.9 {
		t.Fatalf("1 kHz tone profile = %+v", rep.Profile)
	}
}

func TestWriters(t *testing.T) {
	t.Parallel()

	rep := testReport(t)

	var buf bytes.Buffer
	if err := writeTemplate(&buf, "", rep); err != nil {
		t.Fatalf("writeTemplate: %v", err)
	}

	if !strings.Contains(buf.String(), "DEMO.YAML") || !strings.Contains(buf.String(), "lead") {
		t.Fatalf("template output:\n%s", buf.String())
	}

	buf.Reset()

	if err := writeTemplate(&buf, `{{ len .Tracks }} {{ .Scene | trimSuffix ".yaml" }}`, rep); err != nil {
		t.Fatalf("custom template: %v", err)
	}

	if buf.String() != "1 demo" {
		t.Fatalf("custom template output %q", buf.String())
	}

	if err := writeTemplate(&buf, "{{ .Nope", rep); err == nil {
		t.Fatal("expected parse error")
	}

	buf.Reset()

	if err := writeTable(&buf, rep); err != nil {
		t.Fatalf("writeTable: %v", err)
	}

	if !strings.Contains(buf.String(), "master L/R") {
		t.Fatalf("table output:\n%s", buf.String())
	}

	buf.Reset()

	if err := writeJSON(&buf, rep); err != nil {
		t.Fatalf("writeJSON: %v", err)
	}

	var decoded report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if decoded.Scene != "demo.yaml" || len(decoded.Tracks) != 1 {
		t.Fatalf("decoded = %+v", decoded)
	}
}
