package routing

import (
	"errors"
	"testing"
)

func TestCreateSidechain(t *testing.T) {
	t.Parallel()

	r := NewSidechainRegistry(testOptions()...)

	c, err := r.CreateSidechain("bass", "kick", 5, FilterLowpass)
	if err != nil {
		t.Fatal(err)
	}

	if c.ID != "sidechain-1" || !c.Enabled || c.Frequency != MinSidechainFrequency {
		t.Fatalf("config = %+v", c)
	}

	if _, err := r.CreateSidechain("bass", "bass", 100, FilterNone); !errors.Is(err, ErrSelfSidechain) {
		t.Fatalf("err = %v, want ErrSelfSidechain", err)
	}

	odd, err := r.CreateSidechain("pad", "kick", 1e6, FilterType("comb"))
	if err != nil {
		t.Fatal(err)
	}

	if odd.FilterType != FilterNone || odd.Frequency != MaxSidechainFrequency {
		t.Fatalf("config = %+v", odd)
	}
}

func TestSingleActiveSidechain(t *testing.T) {
	t.Parallel()

	r := NewSidechainRegistry(testOptions()...)

	first, _ := r.CreateSidechain("bass", "kick", 100, FilterLowpass)
	second, _ := r.CreateSidechain("bass", "snare", 200, FilterBandpass)

	src, ok := r.GetSidechainSource("bass")
	if !ok || src.ID != second.ID {
		t.Fatalf("active = %+v, %v; want the newest config", src, ok)
	}

	if got, _ := r.Sidechain(first.ID); got.Enabled {
		t.Fatal("older config still enabled")
	}

	r.SetSidechainEnabled(first.ID, true)

	enabled := 0
	for _, c := range r.SidechainsFor("bass") {
		if c.Enabled {
			enabled++
		}
	}

	if enabled != 1 {
		t.Fatalf("%d enabled configs, want 1", enabled)
	}

	if src, _ := r.GetSidechainSource("bass"); src.SourceTrackID != "kick" {
		t.Fatalf("active source = %q, want kick", src.SourceTrackID)
	}

	r.SetSidechainEnabled(first.ID, false)

	if r.HasActiveSidechain("bass") {
		t.Fatal("HasActiveSidechain = true with all configs disabled")
	}

	if r.SetSidechainEnabled("sidechain-99", true) {
		t.Fatal("enabled a missing config")
	}
}

func TestSidechainFilterAndRemoval(t *testing.T) {
	t.Parallel()

	r := NewSidechainRegistry(testOptions()...)
	a, _ := r.CreateSidechain("bass", "kick", 100, FilterNone)
	r.CreateSidechain("pad", "kick", 100, FilterNone)
	r.CreateSidechain("kick", "hat", 100, FilterNone)
	r.CreateSidechain("lead", "pad", 100, FilterNone)

	if !r.SetSidechainFilter(a.ID, FilterHighpass, 80) || r.SetSidechainFilter(a.ID, "comb", 80) {
		t.Fatal("SetSidechainFilter results wrong")
	}

	if got, _ := r.Sidechain(a.ID); got.FilterType != FilterHighpass || got.Frequency != 80 {
		t.Fatalf("config = %+v", got)
	}

	if n := r.RemoveTrack("kick"); n != 3 {
		t.Fatalf("RemoveTrack removed %d, want 3", n)
	}

	if got := r.Sidechains(); len(got) != 1 || got[0].CompressorTrackID != "lead" {
		t.Fatalf("remaining = %+v", got)
	}

	if !r.DeleteSidechain(r.Sidechains()[0].ID) || len(r.Sidechains()) != 0 {
		t.Fatal("DeleteSidechain failed")
	}
}
