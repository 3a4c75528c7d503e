package testutil

import (
	"math"
	"testing"
)

func TestDeterministicSine(t *testing.T) {
	s := DeterministicSine(1000, 48000, 1.0, 48)
	if len(s) != 48 {
		t.Fatalf("len = %d, want 48", len(s))
	}

	if math.Abs(s[0]) > 1e-15 {
		t.Fatalf("s[0] = %v, want 0", s[0])
	}

	RequireNearlyEqual(t, "s[12]", s[12], 1, 1e-12)
}

func TestDeterministicNoiseReproducible(t *testing.T) {
	a := DeterministicNoise(42, 0.5, 256)
	b := DeterministicNoise(42, 0.5, 256)

	RequireSliceNearlyEqual(t, a, b, 0)

	for i, v := range a {
		if v < -0.5 || v >= 0.5 {
			t.Fatalf("a[%d] = %v outside amplitude", i, v)
		}
	}
}

func TestImpulseAndDC(t *testing.T) {
	imp := Impulse(4, 2)
	RequireSliceNearlyEqual(t, imp, []float64{0, 0, 1, 0}, 0)

	if out := Impulse(4, 9); out[0] != 0 || len(out) != 4 {
		t.Fatalf("out-of-range impulse = %v", out)
	}

	RequireSliceNearlyEqual(t, DC(0.25, 3), []float64{0.25, 0.25, 0.25}, 0)
}

func TestClone(t *testing.T) {
	src := []float64{1, 2}
	c := Clone(src)
	c[0] = 9

	if src[0] != 1 {
		t.Fatal("Clone aliases its input")
	}

	RequireFinite(t, c)
}
