package biquad

import (
	"math"
	"testing"
)

func TestPassthrough(t *testing.T) {
	s := NewSection(Passthrough())
	buf := []float64{1, -0.5, 0.25, 0}
	want := append([]float64(nil), buf...)

	s.ProcessBlock(buf)

	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("buf[%d] = %v, want %v", i, buf[i], want[i])
		}
	}
}

func TestProcessBlockMatchesSample(t *testing.T) {
	c := Coefficients{B0: 0.2, B1: 0.4, B2: 0.2, A1: -0.5, A2: 0.1}
	a := NewSection(c)
	b := NewSection(c)

	src := []float64{1, 0, 0, 0.5, -0.3, 0.8, 0, 0}
	block := append([]float64(nil), src...)
	a.ProcessBlock(block)

	for i, x := range src {
		if got := b.ProcessSample(x); math.Abs(got-block[i]) > 1e-15 {
			t.Fatalf("sample %d: block=%v sample=%v", i, block[i], got)
		}
	}

	if a.State() != b.State() {
		t.Fatalf("state mismatch: %v vs %v", a.State(), b.State())
	}
}

func TestCascade(t *testing.T) {
	half := Coefficients{B0: 0.5}
	c := NewCascade(half, Coefficients{B0: 0.5, B1: 0.5})

	buf := []float64{1, 1, 1}
	c.ProcessBlock(buf)

	want := []float64{0.25, 0.5, 0.5}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("buf[%d] = %v, want %v", i, buf[i], want[i])
		}
	}

	c.Reset()

	if got := c.ProcessSample(1); got != 0.25 {
		t.Fatalf("ProcessSample after Reset = %v, want 0.25", got)
	}

	for i, s := range c {
		if i == 1 && s.State() == [2]float64{} {
			t.Fatal("second section holds no state after a sample")
		}
	}

	c.Reset()

	for i, s := range c {
		if s.State() != [2]float64{} {
			t.Fatalf("section %d state after Reset = %v", i, s.State())
		}
	}
}
