package meter

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// Band edges of the profile in Hz. They match the shelf corners of the
// filtered EQ.
const (
	LowMidEdge  = 250.0
	MidHighEdge = 4000.0
)

// Profile is the coarse spectral balance of a block.
type Profile struct {
	// Low, Mid and High are the shares of spectral energy below LowMidEdge,
	// between the edges, and above MidHighEdge. They sum to 1 for a
	// non-silent block.
	Low  float64 `json:"low"`
	Mid  float64 `json:"mid"`
	High float64 `json:"high"`
	// Centroid is the energy-weighted mean frequency in Hz.
	Centroid float64 `json:"centroid"`
}

// Analyze computes the profile of a Hann-windowed block, zero-padded to the
// next power of two.
func Analyze(block []float64, sampleRate float64) (Profile, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return Profile{}, fmt.Errorf("meter: sample rate must be positive and finite: %f", sampleRate)
	}

	if len(block) < 2 {
		return Profile{}, errors.New("meter: profile needs at least two samples")
	}

	n := nextPowerOf2(len(block))
	in := make([]complex128, n)

	denom := float64(len(block) - 1)
	for i, x := range block {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/denom)
		in[i] = complex(x*w, 0)
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return Profile{}, fmt.Errorf("meter: fft plan: %w", err)
	}

	out := make([]complex128, n)

	err = plan.Forward(out, in)
	if err != nil {
		return Profile{}, fmt.Errorf("meter: fft: %w", err)
	}

	var p Profile

	var total, weighted float64

	binHz := sampleRate / float64(n)
	for k := 1; k <= n/2; k++ {
		re, im := real(out[k]), imag(out[k])
		e := re*re + im*im
		f := float64(k) * binHz

		switch {
		case f < LowMidEdge:
			p.Low += e
		case f < MidHighEdge:
			p.Mid += e
		default:
			p.High += e
		}

		total += e
		weighted += e * f
	}

	if total == 0 {
		return Profile{}, nil
	}

	p.Low /= total
	p.Mid /= total
	p.High /= total
	p.Centroid = weighted / total

	return p, nil
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
