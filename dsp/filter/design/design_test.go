package design

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-daw/dsp/core"
	"github.com/cwbudde/algo-daw/dsp/filter/biquad"
)

const sr = 48000

func TestPassResponses(t *testing.T) {
	tests := []struct {
		name   string
		c      biquad.Coefficients
		freq   float64
		wantDB float64
		tolDB  float64
	}{
		{"lowpass passes DC", Lowpass(1000, DefaultQ, sr), 10, 0, 0.1},
		{"lowpass cutoff -3dB", Lowpass(1000, DefaultQ, sr), 1000, -3.01, 0.1},
		{"lowpass stops high", Lowpass(1000, DefaultQ, sr), 16000, -56.9, 0.5},
		{"highpass stops low", Highpass(1000, DefaultQ, sr), 50, -52.1, 0.5},
		{"highpass passes high", Highpass(1000, DefaultQ, sr), 15000, 0, 0.2},
		{"bandpass center unity", Bandpass(2000, 1, sr), 2000, 0, 0.01},
		{"peak center gain", Peak(1000, 6, 1, sr), 1000, 6, 0.01},
		{"low shelf DC gain", LowShelf(250, -9, DefaultQ, sr), 1, -9, 0.05},
		{"high shelf top gain", HighShelf(4000, 9, DefaultQ, sr), 23999, 9, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.LinearToDB(MagnitudeAt(tt.c, tt.freq, sr))
			if math.Abs(got-tt.wantDB) > tt.tolDB {
				t.Fatalf("response at %v Hz = %.3f dB, want %.3f±%.2f", tt.freq, got, tt.wantDB, tt.tolDB)
			}
		})
	}
}

func TestInvalidFrequencyIsPassthrough(t *testing.T) {
	for _, c := range []biquad.Coefficients{
		Lowpass(0, DefaultQ, sr),
		Highpass(sr, DefaultQ, sr),
		Bandpass(math.NaN(), 1, sr),
		Peak(1000, 6, 1, 0),
	} {
		if c != biquad.Passthrough() {
			t.Fatalf("expected passthrough, got %+v", c)
		}
	}
}
