// Package meter provides block level metering and a coarse spectral
// profile for mixer strips.
//
// Build with -tags fastmath to use the approximate logarithm from
// algo-approx for the dB conversion of meter readings.
package meter
