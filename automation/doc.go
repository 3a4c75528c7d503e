// Package automation models parameter automation: time-ordered curves with
// per-segment interpolation, and a recorder that captures live control
// movements into those curves.
//
// Curve values are normalized to [0, 1]. A curve belongs to one
// (track, parameter) pair and moves through the modes off, read, write,
// touch and latch. Capture happens between StartRecording and
// StopRecording; playback lookups work in every mode except off.
//
// Curve edit methods are pure: they return a new Curve and leave the
// receiver untouched.
package automation
