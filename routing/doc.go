// Package routing models the signal-flow topology of a session: buses that
// group tracks, arbitrary track-to-destination sends with cycle checks, and
// sidechain links that pick the detector signal of a compressor track.
//
// None of the types are safe for concurrent use.
package routing
