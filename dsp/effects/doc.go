// Package effects provides the per-track insert processors of the mixing
// engine: a three-band EQ (averaging and filtered variants), a compressor
// with sidechain detector input, a noise gate, a feedback-delay reverb and a
// tanh saturator.
//
// Every processor owns a fixed parameter schema. Writes through
// SetParameter never fail on range: values saturate at the schema bounds.
// Processing is mono and in place; callers handle multi-channel audio by
// running one instance per channel.
//
// Processors are single-threaded and not thread-safe. Parameter changes
// should occur outside audio processing callbacks.
package effects
