// Package delay provides the circular delay line behind the reverb insert.
package delay

import "fmt"

// Line is a circular delay line.
type Line struct {
	buffer   []float64
	writePos int
}

// New returns a delay line of fixed size.
func New(size int) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay size must be > 0: %d", size)
	}

	return &Line{buffer: make([]float64, size)}, nil
}

// Len returns internal buffer size.
func (d *Line) Len() int {
	return len(d.buffer)
}

// Write writes one sample.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample

	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Read reads the sample written delay steps ago, 1 <= delay <= Len().
// A delay of Len() returns the oldest sample, which the next Write overwrites.
func (d *Line) Read(delay int) float64 {
	size := len(d.buffer)
	if size == 0 {
		return 0
	}

	if delay < 1 {
		delay = 1
	} else if delay > size {
		delay = size
	}

	readPos := (d.writePos - delay + size) % size

	return d.buffer[readPos]
}

// Comb runs one sample through a feedback comb spanning the whole line: it
// returns the sample written Len() steps ago and writes x plus that sample
// scaled by feedback.
func (d *Line) Comb(x, feedback float64) float64 {
	delayed := d.buffer[d.writePos]
	d.Write(x + delayed*feedback)

	return delayed
}

// Resize changes the line length. The contents are cleared.
func (d *Line) Resize(size int) error {
	if size <= 0 {
		return fmt.Errorf("delay size must be > 0: %d", size)
	}

	if cap(d.buffer) >= size {
		d.buffer = d.buffer[:size]
	} else {
		d.buffer = make([]float64, size)
	}

	d.Reset()

	return nil
}

// Reset clears line state.
func (d *Line) Reset() {
	clear(d.buffer)

	d.writePos = 0
}
