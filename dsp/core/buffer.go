package core

// EnsureLen returns a slice with the requested length, reusing buf capacity if possible.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}

	if cap(buf) >= n {
		return buf[:n]
	}

	return make([]float64, n)
}

// Zero sets all values in buf to 0.
func Zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}

// CopyInto copies src into dst and returns the number of copied elements.
func CopyInto(dst, src []float64) int {
	n := min(len(dst), len(src))
	copy(dst[:n], src[:n])

	return n
}

// ClampBlock limits every sample of buf to [-limit, limit] in place.
func ClampBlock(buf []float64, limit float64) {
	for i, v := range buf {
		if v > limit {
			buf[i] = limit
		} else if v < -limit {
			buf[i] = -limit
		}
	}
}
