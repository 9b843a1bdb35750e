//go:build !amd64 && !arm64

package simd

import "github.com/viterin/vek/vek32"

// Fallback float32 kernels. vek32's pure Go implementations still beat
// naive loops through better memory access patterns.

func dot(a, b []float32) float32 {
	return vek32.Dot(a, b)
}

func norm(v []float32) float32 {
	return vek32.Norm(v)
}

func normalizeInPlace(v []float32) {
	n := vek32.Norm(v)
	if n == 0 {
		return
	}
	vek32.DivNumber_Inplace(v, n)
}

func scale(v []float32, s float32) {
	vek32.MulNumber_Inplace(v, s)
}
