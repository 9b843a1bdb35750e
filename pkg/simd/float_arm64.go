//go:build arm64

package simd

import "github.com/viterin/vek/vek32"

// ARM64 float32 kernels via viterin/vek, which carries NEON assembly
// for float32 vectors on this platform.

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
