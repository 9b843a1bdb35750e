//go:build amd64

package simd

import "math"

// x86-64 float32 kernels. 8-way unrolling matches the AVX2 register
// width (256-bit = 8 float32s) so the compiler auto-vectorizes the hot
// loops; no assembly required.

func dot(a, b []float32) float32 {
	n := len(a)
	var s0, s1, s2, s3, s4, s5, s6, s7 float32
	i := 0
	for ; i <= n-8; i += 8 {
		s0 += a[i] * b[i]
		s1 += a[i+1] * b[i+1]
		s2 += a[i+2] * b[i+2]
		s3 += a[i+3] * b[i+3]
		s4 += a[i+4] * b[i+4]
		s5 += a[i+5] * b[i+5]
		s6 += a[i+6] * b[i+6]
		s7 += a[i+7] * b[i+7]
	}
	for ; i < n; i++ {
		s0 += a[i] * b[i]
	}
	return s0 + s1 + s2 + s3 + s4 + s5 + s6 + s7
}

func norm(v []float32) float32 {
	n := len(v)
	var s0, s1, s2, s3, s4, s5, s6, s7 float32
	i := 0
	for ; i <= n-8; i += 8 {
		s0 += v[i] * v[i]
		s1 += v[i+1] * v[i+1]
		s2 += v[i+2] * v[i+2]
		s3 += v[i+3] * v[i+3]
		s4 += v[i+4] * v[i+4]
		s5 += v[i+5] * v[i+5]
		s6 += v[i+6] * v[i+6]
		s7 += v[i+7] * v[i+7]
	}
	for ; i < n; i++ {
		s0 += v[i] * v[i]
	}
	sum := s0 + s1 + s2 + s3 + s4 + s5 + s6 + s7
	return float32(math.Sqrt(float64(sum)))
}

func normalizeInPlace(v []float32) {
	m := norm(v)
	if m == 0 {
		return
	}
	scale(v, 1/m)
}

func scale(v []float32, s float32) {
	n := len(v)
	i := 0
	for ; i <= n-8; i += 8 {
		v[i] *= s
		v[i+1] *= s
		v[i+2] *= s
		v[i+3] *= s
		v[i+4] *= s
		v[i+5] *= s
		v[i+6] *= s
		v[i+7] *= s
	}
	for ; i < n; i++ {
		v[i] *= s
	}
}
