package simd

// Float32 vector kernels for inference-adjacent batch math. Like the
// byte transforms, the platform split is a performance choice only:
// every platform computes the same result within float32 rounding.

// Dot computes the dot product of two float32 vectors. Returns 0 if the
// vectors are empty or differ in length.
func Dot(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	return dot(a, b)
}

// Norm computes the Euclidean (L2) norm of a float32 vector.
func Norm(v []float32) float32 {
	if len(v) == 0 {
		return 0
	}
	return norm(v)
}

// NormalizeInPlace scales v to unit length in place. A zero vector is
// left unchanged.
func NormalizeInPlace(v []float32) {
	if len(v) == 0 {
		return
	}
	normalizeInPlace(v)
}

// Scale multiplies every element of v by s in place.
func Scale(v []float32, s float32) {
	if len(v) == 0 {
		return
	}
	scale(v, s)
}
