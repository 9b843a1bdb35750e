package simd

import (
	"math"
	"math/rand"
	"testing"
)

const epsilon = 1e-4

func approxEqual(a, b, eps float32) bool {
	return math.Abs(float64(a-b)) < float64(eps)
}

func dotReference(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func TestDot(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"simple", []float32{1, 2, 3}, []float32{4, 5, 6}, 32},
		{"empty", []float32{}, []float32{}, 0},
		{"mismatched lengths", []float32{1, 2}, []float32{1}, 0},
		{"perpendicular", []float32{1, 0, 0}, []float32{0, 1, 0}, 0},
		{"negative", []float32{-1, -2, -3}, []float32{4, 5, 6}, -32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Dot(tt.a, tt.b); !approxEqual(got, tt.expected, epsilon) {
				t.Errorf("Dot() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDotMatchesReferenceOnLargeVectors(t *testing.T) {
	// Exercise the unrolled/assembly path well past the vector width,
	// including a remainder that does not divide evenly by 8.
	for _, n := range []int{8, 64, 257, 1024} {
		a := make([]float32, n)
		b := make([]float32, n)
		for i := 0; i < n; i++ {
			a[i] = rand.Float32()*2 - 1
			b[i] = rand.Float32()*2 - 1
		}
		want := dotReference(a, b)
		if got := Dot(a, b); !approxEqual(got, want, epsilon*float32(n)) {
			t.Errorf("n=%d: Dot() = %v, want %v", n, got, want)
		}
	}
}

func TestNorm(t *testing.T) {
	if got := Norm([]float32{3, 4}); !approxEqual(got, 5, epsilon) {
		t.Errorf("Norm({3,4}) = %v, want 5", got)
	}
	if got := Norm(nil); got != 0 {
		t.Errorf("Norm(nil) = %v, want 0", got)
	}
}

func TestNormalizeInPlace(t *testing.T) {
	v := []float32{3, 4}
	NormalizeInPlace(v)
	if !approxEqual(v[0], 0.6, epsilon) || !approxEqual(v[1], 0.8, epsilon) {
		t.Errorf("NormalizeInPlace = %v, want {0.6, 0.8}", v)
	}
	if got := Norm(v); !approxEqual(got, 1, epsilon) {
		t.Errorf("Norm after normalize = %v, want 1", got)
	}

	// Zero vector stays unchanged.
	z := []float32{0, 0, 0}
	NormalizeInPlace(z)
	for _, x := range z {
		if x != 0 {
			t.Errorf("zero vector modified: %v", z)
		}
	}
}

func TestScale(t *testing.T) {
	v := make([]float32, 19)
	for i := range v {
		v[i] = float32(i)
	}
	Scale(v, 2)
	for i := range v {
		if !approxEqual(v[i], float32(2*i), epsilon) {
			t.Errorf("Scale: v[%d] = %v, want %v", i, v[i], 2*i)
		}
	}
}
