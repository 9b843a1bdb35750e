package simd

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/forgeworks/nativert/pkg/cpu"
	"github.com/forgeworks/nativert/pkg/memory"
)

// referenceUpper is the trivially-correct model the kernels must match.
func referenceUpper(src []byte) []byte {
	out := make([]byte, len(src))
	for i, c := range src {
		if c >= 'a' && c <= 'z' {
			c -= 32
		}
		out[i] = c
	}
	return out
}

func randomBytes(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(rand.Intn(256)) // includes non-ASCII
	}
	return b
}

// Lengths straddle both kernel width boundaries (16 and 32).
var boundaryLengths = []int{0, 1, 15, 16, 17, 31, 32, 33, 63, 64, 65, 4096}

func TestKernelEquivalence(t *testing.T) {
	feat := cpu.Detect()
	for _, forced := range []Kernel{KernelScalar, KernelNarrow, KernelWide} {
		engine := New(feat, WithForcedKernel(forced))
		for _, n := range boundaryLengths {
			src := randomBytes(n)
			orig := append([]byte(nil), src...)
			got := engine.TransformBatch([][]byte{src})[0]
			want := referenceUpper(src)
			if !bytes.Equal(got, want) {
				t.Errorf("kernel %s, len %d: output differs from scalar reference", forced, n)
			}
			if !bytes.Equal(src, orig) {
				t.Errorf("kernel %s, len %d: input modified", forced, n)
			}
		}
	}
}

func TestTransformCases(t *testing.T) {
	engine := New(cpu.Detect())
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"lower", "hello world", "HELLO WORLD"},
		{"already upper", "HELLO", "HELLO"},
		{"mixed with digits", "abc-123-XYZ", "ABC-123-XYZ"},
		{"long block", "the quick brown fox jumps over the lazy dog 0123456789", "THE QUICK BROWN FOX JUMPS OVER THE LAZY DOG 0123456789"},
		{"high bytes untouched", "caf\xc3\xa9", "CAF\xc3\xa9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.TransformBatch([][]byte{[]byte(tt.in)})[0]
			if string(got) != tt.want {
				t.Errorf("TransformBatch(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTransformBatchInPlace(t *testing.T) {
	engine := New(cpu.Detect())
	items := [][]byte{[]byte("abc"), []byte("this line is well over thirty-two bytes long")}
	want := [][]byte{referenceUpper(items[0]), referenceUpper(items[1])}
	engine.TransformBatchInPlace(items)
	for i := range items {
		if !bytes.Equal(items[i], want[i]) {
			t.Errorf("item %d = %q, want %q", i, items[i], want[i])
		}
	}
}

func TestTransformBatchStringsUsesScratchPool(t *testing.T) {
	mgr := memory.NewManager(0)
	defer mgr.Close()
	engine := New(cpu.Detect(), WithMemoryManager(mgr))

	in := []string{"alpha", "beta", "gamma gamma gamma gamma gamma gamma"}
	out := engine.TransformBatchStrings(in)
	want := []string{"ALPHA", "BETA", "GAMMA GAMMA GAMMA GAMMA GAMMA GAMMA"}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %q, want %q", i, out[i], want[i])
		}
	}

	// Repeated batches reuse the scratch buffer: at most one pool miss
	// beyond the first round.
	pool := mgr.Pool(scratchSize)
	before := pool.Stats().Allocations
	for i := 0; i < 50; i++ {
		engine.TransformBatchStrings(in)
	}
	after := pool.Stats().Allocations
	if after != before {
		t.Errorf("scratch pool allocated %d new buffers, want 0", after-before)
	}
}

func TestChainSelection(t *testing.T) {
	tests := []struct {
		name string
		feat cpu.Features
		want []Kernel
	}{
		{"avx2 machine", cpu.Features{HasAVX2: true, HasSSE42: true}, []Kernel{KernelWide, KernelNarrow, KernelScalar}},
		{"sse only", cpu.Features{HasSSE42: true}, []Kernel{KernelNarrow, KernelScalar}},
		{"neon", cpu.Features{HasNEON: true}, []Kernel{KernelNarrow, KernelScalar}},
		{"no features", cpu.Features{}, []Kernel{KernelScalar}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.feat).Kernels()
			if len(got) != len(tt.want) {
				t.Fatalf("Kernels() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Kernels() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestNoVectorSupportMatchesWideResult(t *testing.T) {
	// A machine with no vector extensions must produce output
	// byte-identical to the wide path on a capable machine.
	scalarOnly := New(cpu.Features{})
	capable := New(cpu.Features{}, WithForcedKernel(KernelWide))

	src := randomBytes(64)
	a := scalarOnly.TransformBatch([][]byte{src})[0]
	b := capable.TransformBatch([][]byte{src})[0]
	if !bytes.Equal(a, b) {
		t.Error("scalar-only output differs from wide-path output")
	}
}

func TestPerfStats(t *testing.T) {
	engine := New(cpu.Detect())
	if got := engine.PerfStats(); got.Operations != 0 || got.AvgTimeNs != 0 {
		t.Errorf("fresh engine stats = %+v, want zeros", got)
	}
	for i := 0; i < 5; i++ {
		engine.TransformBatch([][]byte{[]byte("some work to time")})
	}
	got := engine.PerfStats()
	if got.Operations != 5 {
		t.Errorf("Operations = %d, want 5", got.Operations)
	}
}

func BenchmarkTransformBatch(b *testing.B) {
	engine := New(cpu.Detect())
	items := make([][]byte, 256)
	for i := range items {
		items[i] = randomBytes(128)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.TransformBatchInPlace(items)
	}
}
