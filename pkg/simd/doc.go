// Package simd routes data-parallel batch transforms to the widest
// vector code path the host CPU supports, always with a byte-identical
// scalar fallback.
//
// An Engine is built once from a cpu.Features snapshot and selects its
// kernel chain at construction (wide 32-byte blocks behind AVX2, narrow
// 16-byte blocks behind SSE4.2 or NEON, scalar always). Per item, the
// widest kernel whose block width fits the item runs; shorter items fall
// through to the next kernel. Vectorization is strictly a performance
// choice: all three paths produce identical output for identical input,
// and the equivalence is enforced by tests across the width boundaries.
//
// The package also exposes float32 vector kernels (Dot, Norm,
// NormalizeInPlace, Scale) with the same per-platform split the byte
// transforms use:
//
//   - x86/amd64: 8-way unrolled loops the compiler auto-vectorizes with
//     AVX2/SSE
//   - arm64: NEON via the viterin/vek SIMD library
//   - fallback: vek's optimized pure Go implementations
//
// # Usage
//
//	engine := simd.New(cpu.Detect())
//	out := engine.TransformBatch(items)
//
//	stats := engine.PerfStats()
//	fmt.Printf("%d ops, avg %dns\n", stats.Operations, stats.AvgTimeNs)
//
// # Thread Safety
//
// Engine methods and the float32 kernels are safe for concurrent use.
// The kernel chain is fixed after construction; only the perf counters
// mutate, and those are atomics.
package simd
