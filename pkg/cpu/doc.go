// Package cpu probes the host processor once for vector-instruction support.
//
// The probe runs a single time per process and produces an immutable
// Features snapshot that every SIMD dispatch decision reads afterwards:
//
//   - x86/amd64: AVX, AVX2, FMA and SSE4.2 via golang.org/x/sys/cpu
//   - arm64: NEON (ASIMD, mandatory on AArch64)
//   - everything else: all flags false, scalar code paths only
//
// Detection never fails. On platforms where the feature query is
// unavailable the snapshot simply reports no vector support, and callers
// fall back to scalar implementations; correctness never depends on the
// probe succeeding.
//
// # Usage
//
//	feat := cpu.Detect()
//	if feat.HasAVX2 {
//	    // 32-byte wide code path is safe
//	}
//	fmt.Println(feat.Summary())
//
// # Thread Safety
//
// Detect is safe for concurrent use; the snapshot is write-once and
// returned by value.
package cpu
