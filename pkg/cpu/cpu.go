package cpu

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
)

// CacheLineSize is the cache line size assumed for aligned allocations.
// 64 bytes holds for every x86-64 part and all current ARM server and
// Apple Silicon cores.
const CacheLineSize = 64

// Features describes the host CPU as seen by the runtime: logical core
// count, cache line size, and which vector extensions the dispatch layer
// may rely on.
type Features struct {
	// Arch is the Go architecture name (amd64, arm64, ...).
	Arch string

	// Cores is the number of logical CPUs available to the process.
	Cores int

	// CacheLineSize in bytes. Always CacheLineSize on supported targets.
	CacheLineSize int

	// x86 vector extensions.
	HasAVX   bool
	HasAVX2  bool
	HasFMA   bool
	HasSSE42 bool

	// ARM vector extensions.
	HasNEON bool
}

var (
	detectOnce sync.Once
	detected   Features
)

// Detect returns the process-wide capability snapshot, probing the CPU on
// the first call. The snapshot is returned by value and never changes for
// the lifetime of the process.
func Detect() Features {
	detectOnce.Do(func() {
		detected = Features{
			Arch:          runtime.GOARCH,
			Cores:         runtime.NumCPU(),
			CacheLineSize: CacheLineSize,
		}
		detectFeatures(&detected)
	})
	return detected
}

// FlagNames returns the names of the detected vector extensions, in a
// stable order. Empty when only scalar code can run.
func (f Features) FlagNames() []string {
	var flags []string
	if f.HasAVX {
		flags = append(flags, "avx")
	}
	if f.HasAVX2 {
		flags = append(flags, "avx2")
	}
	if f.HasFMA {
		flags = append(flags, "fma")
	}
	if f.HasSSE42 {
		flags = append(flags, "sse4.2")
	}
	if f.HasNEON {
		flags = append(flags, "neon")
	}
	return flags
}

// Summary renders a one-line human-readable description, e.g.
// "amd64, 8 cores, 64B cache line, features: avx avx2 fma sse4.2".
func (f Features) Summary() string {
	flags := f.FlagNames()
	feat := "none (scalar only)"
	if len(flags) > 0 {
		feat = strings.Join(flags, " ")
	}
	return fmt.Sprintf("%s, %d cores, %dB cache line, features: %s",
		f.Arch, f.Cores, f.CacheLineSize, feat)
}
