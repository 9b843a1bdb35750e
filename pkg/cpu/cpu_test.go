package cpu

import (
	"runtime"
	"strings"
	"testing"
)

func TestDetectBasics(t *testing.T) {
	f := Detect()

	if f.Cores < 1 {
		t.Errorf("Cores = %d, want >= 1", f.Cores)
	}
	if f.CacheLineSize != CacheLineSize {
		t.Errorf("CacheLineSize = %d, want %d", f.CacheLineSize, CacheLineSize)
	}
	if f.Arch != runtime.GOARCH {
		t.Errorf("Arch = %q, want %q", f.Arch, runtime.GOARCH)
	}
}

func TestDetectIsStable(t *testing.T) {
	// The snapshot is write-once: every call must return the same value.
	a := Detect()
	b := Detect()
	if a != b {
		t.Errorf("Detect() not stable: %+v vs %+v", a, b)
	}
}

func TestFlagsMatchArch(t *testing.T) {
	f := Detect()
	switch runtime.GOARCH {
	case "amd64":
		if f.HasNEON {
			t.Error("HasNEON true on amd64")
		}
		// AVX2 implies AVX on every real part.
		if f.HasAVX2 && !f.HasAVX {
			t.Error("HasAVX2 without HasAVX")
		}
	case "arm64":
		if f.HasAVX || f.HasAVX2 || f.HasFMA || f.HasSSE42 {
			t.Error("x86 flags set on arm64")
		}
	default:
		if len(f.FlagNames()) != 0 {
			t.Errorf("flags %v set on unsupported arch", f.FlagNames())
		}
	}
}

func TestSummary(t *testing.T) {
	f := Features{Arch: "riscv64", Cores: 4, CacheLineSize: 64}
	got := f.Summary()
	if !strings.Contains(got, "scalar only") {
		t.Errorf("Summary() = %q, want scalar-only note", got)
	}

	f = Features{Arch: "amd64", Cores: 8, CacheLineSize: 64, HasAVX: true, HasAVX2: true, HasFMA: true, HasSSE42: true}
	got = f.Summary()
	for _, want := range []string{"avx", "avx2", "fma", "sse4.2", "8 cores"} {
		if !strings.Contains(got, want) {
			t.Errorf("Summary() = %q, missing %q", got, want)
		}
	}
}
