//go:build amd64

package cpu

import "golang.org/x/sys/cpu"

// x86-64 feature probe via CPUID (golang.org/x/sys/cpu reads the CPUID
// leaves once at package init).
func detectFeatures(f *Features) {
	f.HasAVX = cpu.X86.HasAVX
	f.HasAVX2 = cpu.X86.HasAVX2
	f.HasFMA = cpu.X86.HasFMA
	f.HasSSE42 = cpu.X86.HasSSE42
}
