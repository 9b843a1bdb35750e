//go:build arm64

package cpu

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// AArch64 mandates ASIMD (NEON), but the Linux hwcap probe is the
// authoritative answer where available. Darwin does not expose hwcaps, so
// Apple Silicon is handled explicitly.
func detectFeatures(f *Features) {
	f.HasNEON = cpu.ARM64.HasASIMD || runtime.GOOS == "darwin"
}
