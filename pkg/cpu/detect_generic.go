//go:build !amd64 && !arm64

package cpu

// No feature query on this platform; every flag stays false and only the
// scalar code paths run.
func detectFeatures(f *Features) {}
