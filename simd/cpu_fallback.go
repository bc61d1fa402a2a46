//go:build !amd64 && !arm64

package simd

// No probe on other platforms: plain SWAR loops only.
var (
	hasWideVectors = false
	hasByteShuffle = false
)
