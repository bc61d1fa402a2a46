//go:build arm64

package simd

import "golang.org/x/sys/cpu"

// NEON (ASIMD) is baseline on arm64 in practice, but the kernel respects
// the probe so exotic cores degrade to the plain SWAR loops.
var (
	hasWideVectors = cpu.ARM64.HasASIMD
	hasByteShuffle = cpu.ARM64.HasASIMD
)
