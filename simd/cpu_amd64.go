//go:build amd64

package simd

import "golang.org/x/sys/cpu"

// CPU feature flags resolved once at package initialization. Dispatch cost
// is paid per pattern, not per byte.
var (
	// hasWideVectors gates the 4x-unrolled SWAR loops. On amd64 SSE2 is
	// baseline, but the unrolled path only wins when the core can retire
	// several loads per cycle, which AVX2-class hardware can.
	hasWideVectors = cpu.X86.HasAVX2

	// hasByteShuffle reports pshufb-class byte shuffles. The LUT-short
	// kernel models its nibble tables on that instruction and prefers the
	// blocked scan when it is present.
	hasByteShuffle = cpu.X86.HasSSSE3
)
