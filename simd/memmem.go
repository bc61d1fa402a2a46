package simd

import "bytes"

// Memmem returns the index of the first instance of needle in haystack,
// or -1 if needle is not present.
//
// The search anchors on the rarest needle byte (per the static frequency
// table), scans for it with Memchr, and verifies the full needle around
// each candidate. For needles whose bytes are all common this still
// degrades gracefully: verification is a single EqualBytes per candidate.
//
// Example:
//
//	pos := simd.Memmem([]byte("hello world"), []byte("world"))
//	// pos == 6
func Memmem(haystack, needle []byte) int {
	m := len(needle)
	n := len(haystack)

	if m == 0 {
		return 0
	}
	if n == 0 || m > n {
		return -1
	}
	if m == 1 {
		return Memchr(haystack, needle[0])
	}

	rare, rareIdx := RarestByte(needle)

	searchStart := 0
	for {
		cand := Memchr(haystack[searchStart:], rare)
		if cand == -1 {
			return -1
		}
		cand += searchStart

		start := cand - rareIdx
		if start >= 0 && start+m <= n && EqualBytes(haystack[start:start+m], needle) {
			return start
		}

		searchStart = cand + 1
		if searchStart >= n {
			return -1
		}
	}
}

// EqualBytes reports whether a and b hold the same bytes. Slices of
// different lengths are never equal. The stdlib already lowers
// bytes.Equal to a vectorized memequal, so this is a thin, inlinable
// wrapper kept for symmetry with the other
// primitives.
func EqualBytes(a, b []byte) bool {
	return bytes.Equal(a, b)
}
