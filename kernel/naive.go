package kernel

import "github.com/coregx/likematch/simd"

// Scalar is the nested-loop reference kernel. Every other kernel is held
// to parity with it; the oracle package uses it as the baseline.
type Scalar struct{}

// Name implements Searcher.
func (Scalar) Name() string { return "naive-scalar" }

// Build implements Searcher. It never fails.
func (Scalar) Build(pattern []byte) (State, error) {
	return &scalarState{pattern: clone(pattern)}, nil
}

type scalarState struct {
	pattern []byte
}

func (s *scalarState) FindFirst(text []byte) int {
	return scalarIndex(text, s.pattern)
}

// scalarIndex is the shared fallback scan: plain two-loop comparison.
func scalarIndex(text, pattern []byte) int {
	n := len(text)
	m := len(pattern)

	if m == 0 {
		return 0
	}
	if m > n {
		return -1
	}

	for i := 0; i <= n-m; i++ {
		matched := true
		for j := 0; j < m; j++ {
			if text[i+j] != pattern[j] {
				matched = false
				break
			}
		}
		if matched {
			return i
		}
	}
	return -1
}

// Vector is the vectorized naive kernel: it scans for the pattern's first
// byte in wide lanes (simd.Memchr) and verifies the full pattern at each
// candidate. The tail beyond the last full lane is handled by the same
// verify step, so no separate scalar epilogue is needed.
type Vector struct{}

// Name implements Searcher.
func (Vector) Name() string { return "naive-vector" }

// Build implements Searcher. It never fails.
func (Vector) Build(pattern []byte) (State, error) {
	return &vectorState{pattern: clone(pattern)}, nil
}

type vectorState struct {
	pattern []byte
}

func (s *vectorState) FindFirst(text []byte) int {
	n := len(text)
	m := len(s.pattern)

	if m == 0 {
		return 0
	}
	if m > n {
		return -1
	}

	first := s.pattern[0]
	i := 0
	for i+m <= n {
		cand := simd.Memchr(text[i:n-m+1], first)
		if cand == -1 {
			return -1
		}
		i += cand
		if simd.EqualBytes(text[i:i+m], s.pattern) {
			return i
		}
		i++
	}
	return -1
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
