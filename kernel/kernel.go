// Package kernel provides interchangeable literal-substring search kernels
// for the LIKE engine.
//
// A kernel is split into two pieces, mirroring the build-once/search-many
// life cycle of a compiled LIKE literal:
//
//   - Searcher: a factory that precomputes per-pattern state (LPS arrays,
//     shift tables, nibble LUTs, transform images, posting maps).
//   - State: the precomputed artifact; FindFirst locates the leftmost
//     occurrence of the pattern in a text.
//
// Every kernel satisfies the same contracts:
//
//   - Parity: results identical to the scalar nested-loop search on every
//     finite input.
//   - Determinism: no hidden state between calls.
//   - No allocation on the search path beyond what FindAll's result needs.
//   - Safety: read-only inputs, in-bounds for all pattern/text sizes.
//
// Empty patterns match at offset 0 (the FFT kernel rejects them at Build);
// patterns longer than the text never match.
//
// Basic usage:
//
//	st, err := kernel.BM{}.Build([]byte("ababd"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pos := st.FindFirst([]byte("ababcabcabababd")) // 10
package kernel

import "github.com/coregx/likematch/simd"

// State is the precomputed search state for a single pattern.
//
// FindFirst returns the smallest byte offset i such that
// text[i:i+len(pattern)] equals the pattern, or -1 if the pattern does not
// occur. An empty pattern matches at offset 0.
type State interface {
	FindFirst(text []byte) int
}

// Searcher builds search state for a pattern. Implementations are small
// value types carrying their tuning knobs (k-mer size, wildcard byte);
// Build is pure and may be called concurrently.
type Searcher interface {
	// Name identifies the kernel in CLI flags and oracle reports.
	Name() string

	// Build precomputes the search state for pattern. The pattern bytes
	// are copied; the caller may reuse the slice.
	Build(pattern []byte) (State, error)
}

// AllFinder is an optional State extension for kernels that can enumerate
// occurrences faster than the generic trimmed-suffix loop (Boyer-Moore
// reuses its good-suffix period).
type AllFinder interface {
	FindAll(text []byte) []int
}

// FindAll returns all occurrence offsets of the state's pattern in text,
// strictly increasing. Overlapping occurrences are reported: after each
// hit the search resumes one byte later.
//
// An empty pattern matches before every byte and at the end, so the result
// is [0, 1, ..., len(text)].
func FindAll(st State, text []byte) []int {
	if af, ok := st.(AllFinder); ok {
		return af.FindAll(text)
	}

	var out []int
	cursor := 0
	for cursor <= len(text) {
		rel := st.FindFirst(text[cursor:])
		if rel < 0 {
			break
		}
		abs := cursor + rel
		out = append(out, abs)
		cursor = abs + 1
	}
	return out
}

// Auto returns the best generic kernel for this machine: the vectorized
// naive searcher when the CPU probe reports wide vector support, the
// scalar one otherwise.
func Auto() Searcher {
	if simd.HasWideVectors() {
		return Vector{}
	}
	return Scalar{}
}

// Lookup resolves a kernel by its CLI name. Returns an input-shape error
// for unknown names.
func Lookup(name string) (Searcher, error) {
	switch name {
	case "naive", "auto":
		return Auto(), nil
	case "naive-scalar":
		return Scalar{}, nil
	case "naive-vector":
		return Vector{}, nil
	case "kmp":
		return KMP{}, nil
	case "bm":
		return BM{}, nil
	case "lut-short":
		return LUTShort{}, nil
	case "fft":
		return FFT{Wildcard: '_'}, nil
	case "kmer":
		return Kmer{K: 8, MinHits: 3}, nil
	default:
		return nil, &Error{
			Kind:    BadInput,
			Message: "unknown kernel " + name,
		}
	}
}

// Names lists the kernels Lookup accepts, in menu order.
func Names() []string {
	return []string{
		"naive", "naive-scalar", "naive-vector",
		"kmp", "bm", "lut-short", "fft", "kmer",
	}
}
