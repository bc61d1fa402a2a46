package kernel

import "sort"

// Kmer is the seed-and-extend kernel: Build indexes every k-length window
// of the pattern into a posting map; FindFirst slides a k-window over the
// text, votes on alignment diagonals, and verifies every diagonal that
// collects at least MinHits votes with a full equality check before
// reporting it.
//
// This kernel is a heuristic: with MinHits above 1 it can miss occurrences
// whose k-mers are too sparse, and a pattern shorter than K indexes
// nothing. Parity with the scalar kernel holds when K <= len(pattern) and
// MinHits <= len(pattern)-K+1, because a true occurrence then places every
// pattern k-mer on its diagonal.
type Kmer struct {
	// K is the window length. Defaults to 8 when zero.
	K int
	// MinHits is the diagonal vote threshold. Defaults to 3 when zero.
	MinHits int
}

// Name implements Searcher.
func (Kmer) Name() string { return "kmer" }

// Build implements Searcher. It fails on negative tuning knobs.
func (s Kmer) Build(pattern []byte) (State, error) {
	k := s.K
	if k == 0 {
		k = 8
	}
	minHits := s.MinHits
	if minHits == 0 {
		minHits = 3
	}
	if k < 0 || minHits < 0 {
		return nil, &Error{Kind: BadConfig, Message: "kmer: k and min-hits must be positive"}
	}

	st := &kmerState{
		pattern: clone(pattern),
		k:       k,
		minHits: minHits,
		seeds:   make(map[string][]int),
	}
	if k > 0 && len(pattern) >= k {
		for i := 0; i+k <= len(pattern); i++ {
			key := string(pattern[i : i+k])
			st.seeds[key] = append(st.seeds[key], i)
		}
	}
	return st, nil
}

type kmerState struct {
	pattern []byte
	k       int
	minHits int
	seeds   map[string][]int
}

func (s *kmerState) FindFirst(text []byte) int {
	if len(s.pattern) == 0 {
		return 0
	}
	if len(s.seeds) == 0 || len(text) < s.k {
		return -1
	}

	votes := make(map[int]int)
	var candidates []int
	seen := make(map[int]bool)

	for pos := 0; pos+s.k <= len(text); pos++ {
		window := text[pos : pos+s.k]
		queryPositions, ok := s.seeds[string(window)]
		if !ok {
			continue
		}
		for _, qp := range queryPositions {
			diag := pos - qp
			if diag < 0 {
				continue
			}
			votes[diag]++
			if votes[diag] >= s.minHits && !seen[diag] {
				candidates = append(candidates, diag)
				seen[diag] = true
			}
		}
	}

	if len(candidates) == 0 {
		return -1
	}
	sort.Ints(candidates)

	m := len(s.pattern)
	for _, start := range candidates {
		if start+m > len(text) {
			continue
		}
		if string(text[start:start+m]) == string(s.pattern) {
			return start
		}
	}
	return -1
}
