package kernel

// KMP is the Knuth-Morris-Pratt kernel. Build computes the LPS array
// (longest proper prefix that is also a suffix) once; FindFirst scans the
// text linearly and falls back through LPS on mismatch, so the search is
// O(n) and never moves backward in the text.
type KMP struct{}

// Name implements Searcher.
func (KMP) Name() string { return "kmp" }

// Build implements Searcher. It never fails.
func (KMP) Build(pattern []byte) (State, error) {
	return &kmpState{
		pattern: clone(pattern),
		lps:     buildLPS(pattern),
	}, nil
}

type kmpState struct {
	pattern []byte
	lps     []int
}

func buildLPS(pattern []byte) []int {
	m := len(pattern)
	lps := make([]int, m)

	length := 0
	i := 1
	for i < m {
		switch {
		case pattern[i] == pattern[length]:
			length++
			lps[i] = length
			i++
		case length != 0:
			length = lps[length-1]
		default:
			lps[i] = 0
			i++
		}
	}
	return lps
}

func (s *kmpState) FindFirst(text []byte) int {
	n := len(text)
	m := len(s.pattern)

	if m == 0 {
		return 0
	}
	if m > n {
		return -1
	}

	i, j := 0, 0
	for i < n {
		if text[i] == s.pattern[j] {
			i++
			j++
			if j == m {
				return i - j
			}
		} else if j != 0 {
			j = s.lps[j-1]
		} else {
			i++
		}
	}
	return -1
}
