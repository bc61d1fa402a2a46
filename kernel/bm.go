package kernel

// BM is the Boyer-Moore kernel. Build computes the bad-character table
// (last occurrence per byte, -1 if absent) and the good-suffix shift table
// via border positions. FindFirst compares right-to-left within each
// alignment and advances by the larger of the two shifts.
type BM struct{}

// Name implements Searcher.
func (BM) Name() string { return "bm" }

// Build implements Searcher. It never fails.
func (BM) Build(pattern []byte) (State, error) {
	return &bmState{
		pattern:    clone(pattern),
		badChar:    buildBadChar(pattern),
		goodSuffix: buildGoodSuffix(pattern),
	}, nil
}

type bmState struct {
	pattern    []byte
	badChar    [256]int
	goodSuffix []int
}

func buildBadChar(pattern []byte) [256]int {
	var table [256]int
	for i := range table {
		table[i] = -1
	}
	for i, b := range pattern {
		table[b] = i
	}
	return table
}

// buildGoodSuffix returns the shift table indexed by mismatch position + 1;
// index 0 holds the period of the pattern, used after a full match.
func buildGoodSuffix(pattern []byte) []int {
	m := len(pattern)
	shift := make([]int, m+1)
	borderPos := make([]int, m+1)

	i, j := m, m+1
	borderPos[i] = j
	for i > 0 {
		for j <= m && pattern[i-1] != pattern[j-1] {
			if shift[j] == 0 {
				shift[j] = j - i
			}
			j = borderPos[j]
		}
		i--
		j--
		borderPos[i] = j
	}

	j = borderPos[0]
	for i := 0; i <= m; i++ {
		if shift[i] == 0 {
			shift[i] = j
		}
		if i == j {
			j = borderPos[j]
		}
	}
	return shift
}

func (s *bmState) FindFirst(text []byte) int {
	pos, _ := s.findAt(text, 0)
	return pos
}

// findAt returns the first occurrence at or after start plus the shift to
// apply for the next search, or (-1, 0).
func (s *bmState) findAt(text []byte, start int) (pos, nextShift int) {
	n := len(text)
	m := len(s.pattern)

	if m == 0 {
		if start > n {
			return -1, 0
		}
		return start, 1
	}
	if m > n {
		return -1, 0
	}

	i := start
	for i <= n-m {
		j := m - 1
		for j >= 0 && s.pattern[j] == text[i+j] {
			j--
		}

		if j < 0 {
			return i, s.goodSuffix[0]
		}

		bad := text[i+j]
		bcShift := j - s.badChar[bad]
		if bcShift < 1 {
			bcShift = 1
		}
		gsShift := s.goodSuffix[j+1]
		if gsShift > bcShift {
			i += gsShift
		} else {
			i += bcShift
		}
	}
	return -1, 0
}

// FindAll implements AllFinder. After a full match the window advances by
// the pattern period (goodSuffix[0]), which is the minimal distance between
// overlapping occurrences, so no match is skipped.
func (s *bmState) FindAll(text []byte) []int {
	if len(s.pattern) == 0 {
		out := make([]int, len(text)+1)
		for i := range out {
			out[i] = i
		}
		return out
	}

	var out []int
	at := 0
	for {
		pos, shift := s.findAt(text, at)
		if pos < 0 {
			break
		}
		out = append(out, pos)
		at = pos + shift
	}
	return out
}
