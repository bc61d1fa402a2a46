// Package fm implements an FM-index over a byte corpus for fast substring
// search: a suffix array, the Burrows-Wheeler transform remapped to dense
// alphabet ranks, cumulative counts and Occ checkpoints.
//
// The construction is the straightforward one (suffix sort, full BWT); it
// is correct and memory-proportional rather than build-time optimal. The
// caller appends nothing: New copies the text and appends the sentinel
// itself, after verifying the sentinel does not occur in the input. When
// the corpus is a concatenation of rows, a separator byte distinct from
// the sentinel keeps wildcard search from crossing row boundaries.
//
// Backward search walks the pattern right to left, maintaining a
// [top, bottom) range of suffix-array rows:
//
//	top    = C[r] + Occ(r, top)
//	bottom = C[r] + Occ(r, bottom)
//
// Occ(r, i) reads the nearest checkpoint at or below i and counts the
// remaining BWT run, with checkpoints every 128 positions.
package fm

import (
	"bytes"
	"fmt"
	"sort"
)

const checkpointInterval = 128

// IndexError reports an invalid corpus handed to New.
type IndexError struct {
	Message string
}

// Error implements the error interface.
func (e *IndexError) Error() string { return "fm: " + e.Message }

// Index is an immutable FM-index. Safe for concurrent readers once built.
type Index struct {
	text []byte // input plus sentinel
	sa   []int
	bwt  []byte // remapped to alphabet ranks
	c    []int  // symbols strictly below each rank
	cnt  []int  // occurrences per rank
	occ  [][]uint32

	byteToRank [256]int16
	rankToByte []byte

	sentinel      byte
	sentinelRank  int
	separator     byte
	separatorRank int // -1 when no separator
	hasSeparator  bool
}

// New builds an index over text. The sentinel must not occur in text.
func New(text []byte, sentinel byte) (*Index, error) {
	return build(text, sentinel, 0, false)
}

// NewWithSeparator builds an index over a corpus whose rows are joined by
// separator. Both reserved bytes must be absent from the row data and
// distinct from each other.
func NewWithSeparator(text []byte, sentinel, separator byte) (*Index, error) {
	if separator == sentinel {
		return nil, &IndexError{Message: "separator must differ from sentinel"}
	}
	return build(text, sentinel, separator, true)
}

func build(text []byte, sentinel, separator byte, hasSeparator bool) (*Index, error) {
	for _, b := range text {
		if b == sentinel {
			return nil, &IndexError{
				Message: fmt.Sprintf("sentinel byte 0x%02x appears in text", sentinel),
			}
		}
	}

	extended := make([]byte, 0, len(text)+1)
	extended = append(extended, text...)
	extended = append(extended, sentinel)

	sa := buildSuffixArray(extended)
	rawBWT := buildBWT(extended, sa, sentinel)

	ix := &Index{
		text:          extended,
		sa:            sa,
		sentinel:      sentinel,
		separator:     separator,
		hasSeparator:  hasSeparator,
		separatorRank: -1,
	}
	ix.buildAlphabet(extended)
	ix.sentinelRank = int(ix.byteToRank[sentinel])
	if hasSeparator {
		if r := ix.byteToRank[separator]; r >= 0 {
			ix.separatorRank = int(r)
		}
	}

	ix.c = make([]int, len(ix.cnt))
	total := 0
	for r, count := range ix.cnt {
		ix.c[r] = total
		total += count
	}

	ix.bwt = make([]byte, len(rawBWT))
	for i, b := range rawBWT {
		ix.bwt[i] = byte(ix.byteToRank[b])
	}

	ix.occ = buildOcc(ix.bwt, len(ix.cnt))
	return ix, nil
}

// Len returns the indexed length including the sentinel.
func (ix *Index) Len() int { return len(ix.text) }

// BackwardSearch returns the suffix-array range [top, bottom) of suffixes
// prefixed by pattern, and whether any exist. The empty pattern matches
// everywhere.
func (ix *Index) BackwardSearch(pattern []byte) (top, bottom int, ok bool) {
	if len(pattern) == 0 {
		return 0, ix.Len(), true
	}

	top, bottom = 0, ix.Len()
	for i := len(pattern) - 1; i >= 0; i-- {
		r := ix.rankForByte(pattern[i])
		if r < 0 || ix.cnt[r] == 0 {
			return 0, 0, false
		}

		top = ix.c[r] + ix.occAt(r, top)
		bottom = ix.c[r] + ix.occAt(r, bottom)
		if top >= bottom {
			return 0, 0, false
		}
	}
	return top, bottom, true
}

// Search returns all occurrence positions of pattern in the original text,
// sorted ascending.
func (ix *Index) Search(pattern []byte) []int {
	top, bottom, ok := ix.BackwardSearch(pattern)
	if !ok {
		return nil
	}
	out := make([]int, bottom-top)
	copy(out, ix.sa[top:bottom])
	sort.Ints(out)
	return out
}

// SearchWildcard is Search with '_' matching any single byte except the
// sentinel and the separator. At each wildcard step the search branches
// over the distinct ranks present in the current BWT range.
func (ix *Index) SearchWildcard(pattern []byte) []int {
	if len(pattern) == 0 {
		out := make([]int, ix.Len())
		for i := range out {
			out[i] = i
		}
		return out
	}

	found := make(map[int]struct{})
	ix.wildcardStep(pattern, len(pattern)-1, 0, ix.Len(), found)

	out := make([]int, 0, len(found))
	for pos := range found {
		out = append(out, pos)
	}
	sort.Ints(out)
	return out
}

func (ix *Index) wildcardStep(pattern []byte, idx, top, bottom int, found map[int]struct{}) {
	if idx < 0 {
		for _, pos := range ix.sa[top:bottom] {
			found[pos] = struct{}{}
		}
		return
	}

	ch := pattern[idx]
	if ch == '_' {
		seen := make([]bool, len(ix.cnt))
		for _, rb := range ix.bwt[top:bottom] {
			r := int(rb)
			if seen[r] {
				continue
			}
			seen[r] = true
			if r == ix.sentinelRank || r == ix.separatorRank {
				continue
			}
			if ix.cnt[r] == 0 {
				continue
			}

			newTop := ix.c[r] + ix.occAt(r, top)
			newBottom := ix.c[r] + ix.occAt(r, bottom)
			if newTop < newBottom {
				ix.wildcardStep(pattern, idx-1, newTop, newBottom, found)
			}
		}
		return
	}

	r := ix.rankForByte(ch)
	if r < 0 || ix.cnt[r] == 0 {
		return
	}
	newTop := ix.c[r] + ix.occAt(r, top)
	newBottom := ix.c[r] + ix.occAt(r, bottom)
	if newTop < newBottom {
		ix.wildcardStep(pattern, idx-1, newTop, newBottom, found)
	}
}

// occAt counts rank occurrences in bwt[0:index] from the nearest
// checkpoint at or below index.
func (ix *Index) occAt(rank, index int) int {
	if index > len(ix.bwt) {
		index = len(ix.bwt)
	}
	base := index / checkpointInterval
	count := int(ix.occ[base][rank])
	for _, r := range ix.bwt[base*checkpointInterval : index] {
		if int(r) == rank {
			count++
		}
	}
	return count
}

func (ix *Index) rankForByte(b byte) int {
	return int(ix.byteToRank[b])
}

func (ix *Index) buildAlphabet(text []byte) {
	var byByte [256]int
	for _, b := range text {
		byByte[b]++
	}

	for i := range ix.byteToRank {
		ix.byteToRank[i] = -1
	}
	for b := 0; b < 256; b++ {
		if byByte[b] == 0 {
			continue
		}
		ix.byteToRank[b] = int16(len(ix.rankToByte))
		ix.rankToByte = append(ix.rankToByte, byte(b))
		ix.cnt = append(ix.cnt, byByte[b])
	}
}

func buildSuffixArray(text []byte) []int {
	sa := make([]int, len(text))
	for i := range sa {
		sa[i] = i
	}
	sort.Slice(sa, func(i, j int) bool {
		return bytes.Compare(text[sa[i]:], text[sa[j]:]) < 0
	})
	return sa
}

func buildBWT(text []byte, sa []int, sentinel byte) []byte {
	bwt := make([]byte, len(sa))
	for i, pos := range sa {
		if pos == 0 {
			bwt[i] = sentinel
		} else {
			bwt[i] = text[pos-1]
		}
	}
	return bwt
}

func buildOcc(bwt []byte, sigma int) [][]uint32 {
	counts := make([]uint32, sigma)
	occ := [][]uint32{append([]uint32(nil), counts...)}

	for idx, r := range bwt {
		counts[r]++
		if (idx+1)%checkpointInterval == 0 {
			occ = append(occ, append([]uint32(nil), counts...))
		}
	}
	if len(bwt)%checkpointInterval != 0 {
		occ = append(occ, append([]uint32(nil), counts...))
	}
	return occ
}
