package kernel

import (
	"math/bits"

	"github.com/coregx/likematch/simd"
)

// LUTShort is the short-pattern kernel for patterns of at most 8 bytes.
//
// Build selects the rarest pattern byte (lowest occurrence count inside the
// pattern, leftmost on ties) as a signature and precomputes two 16-entry
// nibble lookup tables with 0xFF at the signature's low and high nibble.
// FindFirst runs the shuffle-style scan over 16-byte windows: each lane
// combines the two table lookups with AND, producing a candidate bitmask
// whose set bits are verified against the full pattern.
//
// Patterns longer than 8 bytes fall back to the scalar scan; single-byte
// patterns short-circuit to a linear byte scan. On hardware without a
// byte-shuffle unit the blocked scan is skipped in favour of the scalar
// fallback, mirroring how the table lookups would be dispatched.
type LUTShort struct{}

// Name implements Searcher.
func (LUTShort) Name() string { return "lut-short" }

// Build implements Searcher. It never fails.
func (LUTShort) Build(pattern []byte) (State, error) {
	st := &lutShortState{
		full:    clone(pattern),
		m:       len(pattern),
		blocked: simd.HasByteShuffle(),
	}
	if st.m > 0 && st.m <= 8 {
		copy(st.pattern[:], pattern)
		st.sig, st.sigIndex = patternRarestByte(pattern)
		st.lutLo[st.sig&0x0f] = 0xff
		st.lutHi[st.sig>>4] = 0xff
	}
	return st, nil
}

type lutShortState struct {
	pattern  [8]byte
	full     []byte
	m        int
	sig      byte
	sigIndex int
	lutLo    [16]byte
	lutHi    [16]byte
	blocked  bool
}

// patternRarestByte counts byte occurrences within the pattern itself and
// returns the least frequent byte and its leftmost position.
func patternRarestByte(pattern []byte) (byte, int) {
	var counts [256]uint8
	for _, b := range pattern {
		if counts[b] < 255 {
			counts[b]++
		}
	}

	best := pattern[0]
	bestIdx := 0
	bestCount := counts[best]
	for idx, b := range pattern {
		if c := counts[b]; c < bestCount {
			best, bestIdx, bestCount = b, idx, c
		}
	}
	return best, bestIdx
}

func (s *lutShortState) FindFirst(text []byte) int {
	n := len(text)
	m := s.m

	if m == 0 {
		return 0
	}
	if m > 8 || !s.blocked {
		return scalarIndex(text, s.full)
	}
	if m > n {
		return -1
	}
	if m == 1 {
		return simd.Memchr(text, s.pattern[0])
	}

	i := 0
	for i+16 <= n {
		if pos := s.scanBlock(text, i, 16); pos >= 0 {
			return pos
		}
		i += 16
	}

	if i < n {
		rem := n - i
		// Pad the tail window with a byte that cannot be the signature.
		fill := s.sig + 1
		var tmp [16]byte
		for k := range tmp {
			tmp[k] = fill
		}
		copy(tmp[:], text[i:])
		if pos := s.scanWindow(text, i, rem, tmp[:]); pos >= 0 {
			return pos
		}
	}
	return -1
}

func (s *lutShortState) scanBlock(text []byte, base, limit int) int {
	return s.scanWindow(text, base, limit, text[base:base+16])
}

// scanWindow applies both nibble lookups to a 16-byte window and walks the
// candidate bitmask. Lanes at or beyond limit are masked off.
func (s *lutShortState) scanWindow(text []byte, base, limit int, window []byte) int {
	var mask uint32
	for lane := 0; lane < 16; lane++ {
		b := window[lane]
		if s.lutLo[b&0x0f]&s.lutHi[b>>4] == 0xff {
			mask |= 1 << uint(lane)
		}
	}
	if limit < 16 {
		mask &= (1 << uint(limit)) - 1
	}

	n := len(text)
	m := s.m
	for mask != 0 {
		bit := bits.TrailingZeros32(mask)
		mask &= mask - 1

		cand := base + bit
		if cand < s.sigIndex {
			continue
		}
		start := cand - s.sigIndex
		if start+m <= n && simd.EqualBytes(text[start:start+m], s.pattern[:m]) {
			return start
		}
	}
	return -1
}
