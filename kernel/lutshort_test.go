package kernel

import (
	"bytes"
	"testing"
)

func TestLUTShortMatchesScalar(t *testing.T) {
	text := []byte("xxabcxxabcdxx")
	patterns := []string{"a", "ab", "abc", "abcd", "bc", "x", "xxa", "d", "dxx"}

	for _, pat := range patterns {
		t.Run(pat, func(t *testing.T) {
			st, err := LUTShort{}.Build([]byte(pat))
			if err != nil {
				t.Fatalf("Build failed: %v", err)
			}
			got := st.FindFirst(text)
			want := bytes.Index(text, []byte(pat))
			if got != want {
				t.Errorf("FindFirst(%q) = %d, want %d", pat, got, want)
			}
		})
	}
}

func TestLUTShortScenario(t *testing.T) {
	st, err := LUTShort{}.Build([]byte("abc"))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got := st.FindFirst([]byte("xxabcxxabcdxx")); got != 2 {
		t.Errorf("FindFirst = %d, want 2", got)
	}
}

func TestLUTShortNoMatch(t *testing.T) {
	st, err := LUTShort{}.Build([]byte("hij"))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got := st.FindFirst([]byte("abcdefg")); got != -1 {
		t.Errorf("FindFirst = %d, want -1", got)
	}
}

// TestLUTShortLongPattern: patterns over 8 bytes fall back to the scalar
// scan and must stay correct.
func TestLUTShortLongPattern(t *testing.T) {
	st, err := LUTShort{}.Build([]byte("abcdefghi"))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got := st.FindFirst([]byte("abcdefg")); got != -1 {
		t.Errorf("too-long pattern: FindFirst = %d, want -1", got)
	}
	if got := st.FindFirst([]byte("xxabcdefghixx")); got != 2 {
		t.Errorf("long pattern: FindFirst = %d, want 2", got)
	}
}

// TestLUTShortTail hits the padded final window: candidates in the last
// sub-16-byte block.
func TestLUTShortTail(t *testing.T) {
	text := []byte("0123456789abcdefXYq")
	st, err := LUTShort{}.Build([]byte("Yq"))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got := st.FindFirst(text); got != 17 {
		t.Errorf("FindFirst = %d, want 17", got)
	}
}

func TestPatternRarestByte(t *testing.T) {
	tests := []struct {
		pattern  string
		wantByte byte
		wantIdx  int
	}{
		{"aab", 'b', 2},
		{"aba", 'b', 1},
		{"abc", 'a', 0}, // all unique: leftmost wins
		{"zzzz", 'z', 0},
	}
	for _, tc := range tests {
		gotByte, gotIdx := patternRarestByte([]byte(tc.pattern))
		if gotByte != tc.wantByte || gotIdx != tc.wantIdx {
			t.Errorf("patternRarestByte(%q) = (%q, %d), want (%q, %d)",
				tc.pattern, gotByte, gotIdx, tc.wantByte, tc.wantIdx)
		}
	}
}
