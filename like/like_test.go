package like

import (
	"testing"

	"github.com/coregx/likematch/kernel"
)

func matcherKernels() []kernel.Searcher {
	return []kernel.Searcher{
		kernel.Scalar{},
		kernel.Vector{},
		kernel.KMP{},
		kernel.BM{},
		kernel.LUTShort{},
		kernel.FFT{Wildcard: '_'},
	}
}

func compileT(t *testing.T, pattern string, k kernel.Searcher, opts Options) *Pattern {
	t.Helper()
	p, err := Compile([]byte(pattern), k, opts)
	if err != nil {
		t.Fatalf("Compile(%q) with %s failed: %v", pattern, k.Name(), err)
	}
	return p
}

// TestMatchSuite runs the shared behavioral suite against every kernel:
// the matcher must not care which kernel drives the literal searches.
func TestMatchSuite(t *testing.T) {
	cases := []struct {
		pattern string
		text    string
		want    bool
	}{
		// Exact match
		{"hello", "hello", true},
		{"hello", "hello world", false},
		{"hello", "say hello", false},

		// % wildcard
		{"h%o", "hello", true},
		{"h%o", "ho", true},
		{"h%o", "h_long_string_o", true},
		{"h%o", "h", false},
		{"%", "", true},
		{"%", "anything", true},

		// _ wildcard
		{"h_t", "hat", true},
		{"h_t", "heat", false},
		{"h_t", "ht", false},

		// Backtracking
		{"%a", "banana", true},
		{"%a", "pizza", true},
		{"%a", "pizzas", false},
		{"a%b", "abb", true},
		{"a%b", "ab", true},
		{"a%b", "ba", false},

		// Complex mixes
		{"a_%_b", "ax_b", true},
		{"a_%_b", "a_long___b", true},
		{"a_%_b", "ab", false},
		{"%a_%_b%", "ax_b", true},
		{"%a_%_b%", "ab", false},

		// Prefix / suffix anchoring
		{"ban%", "banana", true},
		{"ban%", "urban", false},
		{"%ana", "banana", true},
		{"%ana", "anagram", false},

		// UTF-8: '_' consumes one codepoint
		{"_%", "💩", true},
		{"_%", "💩more", true},
		{"_", "💩", true},
		{"__", "💩", false},
	}

	for _, k := range matcherKernels() {
		for _, tc := range cases {
			t.Run(k.Name()+"/"+tc.pattern+"/"+tc.text, func(t *testing.T) {
				p := compileT(t, tc.pattern, k, Options{})
				if got := p.Match([]byte(tc.text)); got != tc.want {
					t.Errorf("Match(%q, %q) = %v, want %v", tc.pattern, tc.text, got, tc.want)
				}
			})
		}
	}
}

func TestEmptyPattern(t *testing.T) {
	p := compileT(t, "", kernel.Scalar{}, Options{})
	if !p.Match(nil) {
		t.Error("empty pattern must match empty text")
	}
	if p.Match([]byte("x")) {
		t.Error("empty pattern must not match non-empty text")
	}
}

func TestUnderscoreLiteralOption(t *testing.T) {
	opts := Options{TreatUnderscoreAsLiteral: true}
	p := compileT(t, "%a_c%", kernel.Scalar{}, opts)

	if !p.Match([]byte("zza_czz")) {
		t.Error("literal underscore should match '_'")
	}
	if p.Match([]byte("zzabczz")) {
		t.Error("literal underscore must not match 'b'")
	}
}

func TestUnderscoreWildcardOption(t *testing.T) {
	// With the FFT kernel, '_' inside a literal matches any single byte.
	opts := Options{
		TreatUnderscoreAsLiteral:    true,
		LiteralUnderscoreIsWildcard: true,
	}
	p := compileT(t, "%a_c%", kernel.FFT{Wildcard: '_'}, opts)

	if !p.Match([]byte("zzabczz")) {
		t.Error("wildcard underscore should match 'b'")
	}
	if !p.Match([]byte("zza_czz")) {
		t.Error("wildcard underscore should match '_'")
	}
	if p.Match([]byte("zzac")) {
		t.Error("wildcard underscore still needs a middle byte")
	}
}

func TestOptionValidation(t *testing.T) {
	opts := Options{LiteralUnderscoreIsWildcard: true}
	if _, err := Compile([]byte("a"), kernel.Scalar{}, opts); err == nil {
		t.Error("LiteralUnderscoreIsWildcard without TreatUnderscoreAsLiteral should fail")
	}
}

func TestTokenization(t *testing.T) {
	tests := []struct {
		pattern string
		kinds   []TokenKind
		minLen  int
	}{
		{"abc", []TokenKind{TokenLiteral}, 3},
		{"%", []TokenKind{TokenAny}, 0},
		{"%%", []TokenKind{TokenAny}, 0},
		{"a%%b", []TokenKind{TokenLiteral, TokenAny, TokenLiteral}, 2},
		{"a__b", []TokenKind{TokenLiteral, TokenSkip, TokenLiteral}, 4},
		{"_%_", []TokenKind{TokenSkip, TokenAny, TokenSkip}, 2},
		{"%a%", []TokenKind{TokenAny, TokenLiteral, TokenAny}, 1},
		{"", nil, 0},
	}

	for _, tc := range tests {
		t.Run(tc.pattern, func(t *testing.T) {
			p := compileT(t, tc.pattern, kernel.Scalar{}, Options{})

			toks := p.Tokens()
			if len(toks) != len(tc.kinds) {
				t.Fatalf("got %d tokens, want %d (%v)", len(toks), len(tc.kinds), toks)
			}
			for i, kind := range tc.kinds {
				if toks[i].Kind != kind {
					t.Errorf("token %d = %v, want %v", i, toks[i].Kind, kind)
				}
			}
			if p.MinLen() != tc.minLen {
				t.Errorf("MinLen = %d, want %d", p.MinLen(), tc.minLen)
			}
		})
	}
}

func TestSkipMerging(t *testing.T) {
	p := compileT(t, "a___b", kernel.Scalar{}, Options{})
	toks := p.Tokens()
	if len(toks) != 3 || toks[1].Kind != TokenSkip || toks[1].N != 3 {
		t.Fatalf("expected merged Skip(3), got %v", toks)
	}
}

// TestAnchoring: patterns without leading/trailing '%' imply prefix and
// suffix constraints.
func TestAnchoring(t *testing.T) {
	p := compileT(t, "ab%cd", kernel.BM{}, Options{})

	cases := []struct {
		text string
		want bool
	}{
		{"abcd", true},
		{"abxcd", true},
		{"ab123cd", true},
		{"xabcd", false},
		{"abcdx", false},
		{"abc", false},
	}
	for _, tc := range cases {
		if got := p.Match([]byte(tc.text)); got != tc.want {
			t.Errorf("Match(ab%%cd, %q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

// TestCompileIdempotent: compiling the same pattern twice yields
// behaviorally identical matchers.
func TestCompileIdempotent(t *testing.T) {
	texts := []string{"", "a", "banana", "bandana", "xyzzy", "ban"}
	for _, pattern := range []string{"%an%", "b_n%", "%a", ""} {
		p1 := compileT(t, pattern, kernel.KMP{}, Options{})
		p2 := compileT(t, pattern, kernel.KMP{}, Options{})
		for _, text := range texts {
			if p1.Match([]byte(text)) != p2.Match([]byte(text)) {
				t.Errorf("pattern %q diverges on %q between compiles", pattern, text)
			}
		}
	}
}

func TestMinLenGate(t *testing.T) {
	p := compileT(t, "a_%_b", kernel.Scalar{}, Options{})
	// minLen = 1 + 1 + 1 + 1 = 4: three-byte texts cannot match.
	if p.MinLen() != 4 {
		t.Fatalf("MinLen = %d, want 4", p.MinLen())
	}
	if p.Match([]byte("axb")) {
		t.Error("text below MinLen must not match")
	}
}
