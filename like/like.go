// Package like compiles SQL LIKE predicates and matches them against byte
// slices using a pluggable substring-search kernel.
//
// A pattern is tokenized into literals and wildcards:
//
//   - '%' matches any run of bytes, including none (Any token)
//   - '_' matches exactly one UTF-8 codepoint (Skip token)
//   - everything else is a literal, matched byte for byte
//
// Each literal is compiled once into kernel search state, so matching a
// pattern against many rows pays the kernel build cost once. Matching is
// anchored at both ends when the pattern does not start or end with '%',
// uses the kernel to jump directly to literal candidates after a '%', and
// backtracks from the most recent '%' on mismatch. The matcher is
// deterministic and leftmost.
//
// Basic usage:
//
//	p, err := like.Compile([]byte("h%o"), kernel.BM{}, like.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	p.Match([]byte("hello")) // true
package like

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/coregx/likematch/kernel"
)

// TokenKind discriminates pattern tokens.
type TokenKind uint8

const (
	// TokenLiteral is a contiguous non-wildcard byte run.
	TokenLiteral TokenKind = iota
	// TokenSkip matches exactly N codepoints ('_' runs).
	TokenSkip
	// TokenAny matches zero or more bytes ('%').
	TokenAny
)

// String returns the token kind name.
func (k TokenKind) String() string {
	switch k {
	case TokenLiteral:
		return "Literal"
	case TokenSkip:
		return "Skip"
	case TokenAny:
		return "Any"
	default:
		return fmt.Sprintf("UnknownTokenKind(%d)", k)
	}
}

// Token is one element of a compiled pattern. Lit is set for literal
// tokens; N for skip tokens.
type Token struct {
	Kind TokenKind
	Lit  []byte
	N    int
}

// Options controls how '_' is interpreted during compilation.
type Options struct {
	// TreatUnderscoreAsLiteral keeps '_' inside literal tokens instead of
	// emitting Skip tokens.
	TreatUnderscoreAsLiteral bool

	// LiteralUnderscoreIsWildcard makes '_' inside literals match any
	// single byte at kernel level. Requires TreatUnderscoreAsLiteral;
	// only meaningful with a wildcard-capable kernel such as FFT.
	LiteralUnderscoreIsWildcard bool
}

// Validate reports option combinations that have no defined meaning.
func (o Options) Validate() error {
	if o.LiteralUnderscoreIsWildcard && !o.TreatUnderscoreAsLiteral {
		return &CompileError{
			Message: "LiteralUnderscoreIsWildcard requires TreatUnderscoreAsLiteral",
		}
	}
	return nil
}

// CompileError reports an invalid pattern or option set.
type CompileError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("like: %s: %v", e.Message, e.Cause)
	}
	return "like: " + e.Message
}

// Unwrap returns the underlying error.
func (e *CompileError) Unwrap() error { return e.Cause }

// Pattern is a compiled LIKE predicate bound to a search kernel. It is
// immutable after Compile and safe for concurrent Match calls as long as
// the kernel's states are (the FFT kernel's are not; see kernel.FFT).
type Pattern struct {
	source []byte
	tokens []Token

	// minLen is a lower bound on matching text length: literal bytes
	// plus one byte per skipped codepoint.
	minLen int

	// litBytes[i] and litStates[i] belong to the i-th literal token.
	litBytes  [][]byte
	litStates []kernel.State

	underscoreWildcard bool
	searcher           kernel.Searcher
}

// Compile tokenizes pattern, builds kernel state for every literal token,
// and returns the executable Pattern. The pattern bytes are copied.
func Compile(pattern []byte, searcher kernel.Searcher, opts Options) (*Pattern, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	p := &Pattern{
		source:             append([]byte(nil), pattern...),
		underscoreWildcard: opts.LiteralUnderscoreIsWildcard,
		searcher:           searcher,
	}

	flushLiteral := func(lit []byte) error {
		if len(lit) == 0 {
			return nil
		}
		st, err := searcher.Build(lit)
		if err != nil {
			return &CompileError{
				Message: fmt.Sprintf("building %s state for literal %q", searcher.Name(), lit),
				Cause:   err,
			}
		}
		p.tokens = append(p.tokens, Token{Kind: TokenLiteral, Lit: lit})
		p.litBytes = append(p.litBytes, lit)
		p.litStates = append(p.litStates, st)
		p.minLen += len(lit)
		return nil
	}

	start := 0
	for idx := 0; idx < len(p.source); idx++ {
		c := p.source[idx]
		isWildcard := c == '%' || (c == '_' && !opts.TreatUnderscoreAsLiteral)
		if !isWildcard {
			continue
		}

		if err := flushLiteral(p.source[start:idx]); err != nil {
			return nil, err
		}

		if c == '%' {
			// Adjacent '%' collapse into one Any token.
			if len(p.tokens) == 0 || p.tokens[len(p.tokens)-1].Kind != TokenAny {
				p.tokens = append(p.tokens, Token{Kind: TokenAny})
			}
		} else {
			// Adjacent '_' merge into one Skip token.
			if len(p.tokens) > 0 && p.tokens[len(p.tokens)-1].Kind == TokenSkip {
				p.tokens[len(p.tokens)-1].N++
			} else {
				p.tokens = append(p.tokens, Token{Kind: TokenSkip, N: 1})
			}
			// Each skipped codepoint occupies at least one byte.
			p.minLen++
		}
		start = idx + 1
	}

	if err := flushLiteral(p.source[start:]); err != nil {
		return nil, err
	}

	return p, nil
}

// Source returns the original pattern bytes.
func (p *Pattern) Source() []byte { return p.source }

// Tokens returns the compiled token sequence. The slice must not be
// modified.
func (p *Pattern) Tokens() []Token { return p.tokens }

// MinLen returns the minimum text length that can match.
func (p *Pattern) MinLen() int { return p.minLen }

// Searcher returns the kernel the pattern was compiled against.
func (p *Pattern) Searcher() kernel.Searcher { return p.searcher }

// UnderscoreWildcard reports whether '_' bytes inside literal tokens match
// any single byte (the LiteralUnderscoreIsWildcard option).
func (p *Pattern) UnderscoreWildcard() bool { return p.underscoreWildcard }

// literalAt reports whether the literal with index stateIdx matches text
// at offset idx. With wildcard underscores the kernel decides (an anchored
// FindFirst); otherwise it is a plain prefix comparison.
func (p *Pattern) literalAt(lit, text []byte, idx, stateIdx int) bool {
	if p.underscoreWildcard && bytes.IndexByte(lit, '_') >= 0 {
		return p.litStates[stateIdx].FindFirst(text[idx:]) == 0
	}
	return bytes.HasPrefix(text[idx:], lit)
}

// Match reports whether text satisfies the pattern. Matching is
// deterministic: it finds the leftmost token assignment, backtracking only
// through '%' anchors.
func (p *Pattern) Match(text []byte) bool {
	if len(text) < p.minLen {
		return false
	}

	tokens := p.tokens
	startsWithAny := len(tokens) > 0 && tokens[0].Kind == TokenAny
	endsWithAny := len(tokens) > 0 && tokens[len(tokens)-1].Kind == TokenAny

	tIdx := 0
	sIdx := 0
	stateIdx := 0

	lastAnyTIdx := -1
	lastAnyStateIdx := 0
	matchSIdx := 0

	// Anchored prefix: without a leading '%', the first literal must sit
	// at offset 0.
	if !startsWithAny && len(tokens) > 0 && tokens[0].Kind == TokenLiteral {
		lit := tokens[0].Lit
		if len(lit) > 0 {
			if !p.literalAt(lit, text, 0, 0) {
				return false
			}
			sIdx = len(lit)
			tIdx = 1
			stateIdx = 1
		}
	}

	// Anchored suffix: without a trailing '%', the last literal must end
	// the text.
	if !endsWithAny && len(tokens) > 0 && tokens[len(tokens)-1].Kind == TokenLiteral {
		lit := tokens[len(tokens)-1].Lit
		if len(lit) > 0 {
			lastStateIdx := len(p.litStates) - 1
			if len(text) < len(lit) || !p.literalAt(lit, text, len(text)-len(lit), lastStateIdx) {
				return false
			}
		}
	}

	for sIdx < len(text) {
		if tIdx < len(tokens) {
			switch tok := tokens[tIdx]; tok.Kind {
			case TokenLiteral:
				if p.literalAt(tok.Lit, text, sIdx, stateIdx) {
					sIdx += len(tok.Lit)
					tIdx++
					stateIdx++
					continue
				}

			case TokenSkip:
				advanced, met := 0, 0
				for met < tok.N && sIdx+advanced < len(text) {
					_, size := utf8.DecodeRune(text[sIdx+advanced:])
					advanced += size
					met++
				}
				if met == tok.N {
					sIdx += advanced
					tIdx++
					continue
				}
				// Fewer codepoints than required: fall through to
				// backtracking.

			case TokenAny:
				lastAnyTIdx = tIdx
				lastAnyStateIdx = stateIdx

				// Smart jump: seek directly to the next literal
				// candidate instead of growing the '%' byte by byte.
				if tIdx+1 < len(tokens) && tokens[tIdx+1].Kind == TokenLiteral {
					off := p.litStates[stateIdx].FindFirst(text[sIdx:])
					if off < 0 {
						return false
					}
					matchSIdx = sIdx + off
					sIdx = matchSIdx
					tIdx++
					continue
				}

				tIdx++
				matchSIdx = sIdx
				continue
			}
		}

		// Mismatch (or Skip ran short): backtrack to the last '%'.
		if lastAnyTIdx >= 0 {
			tIdx = lastAnyTIdx + 1
			stateIdx = lastAnyStateIdx

			if tIdx < len(tokens) && tokens[tIdx].Kind == TokenLiteral {
				searchStart := matchSIdx + 1
				if searchStart >= len(text) {
					return false
				}
				off := p.litStates[stateIdx].FindFirst(text[searchStart:])
				if off < 0 {
					return false
				}
				matchSIdx = searchStart + off
				sIdx = matchSIdx
				continue
			}

			if matchSIdx < len(text) {
				_, size := utf8.DecodeRune(text[matchSIdx:])
				matchSIdx += size
				sIdx = matchSIdx
				continue
			}
		}

		return false
	}

	// Only trailing '%' may remain.
	for tIdx < len(tokens) {
		if tokens[tIdx].Kind != TokenAny {
			return false
		}
		tIdx++
	}
	return true
}
