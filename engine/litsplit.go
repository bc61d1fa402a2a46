package engine

import (
	"bytes"

	"github.com/coregx/likematch/like"
)

// likeShape classifies a LIKE pattern by the index strategies it admits.
type likeShape uint8

const (
	// shapeAll is "%...%" with no literals: every row matches.
	shapeAll likeShape = iota
	// shapeExact has no wildcards at all.
	shapeExact
	// shapeContains is %lit%.
	shapeContains
	// shapePrefix is lit%.
	shapePrefix
	// shapeSuffix is %lit.
	shapeSuffix
	// shapeComplex is anything else: underscores or several literals.
	shapeComplex
)

// classifyLike detects the simple single-literal shapes. Underscores make
// a pattern complex regardless of position, because the index literals no
// longer pin exact bytes.
func classifyLike(pattern []byte) (likeShape, []byte) {
	if bytes.IndexByte(pattern, '_') >= 0 {
		return shapeComplex, nil
	}

	var literals [][]byte
	for _, part := range bytes.Split(pattern, []byte("%")) {
		if len(part) > 0 {
			literals = append(literals, part)
		}
	}
	if len(literals) == 0 {
		if len(pattern) == 0 {
			// The empty pattern matches only empty rows.
			return shapeExact, nil
		}
		return shapeAll, nil
	}
	if len(literals) > 1 {
		return shapeComplex, nil
	}

	lit := literals[0]
	starts := pattern[0] == '%'
	ends := pattern[len(pattern)-1] == '%'
	switch {
	case starts && ends:
		return shapeContains, lit
	case starts:
		return shapeSuffix, lit
	case ends:
		return shapePrefix, lit
	default:
		return shapeExact, lit
	}
}

// splitLiterals returns the literal runs of pattern between '%' and '_'
// markers, in order.
func splitLiterals(pattern []byte) [][]byte {
	var out [][]byte
	start := -1
	for i, c := range pattern {
		if c == '%' || c == '_' {
			if start >= 0 && start < i {
				out = append(out, pattern[start:i])
			}
			start = -1
		} else if start < 0 {
			start = i
		}
	}
	if start >= 0 && start < len(pattern) {
		out = append(out, pattern[start:])
	}
	return out
}

// hasWildcardUnderscore reports whether lit contains '_' bytes that the
// pattern's options make behave as wildcards (so the literal cannot be
// used as an exact index key).
func hasWildcardUnderscore(p *like.Pattern, lit []byte) bool {
	// Skip tokens never reach literal position; '_' only survives inside
	// literals under TreatUnderscoreAsLiteral. It only loses exactness
	// when additionally flagged as a kernel wildcard, which the pattern
	// records per compile options.
	return p.UnderscoreWildcard() && bytes.IndexByte(lit, '_') >= 0
}
