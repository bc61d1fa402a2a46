// Package engine applies compiled LIKE patterns to datasets.
//
// The basic executors are straight scans: Execute walks tables then rows
// and runs the matcher on every row's data; ExecuteAll does the same for a
// batch of patterns, gating per-row work with a shared Aho-Corasick
// automaton over the batch's required literals.
//
// The index-accelerated executors (FMDatabase, TrigramDatabase) first
// narrow the row set with an index lookup on literals extracted from the
// pattern, then run the full matcher only on the candidates. Patterns
// without usable literals, and index ranges past the verification cap,
// fall back to the straight scan. Results are always identical to the
// straight scan; only the work differs.
package engine

import (
	"github.com/coregx/ahocorasick"

	"github.com/coregx/likematch/like"
	"github.com/coregx/likematch/storage"
)

// Match is one matching row with its table provenance.
type Match struct {
	Table string
	Row   *storage.Row
}

// BatchMatch is a Match attributed to a pattern in a batch.
type BatchMatch struct {
	PatternIndex int
	Table        string
	Row          *storage.Row
}

// Execute runs pattern over every row of the dataset and returns matches
// in (table order, row order).
func Execute(pattern *like.Pattern, ds *storage.Dataset) []Match {
	var matches []Match
	for ti := range ds.Tables {
		table := &ds.Tables[ti]
		for ri := range table.Rows {
			row := &table.Rows[ri]
			if pattern.Match(row.Data) {
				matches = append(matches, Match{Table: table.Name, Row: row})
			}
		}
	}
	return matches
}

// ExecuteAll runs a batch of patterns over the dataset and returns matches
// in (pattern index, table order, row order).
//
// When several patterns carry a required literal (a literal token that
// must occur anywhere a pattern matches), a single Aho-Corasick automaton
// over those literals screens each row once: a row containing none of
// them cannot match any literal-bearing pattern, so only the literal-free
// patterns run on it.
func ExecuteAll(patterns []*like.Pattern, ds *storage.Dataset) []BatchMatch {
	required := make([][]byte, len(patterns))
	anyRequired := false
	for i, p := range patterns {
		required[i] = requiredLiteral(p)
		if required[i] != nil {
			anyRequired = true
		}
	}

	var automaton *ahocorasick.Automaton
	if anyRequired {
		builder := ahocorasick.NewBuilder()
		for _, lit := range required {
			if lit != nil {
				builder.AddPattern(lit)
			}
		}
		// A failed build only costs the prefilter, not correctness.
		if auto, err := builder.Build(); err == nil {
			automaton = auto
		}
	}

	perPattern := make([][]BatchMatch, len(patterns))
	for ti := range ds.Tables {
		table := &ds.Tables[ti]
		for ri := range table.Rows {
			row := &table.Rows[ri]

			literalHit := true
			if automaton != nil {
				literalHit = automaton.IsMatch(row.Data)
			}

			for pi, p := range patterns {
				if !literalHit && required[pi] != nil {
					continue
				}
				if p.Match(row.Data) {
					perPattern[pi] = append(perPattern[pi], BatchMatch{
						PatternIndex: pi,
						Table:        table.Name,
						Row:          row,
					})
				}
			}
		}
	}

	var out []BatchMatch
	for _, matches := range perPattern {
		out = append(out, matches...)
	}
	return out
}

// requiredLiteral returns the longest literal token of p without wildcard
// underscores, or nil. Every literal token must occur in a matching text,
// so any one of them is a sound row filter; the longest is the most
// selective.
func requiredLiteral(p *like.Pattern) []byte {
	var best []byte
	for _, tok := range p.Tokens() {
		if tok.Kind != like.TokenLiteral {
			continue
		}
		if hasWildcardUnderscore(p, tok.Lit) {
			continue
		}
		if len(tok.Lit) > len(best) {
			best = tok.Lit
		}
	}
	return best
}
