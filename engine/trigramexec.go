package engine

import (
	"github.com/coregx/likematch/index/trigram"
	"github.com/coregx/likematch/like"
	"github.com/coregx/likematch/storage"
)

// TrigramDatabase indexes every row of a dataset in a trigram index for
// candidate pruning.
type TrigramDatabase struct {
	index *trigram.Index
	rows  []fmRow // start/end unused; reuses the provenance triple
}

// BuildTrigramDatabase indexes all rows of ds in dataset order, so the
// trigram document ID equals the global row index.
func BuildTrigramDatabase(ds *storage.Dataset) *TrigramDatabase {
	db := &TrigramDatabase{index: trigram.New()}
	for ti := range ds.Tables {
		table := &ds.Tables[ti]
		for ri := range table.Rows {
			row := &table.Rows[ri]
			db.index.Add(row.Data)
			db.rows = append(db.rows, fmRow{table: table.Name, row: row})
		}
	}
	return db
}

// Index exposes the underlying trigram index (read-only).
func (db *TrigramDatabase) Index() *trigram.Index { return db.index }

// ExecuteLike evaluates pattern over the indexed dataset. The longest
// literal of at least three bytes selects candidates from the index; the
// matcher verifies each. Patterns without such a literal scan linearly.
func (db *TrigramDatabase) ExecuteLike(patternSrc []byte, pattern *like.Pattern) []Match {
	var longest []byte
	for _, lit := range splitLiterals(patternSrc) {
		if len(lit) >= 3 && len(lit) > len(longest) {
			longest = lit
		}
	}

	if longest != nil {
		if ids, ok := db.index.SearchLiteral(longest); ok {
			var out []Match
			for _, id := range ids {
				r := &db.rows[id]
				if pattern.Match(r.row.Data) {
					out = append(out, Match{Table: r.table, Row: r.row})
				}
			}
			return out
		}
	}

	var out []Match
	for i := range db.rows {
		r := &db.rows[i]
		if pattern.Match(r.row.Data) {
			out = append(out, Match{Table: r.table, Row: r.row})
		}
	}
	return out
}
