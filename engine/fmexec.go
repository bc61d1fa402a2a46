package engine

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/coregx/likematch/index/fm"
	"github.com/coregx/likematch/like"
	"github.com/coregx/likematch/storage"
)

// Reserved corpus bytes for the FM-index build. Neither may occur in row
// data.
const (
	FMSeparator byte = 0x1F
	FMSentinel  byte = 0x00
)

// fmRow maps a corpus byte range back to its dataset row.
type fmRow struct {
	table string
	row   *storage.Row
	start int
	end   int
}

// FMDatabase is an FM-index over an entire dataset: all row data
// concatenated with FMSeparator, indexed once, plus the bookkeeping to map
// corpus positions back to rows.
type FMDatabase struct {
	fm        *fm.Index
	rows      []fmRow
	rowStarts []int
	byteFreq  [256]int

	// maxRange caps how many suffix-array rows a literal lookup may
	// produce before the database refuses to verify them and falls back
	// to a linear scan.
	maxRange int

	// literalCache memoizes row sets per literal across queries.
	literalCache map[string][]int
}

// BuildFMDatabase concatenates every row of ds and indexes the corpus.
// Rows containing a reserved byte are an input-shape error.
func BuildFMDatabase(ds *storage.Dataset) (*FMDatabase, error) {
	var corpus []byte
	db := &FMDatabase{literalCache: make(map[string][]int)}

	for ti := range ds.Tables {
		table := &ds.Tables[ti]
		for ri := range table.Rows {
			row := &table.Rows[ri]
			if bytes.IndexByte(row.Data, FMSentinel) >= 0 || bytes.IndexByte(row.Data, FMSeparator) >= 0 {
				return nil, fmt.Errorf("engine: row in table %s contains a reserved FM-index byte", table.Name)
			}

			start := len(corpus)
			corpus = append(corpus, row.Data...)
			end := len(corpus)
			corpus = append(corpus, FMSeparator)

			for _, b := range row.Data {
				db.byteFreq[b]++
			}
			db.rows = append(db.rows, fmRow{table: table.Name, row: row, start: start, end: end})
			db.rowStarts = append(db.rowStarts, start)
		}
	}

	db.maxRange = len(corpus) / 100
	if db.maxRange < 100000 {
		db.maxRange = 100000
	}

	ix, err := fm.NewWithSeparator(corpus, FMSentinel, FMSeparator)
	if err != nil {
		return nil, err
	}
	db.fm = ix
	return db, nil
}

// Index exposes the underlying FM-index (read-only).
func (db *FMDatabase) Index() *fm.Index { return db.fm }

// rowIndexForPos locates the row whose corpus range contains pos, or -1.
// Separator positions belong to no row.
func (db *FMDatabase) rowIndexForPos(pos int) int {
	idx := sort.SearchInts(db.rowStarts, pos+1) - 1
	if idx < 0 {
		return -1
	}
	if pos < db.rows[idx].end {
		return idx
	}
	return -1
}

// ExecuteLike evaluates pattern over the indexed dataset, using the index
// to narrow the candidate rows where the pattern shape allows. Results
// are identical to Execute on the source dataset, in the same order.
//
// patternSrc must be the source text of pattern (used for literal
// extraction); pattern must be compiled without underscore options so the
// extracted literals pin exact bytes.
func (db *FMDatabase) ExecuteLike(patternSrc []byte, pattern *like.Pattern) []Match {
	switch shape, lit := classifyLike(patternSrc); shape {
	case shapeAll:
		return db.allRows()
	case shapeExact:
		return db.filterRows(func(r *fmRow) bool { return bytes.Equal(r.row.Data, lit) })
	case shapeContains:
		if rowSet, ok := db.rowsForLiteral(lit); ok {
			return db.selectRows(rowSet, nil)
		}
		return db.linearScan(pattern)
	case shapePrefix:
		return db.anchoredRows(lit, pattern, true)
	case shapeSuffix:
		return db.anchoredRows(lit, pattern, false)
	}

	literals := splitLiterals(patternSrc)
	if len(literals) == 0 {
		return db.linearScan(pattern)
	}

	// Rarest literal first: its row set is the cheapest to verify and
	// the most likely to short-circuit.
	sort.SliceStable(literals, func(i, j int) bool {
		return db.literalRarity(literals[i]) < db.literalRarity(literals[j])
	})

	var rowSets [][]int
	for _, lit := range literals {
		set, ok := db.rowsForLiteral(lit)
		if !ok {
			// Over the verification cap: the index cannot help.
			return db.linearScan(pattern)
		}
		if len(set) == 0 {
			return nil
		}
		rowSets = append(rowSets, set)
	}

	candidates := intersectRowSets(rowSets)
	if len(candidates) == 0 {
		return nil
	}
	return db.selectRows(candidates, pattern)
}

func (db *FMDatabase) allRows() []Match {
	out := make([]Match, len(db.rows))
	for i := range db.rows {
		out[i] = Match{Table: db.rows[i].table, Row: db.rows[i].row}
	}
	return out
}

func (db *FMDatabase) filterRows(keep func(*fmRow) bool) []Match {
	var out []Match
	for i := range db.rows {
		if keep(&db.rows[i]) {
			out = append(out, Match{Table: db.rows[i].table, Row: db.rows[i].row})
		}
	}
	return out
}

func (db *FMDatabase) linearScan(pattern *like.Pattern) []Match {
	return db.filterRows(func(r *fmRow) bool { return pattern.Match(r.row.Data) })
}

// selectRows emits the rows in rowSet in dataset order, optionally
// verifying each with the matcher.
func (db *FMDatabase) selectRows(rowSet []int, verify *like.Pattern) []Match {
	sort.Ints(rowSet)
	var out []Match
	for _, idx := range rowSet {
		r := &db.rows[idx]
		if verify != nil && !verify.Match(r.row.Data) {
			continue
		}
		out = append(out, Match{Table: r.table, Row: r.row})
	}
	return out
}

// anchoredRows handles lit% and %lit: index positions are checked against
// the row start or end directly, no matcher needed.
func (db *FMDatabase) anchoredRows(lit []byte, pattern *like.Pattern, prefix bool) []Match {
	if len(lit) == 0 {
		return db.allRows()
	}

	positions, ok := db.literalPositions(lit)
	if !ok {
		return db.linearScan(pattern)
	}

	matched := make(map[int]struct{})
	for _, pos := range positions {
		idx := db.rowIndexForPos(pos)
		if idx < 0 {
			continue
		}
		r := &db.rows[idx]
		if prefix {
			if pos == r.start && pos+len(lit) <= r.end {
				matched[idx] = struct{}{}
			}
		} else {
			if pos+len(lit) == r.end {
				matched[idx] = struct{}{}
			}
		}
	}

	rowSet := make([]int, 0, len(matched))
	for idx := range matched {
		rowSet = append(rowSet, idx)
	}
	return db.selectRows(rowSet, nil)
}

// rowsForLiteral returns the sorted set of row indexes whose data contains
// lit. ok is false when the suffix-array range exceeds maxRange.
func (db *FMDatabase) rowsForLiteral(lit []byte) (rows []int, ok bool) {
	if cached, hit := db.literalCache[string(lit)]; hit {
		return cached, true
	}

	positions, ok := db.literalPositions(lit)
	if !ok {
		return nil, false
	}

	seen := make(map[int]struct{})
	for _, pos := range positions {
		idx := db.rowIndexForPos(pos)
		if idx < 0 {
			continue
		}
		// Occurrences spanning the separator cannot happen (the
		// separator is not part of any literal), but occurrences
		// running past a row's end would be bogus.
		if pos+len(lit) <= db.rows[idx].end {
			seen[idx] = struct{}{}
		}
	}

	rows = make([]int, 0, len(seen))
	for idx := range seen {
		rows = append(rows, idx)
	}
	sort.Ints(rows)
	db.literalCache[string(lit)] = rows
	return rows, true
}

func (db *FMDatabase) literalPositions(lit []byte) ([]int, bool) {
	top, bottom, found := db.fm.BackwardSearch(lit)
	if !found {
		return nil, true
	}
	if bottom-top > db.maxRange {
		return nil, false
	}
	return db.fm.Search(lit), true
}

// literalRarity scores a literal by its rarest byte's corpus frequency.
func (db *FMDatabase) literalRarity(lit []byte) int {
	rarity := int(^uint(0) >> 1)
	for _, b := range lit {
		if f := db.byteFreq[b]; f < rarity {
			rarity = f
		}
	}
	return rarity
}

// intersectRowSets intersects sorted row-index sets, smallest first.
func intersectRowSets(sets [][]int) []int {
	if len(sets) == 0 {
		return nil
	}
	sort.Slice(sets, func(i, j int) bool { return len(sets[i]) < len(sets[j]) })

	acc := append([]int(nil), sets[0]...)
	for _, set := range sets[1:] {
		out := acc[:0]
		i, j := 0, 0
		for i < len(acc) && j < len(set) {
			switch {
			case acc[i] == set[j]:
				out = append(out, acc[i])
				i++
				j++
			case acc[i] < set[j]:
				i++
			default:
				j++
			}
		}
		acc = out
		if len(acc) == 0 {
			break
		}
	}
	return acc
}
