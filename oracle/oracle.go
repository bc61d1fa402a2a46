// Package oracle cross-checks search kernels against the scalar reference
// and against a real SQL engine.
//
// Every kernel must produce exactly the scalar nested-loop kernel's
// results on every input. Compare runs a set of kernels over a dataset
// and reports each divergence with enough provenance to reproduce it:
// kernel name, pattern index, table, expected and actual values.
package oracle

import (
	"fmt"

	"github.com/coregx/likematch/engine"
	"github.com/coregx/likematch/kernel"
	"github.com/coregx/likematch/like"
	"github.com/coregx/likematch/storage"
)

// Mismatch is one divergence between a kernel and the reference.
type Mismatch struct {
	Algo         string
	PatternIndex int
	File         string
	Op           string
	Expected     int
	Actual       int
}

// String formats the mismatch for reports.
func (m Mismatch) String() string {
	return fmt.Sprintf("%s: pattern %d on %s: %s expected %d, got %d",
		m.Algo, m.PatternIndex, m.File, m.Op, m.Expected, m.Actual)
}

// CompareFindFirst checks FindFirst and FindAll of every kernel against
// the scalar reference for each (pattern, row) pair. Kernels that fail to
// build a pattern are reported as a single mismatch for that pattern with
// Expected 0 and Actual -2 (build failure is never parity).
func CompareFindFirst(kernels []kernel.Searcher, patterns [][]byte, ds *storage.Dataset) []Mismatch {
	var out []Mismatch
	reference := kernel.Scalar{}

	for pi, pat := range patterns {
		refState, err := reference.Build(pat)
		if err != nil {
			continue
		}

		for _, k := range kernels {
			st, err := k.Build(pat)
			if err != nil {
				out = append(out, Mismatch{
					Algo:         k.Name(),
					PatternIndex: pi,
					File:         "",
					Op:           "build",
					Expected:     0,
					Actual:       -2,
				})
				continue
			}

			for ti := range ds.Tables {
				table := &ds.Tables[ti]
				for ri := range table.Rows {
					text := table.Rows[ri].Data

					want := refState.FindFirst(text)
					got := st.FindFirst(text)
					if want != got {
						out = append(out, Mismatch{
							Algo:         k.Name(),
							PatternIndex: pi,
							File:         table.Name,
							Op:           "find_first",
							Expected:     want,
							Actual:       got,
						})
						continue
					}

					wantAll := kernel.FindAll(refState, text)
					gotAll := kernel.FindAll(st, text)
					if !equalInts(wantAll, gotAll) {
						out = append(out, Mismatch{
							Algo:         k.Name(),
							PatternIndex: pi,
							File:         table.Name,
							Op:           "find_all",
							Expected:     len(wantAll),
							Actual:       len(gotAll),
						})
					}
				}
			}
		}
	}
	return out
}

// CompareLike checks LIKE match counts per table of every kernel against
// the scalar reference.
func CompareLike(kernels []kernel.Searcher, patterns []string, opts like.Options, ds *storage.Dataset) ([]Mismatch, error) {
	var out []Mismatch
	reference := kernel.Scalar{}

	for pi, src := range patterns {
		refPattern, err := like.Compile([]byte(src), reference, opts)
		if err != nil {
			return nil, err
		}
		expected := countsPerTable(refPattern, ds)

		for _, k := range kernels {
			p, err := like.Compile([]byte(src), k, opts)
			if err != nil {
				out = append(out, Mismatch{
					Algo:         k.Name(),
					PatternIndex: pi,
					Op:           "compile",
					Actual:       -2,
				})
				continue
			}
			actual := countsPerTable(p, ds)

			for ti := range ds.Tables {
				name := ds.Tables[ti].Name
				if expected[name] != actual[name] {
					out = append(out, Mismatch{
						Algo:         k.Name(),
						PatternIndex: pi,
						File:         name,
						Op:           "like",
						Expected:     expected[name],
						Actual:       actual[name],
					})
				}
			}
		}
	}
	return out, nil
}

func countsPerTable(p *like.Pattern, ds *storage.Dataset) map[string]int {
	counts := make(map[string]int, len(ds.Tables))
	for _, m := range engine.Execute(p, ds) {
		counts[m.Table]++
	}
	// Tables with zero matches still participate in the comparison.
	for ti := range ds.Tables {
		if _, ok := counts[ds.Tables[ti].Name]; !ok {
			counts[ds.Tables[ti].Name] = 0
		}
	}
	return counts
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
