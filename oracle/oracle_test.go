package oracle

import (
	"testing"

	"github.com/coregx/likematch/kernel"
	"github.com/coregx/likematch/like"
	"github.com/coregx/likematch/storage"
)

func testDataset() *storage.Dataset {
	mkRows := func(values ...string) []storage.Row {
		rows := make([]storage.Row, len(values))
		for i, v := range values {
			rows[i] = storage.Row{Data: []byte(v)}
		}
		return rows
	}
	return &storage.Dataset{
		Tables: []storage.Table{
			{Name: "words", Rows: mkRows("apple", "applet", "pineapple", "banana", "bandana")},
			{Name: "dna", Rows: mkRows("ACGTACGT", "TTTTACGT", "GGGG")},
		},
	}
}

func allKernels() []kernel.Searcher {
	return []kernel.Searcher{
		kernel.Vector{},
		kernel.KMP{},
		kernel.BM{},
		kernel.LUTShort{},
		kernel.FFT{Wildcard: '_'},
		kernel.Kmer{K: 1, MinHits: 1},
	}
}

func TestCompareFindFirstClean(t *testing.T) {
	patterns := [][]byte{
		[]byte("an"), []byte("apple"), []byte("ACGT"), []byte("zz"), []byte("a"),
	}

	mismatches := CompareFindFirst(allKernels(), patterns, testDataset())
	for _, m := range mismatches {
		t.Errorf("unexpected mismatch: %s", m)
	}
}

func TestCompareLikeClean(t *testing.T) {
	patterns := []string{"%an%", "a%", "%e", "b_n%", "%", "nomatch"}

	mismatches, err := CompareLike(allKernels(), patterns, like.Options{}, testDataset())
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range mismatches {
		t.Errorf("unexpected mismatch: %s", m)
	}
}

// brokenKernel always reports "not found" and must be caught by the
// oracle.
type brokenKernel struct{}

func (brokenKernel) Name() string { return "broken" }
func (brokenKernel) Build(pattern []byte) (kernel.State, error) {
	return brokenState{}, nil
}

type brokenState struct{}

func (brokenState) FindFirst(text []byte) int { return -1 }

func TestCompareReportsMismatch(t *testing.T) {
	patterns := [][]byte{[]byte("apple")}
	mismatches := CompareFindFirst([]kernel.Searcher{brokenKernel{}}, patterns, testDataset())

	if len(mismatches) == 0 {
		t.Fatal("broken kernel produced no mismatches")
	}
	m := mismatches[0]
	if m.Algo != "broken" || m.PatternIndex != 0 || m.File != "words" || m.Op != "find_first" {
		t.Errorf("mismatch provenance wrong: %+v", m)
	}
	if m.Expected != 0 || m.Actual != -1 {
		t.Errorf("mismatch values wrong: %+v", m)
	}
}

func TestCrossCheckSQLite(t *testing.T) {
	patterns := []string{"%an%", "a%", "%e", "b_n%", "%", "_____", "nomatch"}

	mismatches, err := CrossCheckSQLite(patterns, like.Options{}, testDataset())
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range mismatches {
		t.Errorf("engine diverges from SQLite: %s", m)
	}
}

func TestCrossCheckSQLiteRejectsLiteralUnderscore(t *testing.T) {
	opts := like.Options{TreatUnderscoreAsLiteral: true}
	if _, err := CrossCheckSQLite([]string{"a_c"}, opts, testDataset()); err == nil {
		t.Error("literal-underscore options should be rejected")
	}
}
