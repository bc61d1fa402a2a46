package engine

import (
	"testing"

	"github.com/coregx/likematch/kernel"
	"github.com/coregx/likematch/like"
	"github.com/coregx/likematch/storage"
)

// execMatchesEqual compares index-accelerated results with the straight
// scan, which is the correctness reference for every executor.
func execMatchesEqual(t *testing.T, got, want []Match, context string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: got %d matches, want %d (%v vs %v)", context, len(got), len(want), got, want)
	}
	for i := range got {
		if got[i].Table != want[i].Table || got[i].Row != want[i].Row {
			t.Errorf("%s: match %d = %s/%s, want %s/%s",
				context, i, got[i].Table, got[i].Row.Data, want[i].Table, want[i].Row.Data)
		}
	}
}

func TestFMDatabaseShapes(t *testing.T) {
	ds := testDataset()
	db, err := BuildFMDatabase(ds)
	if err != nil {
		t.Fatal(err)
	}

	patterns := []string{
		"%",            // all rows
		"banana",       // exact
		"%ana%",        // contains
		"app%",         // prefix
		"%ana",         // suffix
		"%a_a%",        // complex (underscore)
		"a%t",          // complex (two literals)
		"%an%an%",      // repeated literal
		"nothinghere%", // no matches
		"%zzz%",        // literal absent from corpus
	}

	for _, src := range patterns {
		t.Run(src, func(t *testing.T) {
			p := compileT(t, src, kernel.BM{}, like.Options{})
			got := db.ExecuteLike([]byte(src), p)
			want := Execute(p, ds)
			execMatchesEqual(t, got, want, src)
		})
	}
}

// TestFMDatabaseRangeCap: with a tiny verification cap every literal
// lookup falls back to the linear scan, which must stay correct.
func TestFMDatabaseRangeCap(t *testing.T) {
	ds := testDataset()
	db, err := BuildFMDatabase(ds)
	if err != nil {
		t.Fatal(err)
	}
	db.maxRange = 1

	for _, src := range []string{"%ana%", "app%", "%a_a%"} {
		p := compileT(t, src, kernel.BM{}, like.Options{})
		got := db.ExecuteLike([]byte(src), p)
		want := Execute(p, ds)
		execMatchesEqual(t, got, want, src+" (capped)")
	}
}

func TestFMDatabaseReservedByte(t *testing.T) {
	ds := &storage.Dataset{Tables: []storage.Table{
		{Name: "bad", Rows: []storage.Row{{Data: []byte("a\x1fb")}}},
	}}
	if _, err := BuildFMDatabase(ds); err == nil {
		t.Error("row containing the separator byte should fail the build")
	}
}

func TestFMDatabaseRowMapping(t *testing.T) {
	ds := testDataset()
	db, err := BuildFMDatabase(ds)
	if err != nil {
		t.Fatal(err)
	}

	// First corpus byte belongs to row 0; the separator after "apple"
	// belongs to none.
	if idx := db.rowIndexForPos(0); idx != 0 {
		t.Errorf("rowIndexForPos(0) = %d, want 0", idx)
	}
	if idx := db.rowIndexForPos(5); idx != -1 {
		t.Errorf("rowIndexForPos(separator) = %d, want -1", idx)
	}
	if idx := db.rowIndexForPos(6); idx != 1 {
		t.Errorf("rowIndexForPos(6) = %d, want 1", idx)
	}
}

func TestFMLiteralCache(t *testing.T) {
	ds := testDataset()
	db, err := BuildFMDatabase(ds)
	if err != nil {
		t.Fatal(err)
	}

	first, ok := db.rowsForLiteral([]byte("ana"))
	if !ok {
		t.Fatal("rowsForLiteral reported over-cap on a tiny corpus")
	}
	second, ok := db.rowsForLiteral([]byte("ana"))
	if !ok || len(first) != len(second) {
		t.Fatal("cached lookup diverged")
	}
	if len(db.literalCache) != 1 {
		t.Errorf("literalCache has %d entries, want 1", len(db.literalCache))
	}
}

func TestTrigramDatabase(t *testing.T) {
	ds := testDataset()
	db := BuildTrigramDatabase(ds)

	patterns := []string{
		"%appl%", "%ana%", "%ana", "app%", "%a_a%", "%", "banana", "%qq%",
	}
	for _, src := range patterns {
		t.Run(src, func(t *testing.T) {
			p := compileT(t, src, kernel.KMP{}, like.Options{})
			got := db.ExecuteLike([]byte(src), p)
			want := Execute(p, ds)
			execMatchesEqual(t, got, want, src)
		})
	}
}

func TestClassifyLike(t *testing.T) {
	tests := []struct {
		pattern string
		shape   likeShape
		lit     string
	}{
		{"%", shapeAll, ""},
		{"%%", shapeAll, ""},
		{"abc", shapeExact, "abc"},
		{"%abc%", shapeContains, "abc"},
		{"abc%", shapePrefix, "abc"},
		{"%abc", shapeSuffix, "abc"},
		{"a%b", shapeComplex, ""},
		{"a_c", shapeComplex, ""},
		{"%a_c%", shapeComplex, ""},
	}
	for _, tc := range tests {
		shape, lit := classifyLike([]byte(tc.pattern))
		if shape != tc.shape || string(lit) != tc.lit {
			t.Errorf("classifyLike(%q) = (%v, %q), want (%v, %q)",
				tc.pattern, shape, lit, tc.shape, tc.lit)
		}
	}
}

func TestSplitLiterals(t *testing.T) {
	tests := []struct {
		pattern string
		want    []string
	}{
		{"%abc%def_g", []string{"abc", "def", "g"}},
		{"abc", []string{"abc"}},
		{"%_%", nil},
		{"", nil},
	}
	for _, tc := range tests {
		got := splitLiterals([]byte(tc.pattern))
		if len(got) != len(tc.want) {
			t.Fatalf("splitLiterals(%q) = %v, want %v", tc.pattern, got, tc.want)
		}
		for i := range got {
			if string(got[i]) != tc.want[i] {
				t.Errorf("splitLiterals(%q)[%d] = %q, want %q", tc.pattern, i, got[i], tc.want[i])
			}
		}
	}
}
