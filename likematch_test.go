package likematch

import (
	"testing"

	"github.com/coregx/likematch/kernel"
	"github.com/coregx/likematch/like"
	"github.com/coregx/likematch/storage"
)

func TestCompileAndMatch(t *testing.T) {
	tests := []struct {
		pattern string
		text    string
		want    bool
	}{
		{"h%o", "hello", true},
		{"h%o", "h", false},
		{"%a_%_b%", "ax_b", true},
		{"%a_%_b%", "ab", false},
		{"hello", "hello", true},
		{"h_t", "hat", true},
	}
	for _, tc := range tests {
		p, err := Compile(tc.pattern)
		if err != nil {
			t.Fatalf("Compile(%q) failed: %v", tc.pattern, err)
		}
		if got := p.MatchString(tc.text); got != tc.want {
			t.Errorf("MatchString(%q, %q) = %v, want %v", tc.pattern, tc.text, got, tc.want)
		}
	}
}

func TestCompileAllAlgorithms(t *testing.T) {
	for _, name := range kernel.Names() {
		t.Run(name, func(t *testing.T) {
			pattern, match, nonMatch := "%ell%", "hello", "world"
			if name == "kmer" {
				// The default k-mer configuration (k=8, 3 hits) needs a
				// literal of at least ten bytes to produce candidates.
				pattern, match, nonMatch = "%abcdefghij%", "xxabcdefghijxx", "world"
			}

			p, err := CompileWithConfig(pattern, Config{Algorithm: name})
			if err != nil {
				t.Fatalf("CompileWithConfig failed: %v", err)
			}
			if !p.MatchString(match) {
				t.Errorf("should match %q", match)
			}
			if p.MatchString(nonMatch) {
				t.Errorf("should not match %q", nonMatch)
			}
		})
	}
}

func TestCompileUnknownAlgorithm(t *testing.T) {
	if _, err := CompileWithConfig("a%", Config{Algorithm: "bogus"}); err == nil {
		t.Error("unknown algorithm should fail")
	}
}

func TestMustCompile(t *testing.T) {
	p := MustCompile("h%o")
	if !p.MatchString("hello") {
		t.Error("MustCompile pattern should match")
	}
	if p.String() != "h%o" {
		t.Errorf("String = %q, want h%%o", p.String())
	}
}

// TestFFTUnderscoreLiteralKernel: with underscores as plain literals the
// facade must hand the fft kernel a disabled wildcard, so '_' matches
// itself only.
func TestFFTUnderscoreLiteralKernel(t *testing.T) {
	cfg := Config{
		Algorithm: "fft",
		Options:   like.Options{TreatUnderscoreAsLiteral: true},
	}
	p, err := CompileWithConfig("%a_c%", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !p.MatchString("zza_czz") {
		t.Error("literal underscore should match '_'")
	}
	if p.MatchString("zzabczz") {
		t.Error("literal underscore must not match 'b'")
	}
}

func TestExecuteFacade(t *testing.T) {
	ds := &storage.Dataset{Tables: []storage.Table{
		{Name: "t", Rows: []storage.Row{
			{Data: []byte("banana")},
			{Data: []byte("apple")},
			{Data: []byte("bandana")},
		}},
	}}

	p, err := Compile("%an%")
	if err != nil {
		t.Fatal(err)
	}
	matches := p.Execute(ds)
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}

	batch := ExecuteAll([]*Pattern{p, MustCompile("a%")}, ds)
	if len(batch) != 3 {
		t.Fatalf("got %d batch matches, want 3", len(batch))
	}
	if batch[2].PatternIndex != 1 || string(batch[2].Row.Data) != "apple" {
		t.Errorf("batch order wrong: %+v", batch)
	}
}
