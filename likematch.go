// Package likematch evaluates SQL LIKE predicates ('%', '_') over large
// in-memory corpora.
//
// likematch is built from three layers:
//   - interchangeable substring-search kernels (naive, KMP, Boyer-Moore,
//     LUT-short, NTT convolution, k-mer), all held to parity with a scalar
//     reference
//   - a LIKE compiler and matcher that tokenizes a pattern once, binds
//     each literal to precomputed kernel state, and matches with anchored
//     ends, kernel smart-jumps after '%' and bounded backtracking
//   - executors over arena-backed datasets, optionally accelerated by an
//     FM-index or trigram index
//
// Basic usage:
//
//	p, err := likematch.Compile("h%o")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	p.MatchString("hello") // true
//
// Choosing a kernel and options:
//
//	cfg := likematch.Config{Algorithm: "bm"}
//	p, err := likematch.CompileWithConfig("%n_me%", cfg)
//
// Dataset execution:
//
//	arena := storage.NewArena(storage.DefaultArenaSize())
//	ds, err := storage.LoadDatasetFromPaths(arena, paths)
//	matches := p.Execute(ds)
package likematch

import (
	"github.com/coregx/likematch/engine"
	"github.com/coregx/likematch/kernel"
	"github.com/coregx/likematch/like"
	"github.com/coregx/likematch/storage"
)

// Config selects the kernel and the underscore interpretation for
// compilation.
type Config struct {
	// Algorithm names the search kernel (see kernel.Names). Empty picks
	// the best generic kernel for this machine.
	Algorithm string

	// Options is passed through to the LIKE compiler.
	Options like.Options
}

// Pattern is a compiled LIKE predicate. Safe for concurrent Match calls
// except when compiled with the fft kernel, whose transform state holds
// per-call scratch.
type Pattern struct {
	pat    *like.Pattern
	source string
}

// Compile compiles a LIKE pattern with the default kernel and options.
func Compile(pattern string) (*Pattern, error) {
	return CompileWithConfig(pattern, Config{})
}

// MustCompile is Compile for patterns known to be valid; it panics on
// error.
func MustCompile(pattern string) *Pattern {
	p, err := Compile(pattern)
	if err != nil {
		panic("likematch: Compile(" + pattern + "): " + err.Error())
	}
	return p
}

// CompileWithConfig compiles a LIKE pattern against a chosen kernel.
func CompileWithConfig(pattern string, cfg Config) (*Pattern, error) {
	searcher, err := resolveKernel(cfg)
	if err != nil {
		return nil, err
	}

	pat, err := like.Compile([]byte(pattern), searcher, cfg.Options)
	if err != nil {
		return nil, err
	}
	return &Pattern{pat: pat, source: pattern}, nil
}

// resolveKernel maps the config to a Searcher. The fft kernel's wildcard
// byte follows the underscore options: with underscores as plain literals
// the kernel must not treat '_' specially.
func resolveKernel(cfg Config) (kernel.Searcher, error) {
	if cfg.Algorithm == "" {
		return kernel.Auto(), nil
	}
	searcher, err := kernel.Lookup(cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	if _, ok := searcher.(kernel.FFT); ok {
		if cfg.Options.TreatUnderscoreAsLiteral && !cfg.Options.LiteralUnderscoreIsWildcard {
			return kernel.FFT{}, nil
		}
	}
	return searcher, nil
}

// Match reports whether text satisfies the pattern.
func (p *Pattern) Match(text []byte) bool {
	return p.pat.Match(text)
}

// MatchString reports whether s satisfies the pattern.
func (p *Pattern) MatchString(s string) bool {
	return p.pat.Match([]byte(s))
}

// String returns the source pattern text.
func (p *Pattern) String() string { return p.source }

// Compiled exposes the underlying like.Pattern for use with the engine
// and oracle packages.
func (p *Pattern) Compiled() *like.Pattern { return p.pat }

// Execute runs the pattern over a dataset and returns matches in
// (table order, row order).
func (p *Pattern) Execute(ds *storage.Dataset) []engine.Match {
	return engine.Execute(p.pat, ds)
}

// ExecuteAll runs a batch of patterns over a dataset and returns matches
// in (pattern index, table order, row order).
func ExecuteAll(patterns []*Pattern, ds *storage.Dataset) []engine.BatchMatch {
	compiled := make([]*like.Pattern, len(patterns))
	for i, p := range patterns {
		compiled[i] = p.pat
	}
	return engine.ExecuteAll(compiled, ds)
}
