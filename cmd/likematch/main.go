// Command likematch runs substring-search kernels and LIKE predicates
// over text, FASTA and delimited corpora.
//
// Examples:
//
//	likematch -a bm -t corpus.txt --pattern TCGC --measure-time
//	likematch -a kmer -t genome.fa --pattern ACGTACGT --kmer-k 4 --kmer-min-hits 2
//	likematch -a naive -t names.txt --pattern '%ana%' --like
//	likematch --config queries.yaml
//
// Exit codes: 0 on success, 2 for invalid arguments, 1 for I/O or parse
// failures.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jessevdk/go-flags"
	"github.com/k0kubun/pp/v3"
	"gopkg.in/yaml.v2"

	"github.com/coregx/likematch/engine"
	"github.com/coregx/likematch/kernel"
	"github.com/coregx/likematch/like"
	"github.com/coregx/likematch/storage"
)

type options struct {
	Algorithm string `short:"a" long:"algorithm" description:"Search kernel" default:"naive" choice:"naive" choice:"naive-scalar" choice:"naive-vector" choice:"kmp" choice:"bm" choice:"lut-short" choice:"fft" choice:"kmer"`

	Texts []string `short:"t" long:"text" value-name:"FILE" description:"Input file (repeatable; .fa/.fasta parsed as FASTA, .gz decompressed)"`

	Pattern     string `long:"pattern" description:"Pattern literal"`
	PatternFile string `long:"pattern-file" value-name:"FILE" description:"Read the pattern from a file"`

	Like               bool `long:"like" description:"Interpret the pattern as a LIKE predicate (% and _)"`
	UnderscoreLiteral  bool `long:"underscore-literal" description:"Treat _ as a literal byte"`
	UnderscoreWildcard bool `long:"underscore-wildcard" description:"Literal _ matches any single byte (requires --underscore-literal)"`

	KmerK       int `long:"kmer-k" default:"8" description:"K for the k-mer kernel"`
	KmerMinHits int `long:"kmer-min-hits" default:"3" description:"Diagonal vote threshold for the k-mer kernel"`

	Config      string `long:"config" value-name:"FILE" description:"YAML file with patterns and texts"`
	Output      string `short:"o" long:"output" value-name:"FILE" description:"Write results to a file instead of stdout"`
	MeasureTime bool   `long:"measure-time" description:"Print elapsed nanoseconds per search"`
	Debug       bool   `long:"debug" description:"Dump the compiled pattern"`
	NoColor     bool   `long:"no-color" description:"Disable colored output"`
}

// configFile is the YAML batch format: a pattern set applied to a text
// set with one kernel.
type configFile struct {
	Algorithm string   `yaml:"algorithm"`
	Like      bool     `yaml:"like"`
	Patterns  []string `yaml:"patterns"`
	Texts     []string `yaml:"texts"`
}

// usageError distinguishes bad invocations (exit 2) from runtime
// failures (exit 1).
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[OPTIONS]"

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if err := run(&opts); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "likematch: %v\n", err)
		if _, ok := err.(*usageError); ok {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(opts *options) error {
	if opts.NoColor {
		color.NoColor = true
	}

	patterns, texts, err := resolveInputs(opts)
	if err != nil {
		return err
	}

	searcher, err := buildKernel(opts)
	if err != nil {
		return &usageError{msg: err.Error()}
	}

	likeOpts := like.Options{
		TreatUnderscoreAsLiteral:    opts.UnderscoreLiteral,
		LiteralUnderscoreIsWildcard: opts.UnderscoreWildcard,
	}
	if err := likeOpts.Validate(); err != nil {
		return &usageError{msg: err.Error()}
	}

	out := io.Writer(os.Stdout)
	if opts.Output != "" {
		f, err := os.Create(opts.Output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
		color.NoColor = true
	}

	arena := storage.NewArena(storage.DefaultArenaSize())
	ds, err := storage.LoadDatasetFromPaths(arena, texts)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "# algorithm=%s, like=%v, patterns=%d\n", searcher.Name(), opts.Like, len(patterns))

	for _, pat := range patterns {
		if opts.Like {
			if err := runLike(out, opts, searcher, likeOpts, pat, ds); err != nil {
				return err
			}
		} else {
			if err := runFindAll(out, opts, searcher, pat, ds); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveInputs merges command line and config file into the pattern and
// text lists.
func resolveInputs(opts *options) (patterns, texts []string, err error) {
	if opts.Config != "" {
		raw, err := os.ReadFile(opts.Config)
		if err != nil {
			return nil, nil, fmt.Errorf("reading config %s: %w", opts.Config, err)
		}
		var cfg configFile
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, nil, fmt.Errorf("parsing config %s: %w", opts.Config, err)
		}
		if cfg.Algorithm != "" {
			opts.Algorithm = cfg.Algorithm
		}
		if cfg.Like {
			opts.Like = true
		}
		patterns = append(patterns, cfg.Patterns...)
		texts = append(texts, cfg.Texts...)
	}

	if opts.Pattern != "" && opts.PatternFile != "" {
		return nil, nil, &usageError{msg: "--pattern and --pattern-file are mutually exclusive"}
	}
	if opts.Pattern != "" {
		patterns = append(patterns, opts.Pattern)
	}
	if opts.PatternFile != "" {
		raw, err := os.ReadFile(opts.PatternFile)
		if err != nil {
			return nil, nil, fmt.Errorf("reading pattern file %s: %w", opts.PatternFile, err)
		}
		patterns = append(patterns, strings.TrimRight(string(raw), "\r\n"))
	}
	texts = append(texts, opts.Texts...)

	if len(patterns) == 0 {
		return nil, nil, &usageError{msg: "no pattern given: use --pattern, --pattern-file or --config"}
	}
	for _, p := range patterns {
		if p == "" {
			return nil, nil, &usageError{msg: "pattern must not be empty"}
		}
	}
	if len(texts) == 0 {
		return nil, nil, &usageError{msg: "no input files given: use --text or --config"}
	}
	return patterns, texts, nil
}

func buildKernel(opts *options) (kernel.Searcher, error) {
	switch {
	case opts.Algorithm == "kmer":
		return kernel.Kmer{K: opts.KmerK, MinHits: opts.KmerMinHits}, nil
	case opts.Algorithm == "fft" && opts.UnderscoreLiteral && !opts.UnderscoreWildcard:
		// Plain-literal underscores: the kernel must not treat '_' as a
		// wildcard byte.
		return kernel.FFT{}, nil
	default:
		return kernel.Lookup(opts.Algorithm)
	}
}

func runFindAll(out io.Writer, opts *options, searcher kernel.Searcher, pat string, ds *storage.Dataset) error {
	st, err := searcher.Build([]byte(pat))
	if err != nil {
		return err
	}

	for ti := range ds.Tables {
		table := &ds.Tables[ti]
		fmt.Fprintf(out, "text=%s\n", color.GreenString(table.Name))

		start := time.Now()
		var all [][]int
		for ri := range table.Rows {
			all = append(all, kernel.FindAll(st, table.Rows[ri].Data))
		}
		elapsed := time.Since(start)

		if opts.MeasureTime {
			fmt.Fprintf(out, "execution_time: %dns\n", elapsed.Nanoseconds())
		}
		for ri, offsets := range all {
			if len(table.Rows) > 1 {
				fmt.Fprintf(out, "row=%s matches: %v\n", table.Rows[ri].ID, offsets)
			} else {
				fmt.Fprintf(out, "matches: %v\n", offsets)
			}
		}
		fmt.Fprintln(out)
	}
	return nil
}

func runLike(out io.Writer, opts *options, searcher kernel.Searcher, likeOpts like.Options, pat string, ds *storage.Dataset) error {
	compiled, err := like.Compile([]byte(pat), searcher, likeOpts)
	if err != nil {
		return err
	}

	if opts.Debug {
		printer := pp.New()
		printer.SetOutput(os.Stderr)
		printer.Println(compiled.Tokens())
	}

	start := time.Now()
	matches := engine.Execute(compiled, ds)
	elapsed := time.Since(start)

	fmt.Fprintf(out, "pattern=%s\n", color.CyanString(pat))
	if opts.MeasureTime {
		fmt.Fprintf(out, "execution_time: %dns\n", elapsed.Nanoseconds())
	}

	perTable := make(map[string]int)
	for _, m := range matches {
		perTable[m.Table]++
	}
	for ti := range ds.Tables {
		name := ds.Tables[ti].Name
		fmt.Fprintf(out, "text=%s matched_rows: %d\n", color.GreenString(name), perTable[name])
	}
	fmt.Fprintln(out)
	return nil
}
