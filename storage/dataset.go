package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/pgzip"
)

// Row is one searchable record. All three fields are arena-backed byte
// slices; Data is the payload LIKE patterns match against.
type Row struct {
	ID   []byte
	Desc []byte
	Data []byte
}

// Table is a named, immutable sequence of rows.
type Table struct {
	Name string
	Rows []Row
}

// Dataset is an immutable sequence of tables, built once and queried many
// times.
type Dataset struct {
	Tables []Table
}

// SourceKind selects a loader for an input file.
type SourceKind uint8

const (
	// SourceText loads the whole file as a single row.
	SourceText SourceKind = iota
	// SourceFASTA parses '>'-delimited sequence entries.
	SourceFASTA
)

// Source pairs a path with the loader to use for it.
type Source struct {
	Path string
	Kind SourceKind
}

// ParseError reports a malformed input file with its location.
type ParseError struct {
	Path   string
	Offset int
	Cause  error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("storage: %s: offset %d: %v", e.Path, e.Offset, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error { return e.Cause }

// InferSourceKind guesses the loader from the file extension, looking
// through a trailing .gz.
func InferSourceKind(path string) SourceKind {
	name := strings.ToLower(path)
	name = strings.TrimSuffix(name, ".gz")
	switch filepath.Ext(name) {
	case ".fasta", ".fa", ".fna", ".faa", ".fsa":
		return SourceFASTA
	default:
		return SourceText
	}
}

// readAll reads path into memory, transparently decompressing .gz files
// with a parallel gzip reader.
func readAll(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		zr, err := pgzip.NewReader(f)
		if err != nil {
			return nil, &ParseError{Path: path, Cause: err}
		}
		defer zr.Close()
		r = zr
	}
	return io.ReadAll(r)
}

// LoadTextTable loads a whole file as a one-row table named after the
// file. The row ID is the file name; Desc is empty.
func LoadTextTable(arena *Arena, path string) (Table, error) {
	raw, err := readAll(path)
	if err != nil {
		return Table{}, fmt.Errorf("storage: reading text file %s: %w", path, err)
	}

	data, err := arena.Bytes(raw)
	if err != nil {
		return Table{}, err
	}
	name := filepath.Base(path)
	id, err := arena.CopyString(name)
	if err != nil {
		return Table{}, err
	}

	return Table{
		Name: name,
		Rows: []Row{{ID: id, Data: data}},
	}, nil
}

// LoadFastaTable loads a FASTA file (optionally gzipped) as one table with
// a row per sequence entry.
func LoadFastaTable(arena *Arena, path string) (Table, error) {
	raw, err := readAll(path)
	if err != nil {
		return Table{}, fmt.Errorf("storage: reading FASTA file %s: %w", path, err)
	}

	rows, err := ParseFASTA(arena, raw, path)
	if err != nil {
		return Table{}, err
	}
	return Table{Name: filepath.Base(path), Rows: rows}, nil
}

// LoadDataset loads every source into a fresh dataset backed by arena.
func LoadDataset(arena *Arena, sources []Source) (*Dataset, error) {
	tables := make([]Table, 0, len(sources))
	for _, src := range sources {
		var (
			table Table
			err   error
		)
		switch src.Kind {
		case SourceFASTA:
			table, err = LoadFastaTable(arena, src.Path)
		default:
			table, err = LoadTextTable(arena, src.Path)
		}
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	return &Dataset{Tables: tables}, nil
}

// LoadDatasetFromPaths is LoadDataset with loader kinds inferred from the
// file extensions.
func LoadDatasetFromPaths(arena *Arena, paths []string) (*Dataset, error) {
	sources := make([]Source, len(paths))
	for i, path := range paths {
		sources[i] = Source{Path: path, Kind: InferSourceKind(path)}
	}
	return LoadDataset(arena, sources)
}
