package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ColumnSpec selects one column of a delimited file by zero-based index
// and names the resulting table ("file.Name").
type ColumnSpec struct {
	Name  string
	Index int
}

// DelimitedOptions controls delimited-file parsing.
type DelimitedOptions struct {
	Delimiter  rune
	HasHeaders bool
	TrimFields bool
}

// DefaultDelimitedOptions returns comma-separated, headered, trimmed.
func DefaultDelimitedOptions() DelimitedOptions {
	return DelimitedOptions{
		Delimiter:  ',',
		HasHeaders: true,
		TrimFields: true,
	}
}

// ByteLimit is an ingestion budget. Rows whose selected fields would push
// the running total past Max are refused (skipped, not truncated).
type ByteLimit struct {
	Max     int
	current int
}

// NewByteLimit returns a budget of max bytes.
func NewByteLimit(max int) *ByteLimit {
	return &ByteLimit{Max: max}
}

// TryReserve consumes n bytes of budget, reporting whether they fit.
func (l *ByteLimit) TryReserve(n int) bool {
	if l.current+n > l.Max {
		return false
	}
	l.current += n
	return true
}

// Used returns the bytes reserved so far.
func (l *ByteLimit) Used() int { return l.current }

// LoadDelimitedColumns reads the selected columns of a delimited file into
// one table per column, each row's Data holding the field value. A nil
// limit means unbounded.
func LoadDelimitedColumns(arena *Arena, path string, opts DelimitedOptions, columns []ColumnSpec, limit *ByteLimit) ([]Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("storage: reading delimited file %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = opts.Delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rowsByColumn := make([][]Row, len(columns))

	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			offset := 0
			if pe, ok := err.(*csv.ParseError); ok {
				offset = pe.Line
			}
			return nil, &ParseError{Path: path, Offset: offset, Cause: err}
		}

		if first && opts.HasHeaders {
			first = false
			continue
		}
		first = false

		fields := make([]string, len(columns))
		total := 0
		for i, spec := range columns {
			var value string
			if spec.Index < len(record) {
				value = record[spec.Index]
			}
			if opts.TrimFields {
				value = strings.TrimSpace(value)
			}
			fields[i] = value
			total += len(value)
		}

		if limit != nil && !limit.TryReserve(total) {
			continue
		}

		for i, value := range fields {
			data, err := arena.CopyString(value)
			if err != nil {
				return nil, err
			}
			rowsByColumn[i] = append(rowsByColumn[i], Row{Data: data})
		}
	}

	fileName := filepath.Base(path)
	tables := make([]Table, len(columns))
	for i, spec := range columns {
		tables[i] = Table{
			Name: fileName + "." + spec.Name,
			Rows: rowsByColumn[i],
		}
	}
	return tables, nil
}
