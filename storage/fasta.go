package storage

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"
)

// ParseFASTA parses raw FASTA bytes into rows stored in the arena. Every
// entry starts with a '>' header line holding an ID and, after the first
// space, an optional description; subsequent lines up to the next header
// are concatenated into the sequence data. CRLF line endings and blank
// lines are tolerated.
//
// Errors carry the path and a byte offset, and are never silently
// skipped. For a malformed line the offset is that of the line; for
// invalid UTF-8 in sequence data it is where the entry ends (the next
// header line, or the end of the input).
func ParseFASTA(arena *Arena, raw []byte, path string) ([]Row, error) {
	var rows []Row

	var (
		haveHeader bool
		headerID   []byte
		headerDesc []byte
	)
	seqBuf := make([]byte, 0, 4096)

	flush := func(lineStart int) error {
		if !haveHeader {
			return nil
		}
		if !utf8.Valid(seqBuf) {
			return &ParseError{
				Path:   path,
				Offset: lineStart,
				Cause:  fmt.Errorf("invalid UTF-8 in sequence data for ID %q", headerID),
			}
		}
		data, err := arena.Bytes(seqBuf)
		if err != nil {
			return err
		}
		rows = append(rows, Row{ID: headerID, Desc: headerDesc, Data: data})
		return nil
	}

	ptr := 0
	for ptr < len(raw) {
		end := bytes.IndexByte(raw[ptr:], '\n')
		if end < 0 {
			end = len(raw)
		} else {
			end += ptr
		}

		line := raw[ptr:end]
		line = bytes.TrimSuffix(line, []byte("\r"))

		switch {
		case len(line) == 0:
			// Blank line: skip.

		case line[0] == '>':
			if err := flush(ptr); err != nil {
				return nil, err
			}

			header := line[1:]
			var rawID, rawDesc []byte
			if sp := bytes.IndexByte(header, ' '); sp >= 0 {
				rawID, rawDesc = header[:sp], header[sp+1:]
			} else {
				rawID = header
			}
			if !utf8.Valid(rawID) || !utf8.Valid(rawDesc) {
				return nil, &ParseError{
					Path:   path,
					Offset: ptr,
					Cause:  errors.New("invalid UTF-8 in FASTA header"),
				}
			}

			var err error
			if headerID, err = arena.Bytes(rawID); err != nil {
				return nil, err
			}
			if headerDesc, err = arena.Bytes(rawDesc); err != nil {
				return nil, err
			}
			haveHeader = true
			seqBuf = seqBuf[:0]

		default:
			if !haveHeader {
				return nil, &ParseError{
					Path:   path,
					Offset: ptr,
					Cause:  errors.New("sequence data before the first '>' header"),
				}
			}
			seqBuf = append(seqBuf, line...)
		}

		ptr = end + 1
	}

	if err := flush(len(raw)); err != nil {
		return nil, err
	}
	return rows, nil
}
