// Package storage provides the bump arena backing all row data and the
// loaders that fill it: plain text, FASTA (optionally gzipped), delimited
// files and SQLite columns.
//
// All row strings live in a single contiguous arena buffer, so a dataset
// is one allocation plus slice headers: cache-friendly to scan, O(1) to
// reset, and trivially shareable with indexes that refer to rows by byte
// offset. Slices handed out by the arena are valid until Reset; the arena
// has exactly one writer, while already-allocated slices may be read
// concurrently.
package storage

import (
	"fmt"

	"github.com/pbnjay/memory"
)

// ArenaError reports a failed arena allocation. The arena itself stays
// usable, but the operation that needed the memory must be abandoned.
type ArenaError struct {
	Capacity  int
	Used      int
	Requested int
}

// Error implements the error interface.
func (e *ArenaError) Error() string {
	return fmt.Sprintf("storage: arena out of memory: capacity=%d used=%d requested=%d",
		e.Capacity, e.Used, e.Requested)
}

// Arena is a bump allocator over one contiguous buffer. Not safe for
// concurrent allocation; handed-out slices are immutable by convention
// and may be read from any goroutine.
type Arena struct {
	buf []byte
	off int
}

// NewArena returns an arena with the given capacity in bytes.
// Non-positive sizes are a programming error.
func NewArena(size int) *Arena {
	if size <= 0 {
		panic("storage: arena size must be positive")
	}
	return &Arena{buf: make([]byte, size)}
}

// DefaultArenaSize derives an arena capacity from total system memory:
// one sixteenth of RAM, clamped to [64 MiB, 2 GiB]. Suitable for CLI use
// where the corpus size is unknown up front.
func DefaultArenaSize() int {
	const (
		minSize = 64 << 20
		maxSize = 2 << 30
	)
	total := memory.TotalMemory()
	size := int(total / 16)
	if size < minSize {
		return minSize
	}
	if size > maxSize {
		return maxSize
	}
	return size
}

// Alloc reserves size bytes aligned to align (a power of two) and returns
// the zeroed slice.
func (a *Arena) Alloc(size, align int) ([]byte, error) {
	if align > 1 {
		pad := (align - a.off%align) % align
		if a.off+pad > len(a.buf) {
			return nil, &ArenaError{Capacity: len(a.buf), Used: a.off, Requested: size}
		}
		a.off += pad
	}

	if a.off+size > len(a.buf) {
		return nil, &ArenaError{Capacity: len(a.buf), Used: a.off, Requested: size}
	}

	out := a.buf[a.off : a.off+size : a.off+size]
	clear(out)
	a.off += size
	return out, nil
}

// Bytes copies src into the arena and returns the arena-backed copy.
func (a *Arena) Bytes(src []byte) ([]byte, error) {
	dst, err := a.Alloc(len(src), 1)
	if err != nil {
		return nil, err
	}
	copy(dst, src)
	return dst, nil
}

// CopyString copies s into the arena and returns the arena-backed bytes.
func (a *Arena) CopyString(s string) ([]byte, error) {
	dst, err := a.Alloc(len(s), 1)
	if err != nil {
		return nil, err
	}
	copy(dst, s)
	return dst, nil
}

// Reset rewinds the write pointer to the start of the buffer. All slices
// previously handed out must no longer be used; the arena does not track
// them.
func (a *Arena) Reset() { a.off = 0 }

// Used returns the number of bytes allocated since the last Reset,
// including alignment padding.
func (a *Arena) Used() int { return a.off }

// Cap returns the arena capacity in bytes.
func (a *Arena) Cap() int { return len(a.buf) }
