package kernel

import "fmt"

// ErrorKind classifies kernel construction failures.
type ErrorKind uint8

const (
	// BadInput indicates a pattern the kernel cannot represent: empty
	// where disallowed, or larger than the transform field supports.
	BadInput ErrorKind = iota

	// BadConfig indicates searcher tuning knobs out of range.
	BadConfig
)

// String returns a human-readable kind name.
func (k ErrorKind) String() string {
	switch k {
	case BadInput:
		return "BadInput"
	case BadConfig:
		return "BadConfig"
	default:
		return fmt.Sprintf("UnknownErrorKind(%d)", k)
	}
}

// Error is returned by Searcher.Build for patterns or configurations a
// kernel cannot handle. Search misses are not errors; they are -1 results.
type Error struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return "kernel: " + e.Message
}

// Is matches errors by kind for errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}
