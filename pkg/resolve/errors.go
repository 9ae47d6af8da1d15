package resolve

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a missing key or field.
	ErrNotFound = errors.New("resolve: not found")
	// ErrNotTraversable reports a segment applied to a value that is neither a
	// mapping nor a struct.
	ErrNotTraversable = errors.New("resolve: value is not traversable")
)

// Error describes where a path stopped resolving.
type Error struct {
	// Path is the full dotted path being resolved.
	Path string
	// Segment is the segment that could not be resolved.
	Segment string
	// Index is the position of Segment within Path.
	Index int
	// Err is ErrNotFound or ErrNotTraversable.
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("resolve: %s: segment %q: %v", e.Path, e.Segment, reason(e.Err))
}

func (e *Error) Unwrap() error {
	return e.Err
}

func reason(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not found"
	case errors.Is(err, ErrNotTraversable):
		return "value is not traversable"
	case err == nil:
		return "unknown"
	default:
		return err.Error()
	}
}
