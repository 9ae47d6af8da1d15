package render

import (
	"errors"
	"fmt"

	pkgtemplate "github.com/goliatone/go-promptkit/pkg/template"
)

var (
	// ErrResource classifies failures to locate or read a template.
	ErrResource = errors.New("render: template resource unavailable")
	// ErrResolution classifies placeholders that could not be resolved.
	ErrResolution = errors.New("render: placeholder resolution failed")
)

// ResourceError reports a template that could not be loaded.
type ResourceError struct {
	Source pkgtemplate.Source
	Err    error
}

func (e *ResourceError) Error() string {
	location := "<nil>"
	if e.Source != nil {
		location = pkgtemplate.Key(e.Source)
	}
	return fmt.Sprintf("render: load template %s: %v", location, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrResource) match any ResourceError.
func (e *ResourceError) Is(target error) bool {
	return target == ErrResource
}

// ResolutionError reports a placeholder whose path is absent from the
// context.
type ResolutionError struct {
	// Path is the full dotted path of the placeholder.
	Path string
	// Segment is the segment at which resolution stopped.
	Segment string
	// Offset is the byte offset of the placeholder in the template text.
	Offset int
	Err    error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("render: cannot resolve {%s} at offset %d: segment %q: %v", e.Path, e.Offset, e.Segment, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrResolution) match any ResolutionError.
func (e *ResolutionError) Is(target error) bool {
	return target == ErrResolution
}
