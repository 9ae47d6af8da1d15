package template

import (
	"errors"
	"time"
)

// Version captures what a loader knows about a template revision. Caches
// compare versions to decide whether a stored template is stale.
type Version struct {
	ModTime time.Time
	Size    int64
}

// IsZero reports whether the version carries no information.
func (v Version) IsZero() bool {
	return v.ModTime.IsZero() && v.Size == 0
}

// Equal reports whether both versions describe the same revision.
func (v Version) Equal(other Version) bool {
	return v.ModTime.Equal(other.ModTime) && v.Size == other.Size
}

// Template is an immutable prompt text together with its origin.
type Template struct {
	source  Source
	text    string
	version Version
}

// NewTemplate constructs a Template. Empty text is valid and renders to the
// empty string.
func NewTemplate(src Source, text string, version Version) (Template, error) {
	if src == nil {
		return Template{}, errors.New("template: source is required")
	}
	return Template{source: src, text: text, version: version}, nil
}

// MustNewTemplate panics if the template cannot be created. Useful for tests.
func MustNewTemplate(src Source, text string) Template {
	tpl, err := NewTemplate(src, text, Version{Size: int64(len(text))})
	if err != nil {
		panic(err)
	}
	return tpl
}

// Source returns the origin metadata for the template.
func (t Template) Source() Source {
	return t.source
}

// Text returns the raw template text.
func (t Template) Text() string {
	return t.text
}

// Version returns the revision the loader observed when reading the text.
func (t Template) Version() Version {
	return t.version
}
