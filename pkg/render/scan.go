package render

import (
	"regexp"

	"github.com/goliatone/go-promptkit/pkg/resolve"
)

// placeholderPattern is the only marker syntax recognised by the brace engine:
// an opening brace, dot-separated identifier segments, and a closing brace.
var placeholderPattern = regexp.MustCompile(`\{([A-Za-z0-9_]+(?:\.[A-Za-z0-9_]+)*)\}`)

// Placeholder is a single marker found in template text.
type Placeholder struct {
	// Raw is the marker exactly as written, braces included.
	Raw string
	// Path is the dotted reference inside the braces.
	Path resolve.Path
	// Start and End are byte offsets of Raw within the scanned text.
	Start int
	End   int
}

// Scan returns every placeholder in text in document order.
func Scan(text string) []Placeholder {
	matches := placeholderPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	out := make([]Placeholder, 0, len(matches))
	for _, m := range matches {
		out = append(out, Placeholder{
			Raw:   text[m[0]:m[1]],
			Path:  resolve.MustParsePath(text[m[2]:m[3]]),
			Start: m[0],
			End:   m[1],
		})
	}
	return out
}

// Paths returns the distinct placeholder paths in text, in order of first
// appearance.
func Paths(text string) []string {
	placeholders := Scan(text)
	if len(placeholders) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(placeholders))
	out := make([]string, 0, len(placeholders))
	for _, p := range placeholders {
		key := p.Path.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

// Missing returns every distinct placeholder path in text that cannot be
// resolved against data, in order of first appearance.
func Missing(text string, data any) []string {
	var out []string
	for _, raw := range Paths(text) {
		if _, err := resolve.Resolve(data, resolve.MustParsePath(raw)); err != nil {
			out = append(out, raw)
		}
	}
	return out
}
