package vars

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-promptkit/pkg/resolve"
)

// Merge deep-merges src into dst. Nested maps merge key by key; any other
// value in src replaces the one in dst.
func Merge(dst, src map[string]any) {
	for key, value := range src {
		incoming, ok := value.(map[string]any)
		if !ok {
			dst[key] = value
			continue
		}
		existing, ok := dst[key].(map[string]any)
		if !ok {
			existing = map[string]any{}
			dst[key] = existing
		}
		Merge(existing, incoming)
	}
}

// Clone returns a deep copy of the nested maps in m. Leaf values are shared.
func Clone(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for key, value := range m {
		if nested, ok := value.(map[string]any); ok {
			out[key] = Clone(nested)
			continue
		}
		out[key] = value
	}
	return out
}

// Text returns a context holding content at the dotted path name, ready to
// be merged over another context. It is how rendered slot output is spliced
// into the context of the enclosing template.
func Text(name, content string) (map[string]any, error) {
	out := map[string]any{}
	if err := Set(out, name, content); err != nil {
		return nil, err
	}
	return out, nil
}

// Set stores value at the dotted path inside dst, creating intermediate maps.
// It fails when a non-map value already occupies an intermediate segment.
func Set(dst map[string]any, path string, value any) error {
	p, err := resolve.ParsePath(path)
	if err != nil {
		return fmt.Errorf("vars: %w", err)
	}
	segments := p.Segments()

	current := dst
	for i, segment := range segments[:len(segments)-1] {
		next, exists := current[segment]
		if !exists || next == nil {
			child := map[string]any{}
			current[segment] = child
			current = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("vars: cannot set %s: %s is %T, not a map", path, strings.Join(segments[:i+1], "."), next)
		}
		current = child
	}
	current[segments[len(segments)-1]] = value
	return nil
}

// ParseAssignment splits "a.b=value" into its path and value.
func ParseAssignment(raw string) (string, string, error) {
	path, value, ok := strings.Cut(raw, "=")
	path = strings.TrimSpace(path)
	if !ok || path == "" {
		return "", "", fmt.Errorf("vars: assignment %q must look like path=value", raw)
	}
	if _, err := resolve.ParsePath(path); err != nil {
		return "", "", fmt.Errorf("vars: assignment %q: %w", raw, err)
	}
	return path, value, nil
}

// ApplyAssignments parses and sets each "path=value" assignment on dst.
func ApplyAssignments(dst map[string]any, assignments ...string) error {
	for _, raw := range assignments {
		path, value, err := ParseAssignment(raw)
		if err != nil {
			return err
		}
		if err := Set(dst, path, value); err != nil {
			return err
		}
	}
	return nil
}
