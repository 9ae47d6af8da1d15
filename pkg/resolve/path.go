package resolve

import (
	"fmt"
	"strings"
)

// Path is a parsed dotted placeholder reference such as "user.name".
type Path struct {
	raw      string
	segments []string
}

// ParsePath validates raw and splits it into segments. Every segment must be
// a non-empty run of ASCII letters, digits, or underscores.
func ParsePath(raw string) (Path, error) {
	if raw == "" {
		return Path{}, fmt.Errorf("resolve: empty path")
	}
	segments := strings.Split(raw, ".")
	for i, segment := range segments {
		if !isIdentifier(segment) {
			return Path{}, fmt.Errorf("resolve: invalid segment %d %q in path %q", i, segment, raw)
		}
	}
	return Path{raw: raw, segments: segments}, nil
}

// MustParsePath panics when raw is not a valid path.
func MustParsePath(raw string) Path {
	p, err := ParsePath(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the dotted form.
func (p Path) String() string {
	return p.raw
}

// Segments returns a copy of the path segments.
func (p Path) Segments() []string {
	return append([]string(nil), p.segments...)
}

// Len returns the number of segments.
func (p Path) Len() int {
	return len(p.segments)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		default:
			return false
		}
	}
	return true
}
