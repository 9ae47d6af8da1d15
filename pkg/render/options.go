package render

// ValueFilter post-processes the text produced for a placeholder. path is the
// dotted placeholder path. Returning an error fails the render.
type ValueFilter func(path, value string) (string, error)

// Option customises a Renderer.
type Option func(*Renderer)

// WithStringer replaces DefaultStringer.
func WithStringer(s Stringer) Option {
	return func(r *Renderer) {
		if s != nil {
			r.stringer = s
		}
	}
}

// WithValueFilter appends filters that run, in order, on every substituted
// value.
func WithValueFilter(filters ...ValueFilter) Option {
	return func(r *Renderer) {
		for _, f := range filters {
			if f != nil {
				r.filters = append(r.filters, f)
			}
		}
	}
}

// WithSanitizer strips HTML markup from substituted values. Template text
// itself is never sanitised.
func WithSanitizer() Option {
	return WithValueFilter(StripMarkup)
}
