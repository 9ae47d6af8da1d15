package render

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-promptkit/pkg/resolve"
	pkgtemplate "github.com/goliatone/go-promptkit/pkg/template"
)

// Engine turns template text plus a context into rendered text. Engines are
// stored by name in a Registry.
type Engine interface {
	Name() string
	Render(text string, data any) (string, error)
}

// EngineName is the registry name of the brace placeholder engine.
const EngineName = "brace"

// Renderer is the brace placeholder engine. It holds only configuration, so a
// single Renderer is safe for concurrent use.
type Renderer struct {
	stringer Stringer
	filters  []ValueFilter
}

// Ensure Renderer satisfies the Engine contract.
var _ Engine = (*Renderer)(nil)

// New constructs a Renderer applying the provided options.
func New(options ...Option) *Renderer {
	r := &Renderer{stringer: DefaultStringer}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Name implements Engine.
func (r *Renderer) Name() string {
	return EngineName
}

// Render implements Engine by delegating to RenderString.
func (r *Renderer) Render(text string, data any) (string, error) {
	return r.RenderString(text, data)
}

// RenderString substitutes every placeholder in text with the string form of
// the value its path resolves to in data. Substitution is single-pass: values
// containing placeholder syntax are emitted literally. Any unresolved path
// fails the whole call and no output is returned.
func (r *Renderer) RenderString(text string, data any) (string, error) {
	placeholders := Scan(text)
	if len(placeholders) == 0 {
		return text, nil
	}

	var b strings.Builder
	b.Grow(len(text))

	last := 0
	for _, p := range placeholders {
		value, err := resolve.Resolve(data, p.Path)
		if err != nil {
			return "", resolutionError(p, err)
		}

		s, err := r.stringer(value)
		if err != nil {
			return "", fmt.Errorf("render: format {%s}: %w", p.Path, err)
		}
		for _, filter := range r.filters {
			if s, err = filter(p.Path.String(), s); err != nil {
				return "", fmt.Errorf("render: filter {%s}: %w", p.Path, err)
			}
		}

		b.WriteString(text[last:p.Start])
		b.WriteString(s)
		last = p.End
	}
	b.WriteString(text[last:])

	return b.String(), nil
}

// RenderTemplate renders an already loaded template.
func (r *Renderer) RenderTemplate(tpl pkgtemplate.Template, data any) (string, error) {
	return r.RenderString(tpl.Text(), data)
}

// Load reads src through loader and renders it with data. Load failures are
// reported as *ResourceError and unresolved placeholders as
// *ResolutionError.
func (r *Renderer) Load(ctx context.Context, loader pkgtemplate.Loader, src pkgtemplate.Source, data any) (string, error) {
	if loader == nil {
		return "", &ResourceError{Source: src, Err: errors.New("loader is nil")}
	}
	tpl, err := loader.Load(ctx, src)
	if err != nil {
		return "", &ResourceError{Source: src, Err: err}
	}
	return r.RenderTemplate(tpl, data)
}

func resolutionError(p Placeholder, err error) error {
	out := &ResolutionError{Path: p.Path.String(), Offset: p.Start, Err: err}
	var rerr *resolve.Error
	if errors.As(err, &rerr) {
		out.Segment = rerr.Segment
		out.Err = rerr.Err
	}
	return out
}
