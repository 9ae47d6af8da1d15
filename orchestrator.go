package promptkit

import (
	"context"

	"github.com/goliatone/go-promptkit/pkg/orchestrator"
	"github.com/goliatone/go-promptkit/pkg/render"
	pkgtemplate "github.com/goliatone/go-promptkit/pkg/template"
)

// Request aliases orchestrator.Request for callers composing prompts through
// the root package.
type Request = orchestrator.Request

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// NewRenderer returns a brace placeholder renderer.
func NewRenderer(options ...render.Option) *render.Renderer {
	return render.New(options...)
}

// Render loads the template at src with the default loader and substitutes
// its placeholders from data. It is the simplest entry point for callers that
// just want a prompt string.
func Render(ctx context.Context, src pkgtemplate.Source, data any, options ...pkgtemplate.LoaderOption) (string, error) {
	return render.New().Load(ctx, NewLoader(options...), src, data)
}

// RenderString substitutes the placeholders in text from data without
// touching any template store.
func RenderString(text string, data any) (string, error) {
	return render.New().RenderString(text, data)
}
