package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	internalLoader "github.com/goliatone/go-promptkit/internal/template/loader"
	"github.com/goliatone/go-promptkit/pkg/cache"
	"github.com/goliatone/go-promptkit/pkg/render"
	pkgtemplate "github.com/goliatone/go-promptkit/pkg/template"
	"github.com/goliatone/go-promptkit/pkg/vars"
)

const defaultEngineName = render.EngineName

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects a custom template loader.
func WithLoader(loader pkgtemplate.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithCache routes every load through c. It takes precedence over WithLoader.
func WithCache(c *cache.Cache) Option {
	return func(o *Orchestrator) {
		o.cache = c
	}
}

// WithRegistry injects an engine registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultEngine overrides the engine used when a request omits an
// explicit Engine field.
func WithDefaultEngine(name string) Option {
	return func(o *Orchestrator) {
		o.defaultEngine = name
	}
}

// WithRenderer replaces the brace engine, typically to add value filters
// such as render.WithSanitizer. A registry passed through WithRegistry is
// copied first and left untouched.
func WithRenderer(renderer *render.Renderer) Option {
	return func(o *Orchestrator) {
		o.renderer = renderer
	}
}

// WithLogger injects a logger for render events.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator composes prompts: it loads templates, renders named slots
// first, and feeds their output into the enclosing template.
type Orchestrator struct {
	loader        pkgtemplate.Loader
	cache         *cache.Cache
	registry      *render.Registry
	renderer      *render.Renderer
	defaultEngine string
	logger        *zap.Logger
	initialiseErr error
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultEngine: defaultEngineName,
		logger:        zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes one prompt to render.
type Request struct {
	// Source identifies where the template lives. Optional when Template is
	// supplied.
	Source pkgtemplate.Source

	// Template bypasses the loader when the caller already holds the text.
	Template *pkgtemplate.Template

	// Data is the render context. It must be a map when Slots is non-empty.
	Data any

	// Engine names the engine to use. If empty, the orchestrator falls back
	// to the configured default engine.
	Engine string

	// Slots are rendered before this request and exposed to it under their
	// name, which may be a dotted path such as "context.summary".
	Slots map[string]Request
}

// Generate renders req. Slots are rendered first in name order and their
// output is added to a copy of req.Data before the main template renders.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (string, error) {
	if ctx == nil {
		return "", errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := o.initialiseErr; err != nil {
		return "", err
	}

	data, err := o.renderSlots(ctx, req)
	if err != nil {
		return "", err
	}

	tpl, err := o.resolveTemplate(ctx, req)
	if err != nil {
		return "", err
	}

	engine, err := o.engineFor(req.Engine)
	if err != nil {
		return "", err
	}

	started := time.Now()
	out, err := engine.Render(tpl.Text(), data)
	if err != nil {
		o.logger.Warn("render failed",
			zap.String("source", sourceKey(tpl.Source())),
			zap.String("engine", engine.Name()),
			zap.Error(err),
		)
		return "", fmt.Errorf("orchestrator: render %s: %w", sourceKey(tpl.Source()), err)
	}
	o.logger.Debug("rendered template",
		zap.String("source", sourceKey(tpl.Source())),
		zap.String("engine", engine.Name()),
		zap.Duration("duration", time.Since(started)),
	)
	return out, nil
}

// GenerateAll renders independent requests concurrently. Results keep the
// order of reqs; the first failure cancels the rest.
func (o *Orchestrator) GenerateAll(ctx context.Context, reqs []Request) ([]string, error) {
	out := make([]string, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	for i := range reqs {
		i := i
		g.Go(func() error {
			result, err := o.Generate(gctx, reqs[i])
			if err != nil {
				return fmt.Errorf("orchestrator: request %d: %w", i, err)
			}
			out[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (o *Orchestrator) renderSlots(ctx context.Context, req Request) (any, error) {
	if len(req.Slots) == 0 {
		return req.Data, nil
	}

	var data map[string]any
	switch v := req.Data.(type) {
	case nil:
		data = map[string]any{}
	case map[string]any:
		data = vars.Clone(v)
	default:
		return nil, fmt.Errorf("orchestrator: slots require map data, got %T", req.Data)
	}

	names := make([]string, 0, len(req.Slots))
	for name := range req.Slots {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		out, err := o.Generate(ctx, req.Slots[name])
		if err != nil {
			return nil, fmt.Errorf("orchestrator: slot %q: %w", name, err)
		}
		slot, err := vars.Text(name, out)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: slot %q: %w", name, err)
		}
		vars.Merge(data, slot)
	}
	return data, nil
}

func (o *Orchestrator) resolveTemplate(ctx context.Context, req Request) (pkgtemplate.Template, error) {
	if req.Template != nil {
		return *req.Template, nil
	}
	if req.Source == nil {
		return pkgtemplate.Template{}, errors.New("orchestrator: source or template is required")
	}

	var loader pkgtemplate.Loader = o.loader
	if o.cache != nil {
		loader = o.cache
	}
	tpl, err := loader.Load(ctx, req.Source)
	if err != nil {
		return pkgtemplate.Template{}, &render.ResourceError{Source: req.Source, Err: err}
	}
	return tpl, nil
}

func (o *Orchestrator) engineFor(name string) (render.Engine, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: engine registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultEngine
	}
	engine, err := o.registry.Get(target)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: engine %q: %w", target, err)
	}
	return engine, nil
}

func (o *Orchestrator) applyDefaults() {
	if o.loader == nil {
		o.loader = internalLoader.New(pkgtemplate.NewLoaderOptions())
	}
	injected := o.registry != nil
	if !injected {
		o.registry = render.DefaultRegistry()
	}
	if o.renderer != nil {
		if injected {
			o.registry = o.registry.Clone()
		}
		if err := o.registry.Replace(o.renderer); err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: register renderer: %w", err)
		}
	}
	if o.defaultEngine == "" {
		o.defaultEngine = defaultEngineName
	}
}

func sourceKey(src pkgtemplate.Source) string {
	if src == nil {
		return "<inline>"
	}
	return pkgtemplate.Key(src)
}
