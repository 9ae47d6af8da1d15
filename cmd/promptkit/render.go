package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-promptkit/pkg/cache"
	"github.com/goliatone/go-promptkit/pkg/interactive"
	"github.com/goliatone/go-promptkit/pkg/orchestrator"
	"github.com/goliatone/go-promptkit/pkg/render"
	pkgtemplate "github.com/goliatone/go-promptkit/pkg/template"
)

type renderFlags struct {
	sourceFlags
	slots       []string
	engine      string
	output      string
	interactive bool
	watch       bool
	sanitize    bool
}

func newRenderCmd(a *app) *cobra.Command {
	flags := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render TEMPLATE",
		Short: "Render a template with the assembled context",
		Long: `Render loads TEMPLATE, resolves every {dotted.path} placeholder against the
context and writes the result. Any placeholder that cannot be resolved fails
the command without output.

TEMPLATE may be a file path, an http(s) URL, "builtin:NAME" for the embedded
prompts or "db:NAME" for the SQLite store.

Example:
  promptkit render builtin:career/system.txt --vars profile.yaml --set config.name=Ada`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRender(cmd, args[0], flags)
		},
	}

	addSourceFlags(cmd, &flags.sourceFlags)
	f := cmd.Flags()
	f.StringArrayVar(&flags.slots, "slot", nil, "render TEMPLATE into placeholder name first (name=TEMPLATE, repeatable)")
	f.StringVar(&flags.engine, "engine", "", "engine to render with (brace or pongo2)")
	f.StringVarP(&flags.output, "output", "o", "", "output file (stdout if empty)")
	f.BoolVarP(&flags.interactive, "interactive", "i", false, "prompt for values the context does not define")
	f.BoolVarP(&flags.watch, "watch", "w", false, "re-render whenever a template file changes")
	f.BoolVar(&flags.sanitize, "sanitize", false, "strip HTML markup from substituted values")
	return cmd
}

func addSourceFlags(cmd *cobra.Command, flags *sourceFlags) {
	f := cmd.Flags()
	f.StringArrayVar(&flags.varFiles, "vars", nil, "context document (json, yaml, toml, hcl); repeatable, merged in order")
	f.StringArrayVar(&flags.sets, "set", nil, "assign a context value (a.b=value); repeatable, applied last")
	f.BoolVar(&flags.builtin, "builtin", false, "read unprefixed templates from the embedded prompt set")
	f.StringVar(&flags.db, "db", "", "SQLite template store")
	f.DurationVar(&flags.httpTimeout, "http-timeout", 0, "timeout for URL templates")
}

func (a *app) runRender(cmd *cobra.Command, ref string, flags *renderFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	e, err := a.openEnv(ctx, flags.sourceFlags)
	if err != nil {
		return err
	}
	defer e.Close()

	data, err := a.renderData(flags.sourceFlags)
	if err != nil {
		return err
	}

	registry, err := a.registry(flags.sanitize)
	if err != nil {
		return err
	}

	engine := flags.engine
	if engine == "" {
		engine = a.cfg.Engine
	}
	if engine == "" {
		engine = render.EngineName
	}
	if !registry.Has(engine) {
		return fmt.Errorf("unknown engine %q (available: %s)", engine, strings.Join(registry.List(), ", "))
	}

	req, err := a.buildRequest(e, ref, flags.slots, engine, data)
	if err != nil {
		return err
	}

	c := cache.New(e.loader, cache.WithLogger(a.logger))
	gen := orchestrator.New(
		orchestrator.WithCache(c),
		orchestrator.WithRegistry(registry),
		orchestrator.WithDefaultEngine(engine),
		orchestrator.WithLogger(a.logger),
	)

	if flags.interactive {
		if engine != render.EngineName {
			return fmt.Errorf("--interactive requires the %s engine", render.EngineName)
		}
		driver := a.driver
		if driver == nil {
			driver = interactive.NewSurveyDriver()
		}
		filler, err := interactive.NewFiller(driver)
		if err != nil {
			return err
		}
		if err := fillRequest(ctx, c, filler, &req); err != nil {
			return err
		}
	}

	if err := a.renderOnce(ctx, cmd.OutOrStdout(), gen, req, flags.output); err != nil {
		return err
	}
	if !flags.watch {
		return nil
	}
	return a.watch(ctx, cmd, c, gen, req, flags.output)
}

func (a *app) buildRequest(e *env, ref string, slots []string, engine string, data map[string]any) (orchestrator.Request, error) {
	src, err := e.source(ref)
	if err != nil {
		return orchestrator.Request{}, err
	}
	req := orchestrator.Request{Source: src, Data: data, Engine: engine}

	if len(slots) == 0 {
		return req, nil
	}
	req.Slots = make(map[string]orchestrator.Request, len(slots))
	for _, raw := range slots {
		name, slotRef, ok := strings.Cut(raw, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return orchestrator.Request{}, fmt.Errorf("slot %q: expected name=TEMPLATE", raw)
		}
		if _, dup := req.Slots[name]; dup {
			return orchestrator.Request{}, fmt.Errorf("slot %q given twice", name)
		}
		slotSrc, err := e.source(slotRef)
		if err != nil {
			return orchestrator.Request{}, fmt.Errorf("slot %q: %w", name, err)
		}
		req.Slots[name] = orchestrator.Request{Source: slotSrc, Data: data, Engine: engine}
	}
	return req, nil
}

// fillRequest prompts for every value the slots and the main template leave
// unresolved. Slot names count as defined for the main template.
func fillRequest(ctx context.Context, loader pkgtemplate.Loader, filler *interactive.Filler, req *orchestrator.Request) error {
	data, _ := req.Data.(map[string]any)

	names := make([]string, 0, len(req.Slots))
	for name := range req.Slots {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		slot := req.Slots[name]
		tpl, err := loader.Load(ctx, slot.Source)
		if err != nil {
			return &render.ResourceError{Source: slot.Source, Err: err}
		}
		if data, err = filler.Fill(ctx, tpl.Text(), data); err != nil {
			return err
		}
	}

	tpl, err := loader.Load(ctx, req.Source)
	if err != nil {
		return &render.ResourceError{Source: req.Source, Err: err}
	}
	if data, err = filler.FillExcept(ctx, tpl.Text(), data, names); err != nil {
		return err
	}

	req.Data = data
	for _, name := range names {
		slot := req.Slots[name]
		slot.Data = data
		req.Slots[name] = slot
	}
	return nil
}

func (a *app) renderOnce(ctx context.Context, stdout io.Writer, gen *orchestrator.Orchestrator, req orchestrator.Request, output string) error {
	out, err := gen.Generate(ctx, req)
	if err != nil {
		return err
	}
	if output == "" {
		_, err := io.WriteString(stdout, out)
		return err
	}
	if err := os.WriteFile(output, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	a.logger.Info("wrote prompt", zap.String("path", output), zap.Int("bytes", len(out)))
	return nil
}

// watch re-renders req every time one of its file templates changes, until
// ctx is cancelled. Render failures are logged and do not stop watching.
func (a *app) watch(ctx context.Context, cmd *cobra.Command, c *cache.Cache, gen *orchestrator.Orchestrator, req orchestrator.Request, output string) error {
	dirs := watchDirs(req)
	if len(dirs) == 0 {
		return errors.New("--watch needs at least one file template")
	}

	changed := make(chan string, 1)
	w, err := cache.NewWatcher(c,
		cache.WithWatcherLogger(a.logger),
		cache.WithOnChange(func(path string) {
			select {
			case changed <- path:
			default:
			}
		}),
	)
	if err != nil {
		return err
	}
	if err := w.Add(dirs...); err != nil {
		w.Stop()
		return err
	}
	w.Start(ctx)
	defer w.Stop()

	a.logger.Info("watching templates", zap.Strings("dirs", dirs))
	for {
		select {
		case <-ctx.Done():
			return nil
		case path := <-changed:
			a.logger.Debug("template changed", zap.String("path", path))
			if err := a.renderOnce(ctx, cmd.OutOrStdout(), gen, req, output); err != nil {
				a.logger.Warn("re-render failed", zap.Error(err))
			}
		}
	}
}

func watchDirs(req orchestrator.Request) []string {
	seen := map[string]struct{}{}
	var out []string
	var visit func(r orchestrator.Request)
	visit = func(r orchestrator.Request) {
		if r.Source != nil && r.Source.Kind() == pkgtemplate.SourceKindFile {
			dir := filepath.Dir(r.Source.Location())
			if abs, err := filepath.Abs(dir); err == nil {
				dir = abs
			}
			if _, ok := seen[dir]; !ok {
				seen[dir] = struct{}{}
				out = append(out, dir)
			}
		}
		for _, slot := range r.Slots {
			visit(slot)
		}
	}
	visit(req)
	sort.Strings(out)
	return out
}
