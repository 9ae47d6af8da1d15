package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-promptkit"
	"github.com/goliatone/go-promptkit/pkg/render"
	"github.com/goliatone/go-promptkit/pkg/render/pongo"
	pkgtemplate "github.com/goliatone/go-promptkit/pkg/template"
	"github.com/goliatone/go-promptkit/pkg/vars"
)

const (
	builtinPrefix      = "builtin:"
	dbPrefix           = "db:"
	defaultHTTPTimeout = 30 * time.Second
)

// sourceFlags are the flags shared by commands that read templates and
// contexts.
type sourceFlags struct {
	varFiles    []string
	sets        []string
	builtin     bool
	db          string
	httpTimeout time.Duration
}

// env is what a command needs to load and render templates.
type env struct {
	loader      pkgtemplate.Loader
	db          *sql.DB
	templateDir string
	builtin     bool
}

func (e *env) Close() error {
	if e.db == nil {
		return nil
	}
	return e.db.Close()
}

// source maps a template reference to a Source. "builtin:" and "db:"
// prefixes select the embedded set and the SQLite store; unprefixed
// references follow --builtin and --db, then fall back to URLs and files.
func (e *env) source(ref string) (pkgtemplate.Source, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("template reference is required")
	}
	switch {
	case strings.HasPrefix(ref, builtinPrefix):
		return pkgtemplate.SourceFromFS(strings.TrimPrefix(ref, builtinPrefix)), nil
	case strings.HasPrefix(ref, dbPrefix):
		if e.db == nil {
			return nil, fmt.Errorf("template %q needs --db", ref)
		}
		return pkgtemplate.SourceFromSQL(strings.TrimPrefix(ref, dbPrefix)), nil
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return pkgtemplate.ParseURLSource(ref)
	case e.builtin:
		return pkgtemplate.SourceFromFS(ref), nil
	case e.db != nil:
		return pkgtemplate.SourceFromSQL(ref), nil
	}
	if e.templateDir != "" && !filepath.IsAbs(ref) {
		ref = filepath.Join(e.templateDir, ref)
	}
	return pkgtemplate.SourceFromFile(ref), nil
}

func (a *app) openEnv(ctx context.Context, flags sourceFlags) (*env, error) {
	timeout := flags.httpTimeout
	if timeout == 0 {
		timeout = a.cfg.HTTPTimeout
	}
	if timeout == 0 {
		timeout = defaultHTTPTimeout
	}

	e := &env{templateDir: a.cfg.TemplateDir, builtin: flags.builtin}
	options := []pkgtemplate.LoaderOption{
		pkgtemplate.WithFileSystem(promptkit.EmbeddedTemplates()),
		pkgtemplate.WithHTTPFallback(timeout),
	}

	dbPath := flags.db
	if dbPath == "" {
		dbPath = a.cfg.DB
	}
	if dbPath != "" {
		db, err := openStore(ctx, dbPath)
		if err != nil {
			return nil, err
		}
		e.db = db
		options = append(options, pkgtemplate.WithDB(db, ""))
		a.logger.Debug("opened template store", zap.String("db", dbPath))
	}

	e.loader = promptkit.NewLoader(options...)
	return e, nil
}

func openStore(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open template store %s: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open template store %s: %w", path, err)
	}
	return db, nil
}

// renderData assembles render data: config vars, then --vars files in order,
// then config assignments, then --set assignments.
func (a *app) renderData(flags sourceFlags) (map[string]any, error) {
	files := append(append([]string(nil), a.cfg.Vars...), flags.varFiles...)
	data, err := vars.LoadFiles(files...)
	if err != nil {
		return nil, err
	}
	if err := vars.ApplyAssignments(data, a.cfg.Assignments()...); err != nil {
		return nil, err
	}
	if err := vars.ApplyAssignments(data, flags.sets...); err != nil {
		return nil, err
	}
	return data, nil
}

// registry returns the engines available to the render command.
func (a *app) registry(sanitize bool) (*render.Registry, error) {
	var options []render.Option
	if sanitize || a.cfg.Sanitize {
		options = append(options, render.WithSanitizer())
	}

	registry := render.NewRegistry()
	if err := registry.Register(render.New(options...)); err != nil {
		return nil, err
	}

	var pongoOptions []pongo.Option
	if a.cfg.TemplateDir != "" {
		pongoOptions = append(pongoOptions, pongo.WithBaseDir(a.cfg.TemplateDir))
	} else if wd, err := os.Getwd(); err == nil {
		pongoOptions = append(pongoOptions, pongo.WithBaseDir(wd))
	}
	engine, err := pongo.New(pongoOptions...)
	if err != nil {
		return nil, err
	}
	if err := registry.Register(engine); err != nil {
		return nil, err
	}
	return registry, nil
}
