package promptkit

import (
	internalLoader "github.com/goliatone/go-promptkit/internal/template/loader"
	pkgtemplate "github.com/goliatone/go-promptkit/pkg/template"
)

// NewLoader constructs a loader using the internal implementation while keeping
// the concrete type hidden from consumers. The returned loader also satisfies
// pkgtemplate.Stater so it can back a cache.
func NewLoader(options ...pkgtemplate.LoaderOption) pkgtemplate.Loader {
	cfg := pkgtemplate.NewLoaderOptions(options...)
	return internalLoader.New(cfg)
}
