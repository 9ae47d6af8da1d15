package template

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"net/http"
	"time"
)

// DefaultTable is the table SQL sources are read from unless overridden.
const DefaultTable = "prompt_templates"

// ErrStatUnsupported is returned by a Stater that cannot report versions for a
// source kind (remote URLs, for example).
var ErrStatUnsupported = errors.New("template: stat not supported for source")

// Loader fetches templates from different sources (filesystem, fs.FS, HTTP,
// SQL). Implementations live under internal/template but satisfy this
// contract.
type Loader interface {
	Load(ctx context.Context, src Source) (Template, error)
}

// Stater is implemented by loaders that can report the current version of a
// source without reading its contents.
type Stater interface {
	Stat(ctx context.Context, src Source) (Version, error)
}

// LoaderOptions configures how a Loader resolves sources.
type LoaderOptions struct {
	// FileSystem backs SourceKindFS lookups. Nil disables fs sources.
	FileSystem fs.FS

	// HTTPClient allows callers to inject custom HTTP behaviour (timeouts,
	// proxies). Nil means URL sources are disabled unless AllowHTTPFallback is
	// true.
	HTTPClient *http.Client

	// AllowHTTPFallback toggles a default HTTP client when none is supplied.
	// Keeping this explicit preserves offline-first behaviour.
	AllowHTTPFallback bool

	// RequestTimeout caps remote fetch durations.
	RequestTimeout time.Duration

	// DB backs SourceKindSQL lookups. Nil disables SQL sources.
	DB *sql.DB

	// Table names the template table; defaults to DefaultTable.
	Table string
}

// LoaderOption mutates LoaderOptions prior to construction.
type LoaderOption func(*LoaderOptions)

// WithFileSystem injects an fs.FS implementation for fs sources.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.FileSystem = files
	}
}

// WithHTTPClient injects a custom HTTP client for remote templates.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.HTTPClient = client
	}
}

// WithHTTPFallback enables HTTP loading using a default client and assigns an
// optional timeout.
func WithHTTPFallback(timeout time.Duration) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.AllowHTTPFallback = true
		opts.RequestTimeout = timeout
	}
}

// WithDB enables SQL sources backed by db. An empty table selects
// DefaultTable.
func WithDB(db *sql.DB, table string) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.DB = db
		opts.Table = table
	}
}

// NewLoaderOptions applies a set of LoaderOption values and returns the
// resulting configuration.
func NewLoaderOptions(options ...LoaderOption) LoaderOptions {
	cfg := LoaderOptions{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.Table == "" {
		cfg.Table = DefaultTable
	}
	return cfg
}

// Construction helpers live in the top-level promptkit package to prevent
// import cycles.
