package loader

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"
	"unicode/utf8"

	pkgtemplate "github.com/goliatone/go-promptkit/pkg/template"
)

// Loader implements pkgtemplate.Loader by delegating to file, fs.FS, HTTP, or
// SQL strategies.
type Loader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
	db        *sql.DB
	table     string
}

// Ensure the implementation satisfies the public interfaces.
var (
	_ pkgtemplate.Loader = (*Loader)(nil)
	_ pkgtemplate.Stater = (*Loader)(nil)
)

// New constructs a Loader from pre-resolved options.
func New(options pkgtemplate.LoaderOptions) *Loader {
	timeout := options.RequestTimeout

	var httpClient *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case options.AllowHTTPFallback:
		httpClient = &http.Client{Timeout: timeout}
	}

	table := options.Table
	if table == "" {
		table = pkgtemplate.DefaultTable
	}

	return &Loader{
		fs:        options.FileSystem,
		http:      httpClient,
		allowHTTP: httpClient != nil,
		timeout:   timeout,
		db:        options.DB,
		table:     table,
	}
}

// Load fetches a template from the provided source.
func (l *Loader) Load(ctx context.Context, src pkgtemplate.Source) (pkgtemplate.Template, error) {
	if src == nil {
		return pkgtemplate.Template{}, errors.New("template loader: source is nil")
	}

	var (
		data    []byte
		version pkgtemplate.Version
		err     error
	)

	switch src.Kind() {
	case pkgtemplate.SourceKindFile:
		data, version, err = loadFile(ctx, src.Location())
	case pkgtemplate.SourceKindFS:
		data, version, err = loadFromFS(ctx, l.fs, src.Location())
	case pkgtemplate.SourceKindURL:
		if !l.allowHTTP {
			return pkgtemplate.Template{}, errors.New("template loader: http support disabled")
		}
		data, err = loadHTTP(ctx, l.http, src.Location(), l.timeout)
		version = pkgtemplate.Version{Size: int64(len(data))}
	case pkgtemplate.SourceKindSQL:
		data, version, err = loadSQL(ctx, l.db, l.table, src.Location())
	default:
		err = fmt.Errorf("template loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return pkgtemplate.Template{}, err
	}

	if !utf8.Valid(data) {
		return pkgtemplate.Template{}, fmt.Errorf("template loader: %s is not valid UTF-8", src.Location())
	}

	return pkgtemplate.NewTemplate(src, string(data), version)
}

// Stat reports the current version of src without reading its contents.
// URL sources are not statable.
func (l *Loader) Stat(ctx context.Context, src pkgtemplate.Source) (pkgtemplate.Version, error) {
	if src == nil {
		return pkgtemplate.Version{}, errors.New("template loader: source is nil")
	}

	switch src.Kind() {
	case pkgtemplate.SourceKindFile:
		return statFile(ctx, src.Location())
	case pkgtemplate.SourceKindFS:
		return statFS(ctx, l.fs, src.Location())
	case pkgtemplate.SourceKindSQL:
		return statSQL(ctx, l.db, l.table, src.Location())
	default:
		return pkgtemplate.Version{}, pkgtemplate.ErrStatUnsupported
	}
}
