package template

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Source identifies where a prompt template lives so loaders can operate on
// files, fs.FS entries, URLs, or database rows without leaking implementation
// details.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
	SourceKindSQL  SourceKind = "sql"
)

// Key returns a stable identifier for src, suitable as a cache key.
func Key(src Source) string {
	if src == nil {
		return ""
	}
	return string(src.Kind()) + ":" + src.Location()
}

type fileSource struct {
	path string
}

func (s fileSource) Location() string {
	return s.path
}

func (s fileSource) Kind() SourceKind {
	return SourceKindFile
}

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

type fsSource struct {
	name string
}

func (s fsSource) Location() string {
	return s.name
}

func (s fsSource) Kind() SourceKind {
	return SourceKindFS
}

// SourceFromFS returns a Source identifying a template inside the fs.FS the
// loader was configured with.
func SourceFromFS(name string) Source {
	return fsSource{name: strings.TrimPrefix(filepath.ToSlash(name), "/")}
}

type urlSource struct {
	raw string
}

func (s urlSource) Location() string {
	return s.raw
}

func (s urlSource) Kind() SourceKind {
	return SourceKindURL
}

// ParseURLSource validates raw as an absolute http(s) URL and returns a URL
// Source.
func ParseURLSource(raw string) (Source, error) {
	if raw == "" {
		return nil, errors.New("template: empty URL source")
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return nil, fmt.Errorf("template: invalid URL %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("template: invalid URL %q: want http(s)://host/path", raw)
	}
	return urlSource{raw: raw}, nil
}

// SourceFromURL is ParseURLSource for URLs known at compile time. It panics
// if the URL is invalid.
func SourceFromURL(raw string) Source {
	src, err := ParseURLSource(raw)
	if err != nil {
		panic(err.Error())
	}
	return src
}

type sqlSource struct {
	name string
}

func (s sqlSource) Location() string {
	return s.name
}

func (s sqlSource) Kind() SourceKind {
	return SourceKindSQL
}

// SourceFromSQL names a row in the template table of the loader's database.
func SourceFromSQL(name string) Source {
	return sqlSource{name: strings.TrimSpace(name)}
}

// ParseSource maps a command-line style reference onto a Source: http(s) URLs
// become URL sources, everything else a file path. A blank reference yields a
// nil Source.
func ParseSource(raw string) (Source, error) {
	ref := strings.TrimSpace(raw)
	if ref == "" {
		return nil, nil
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ParseURLSource(ref)
	}
	return SourceFromFile(ref), nil
}
