package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	pkgtemplate "github.com/goliatone/go-promptkit/pkg/template"
)

func loadFile(ctx context.Context, path string) ([]byte, pkgtemplate.Version, error) {
	if path == "" {
		return nil, pkgtemplate.Version{}, errors.New("template loader: file path is required")
	}
	select {
	case <-ctx.Done():
		return nil, pkgtemplate.Version{}, ctx.Err()
	default:
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, pkgtemplate.Version{}, err
	}

	// Stat before reading: an edit landing in between leaves an older
	// ModTime next to the newer text, so the next Stat reports a change.
	version, err := statFile(ctx, abs)
	if err != nil {
		return nil, pkgtemplate.Version{}, err
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, pkgtemplate.Version{}, err
	}
	version.Size = int64(len(data))
	return data, version, nil
}

func statFile(ctx context.Context, path string) (pkgtemplate.Version, error) {
	if err := ctx.Err(); err != nil {
		return pkgtemplate.Version{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return pkgtemplate.Version{}, err
	}
	if info.IsDir() {
		return pkgtemplate.Version{}, errors.New("template loader: " + path + " is a directory")
	}
	return pkgtemplate.Version{ModTime: info.ModTime(), Size: info.Size()}, nil
}
