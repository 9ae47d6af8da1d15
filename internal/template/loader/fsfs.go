package loader

import (
	"context"
	"errors"
	"io/fs"

	pkgtemplate "github.com/goliatone/go-promptkit/pkg/template"
)

func loadFromFS(ctx context.Context, files fs.FS, name string) ([]byte, pkgtemplate.Version, error) {
	if name == "" {
		return nil, pkgtemplate.Version{}, errors.New("template loader: fs path is required")
	}
	if files == nil {
		return nil, pkgtemplate.Version{}, errors.New("template loader: fs is nil")
	}
	select {
	case <-ctx.Done():
		return nil, pkgtemplate.Version{}, ctx.Err()
	default:
	}

	version, err := statFS(ctx, files, name)
	if err != nil {
		return nil, pkgtemplate.Version{}, err
	}

	data, err := fs.ReadFile(files, name)
	if err != nil {
		return nil, pkgtemplate.Version{}, err
	}
	version.Size = int64(len(data))
	return data, version, nil
}

func statFS(ctx context.Context, files fs.FS, name string) (pkgtemplate.Version, error) {
	if files == nil {
		return pkgtemplate.Version{}, errors.New("template loader: fs is nil")
	}
	if err := ctx.Err(); err != nil {
		return pkgtemplate.Version{}, err
	}
	info, err := fs.Stat(files, name)
	if err != nil {
		return pkgtemplate.Version{}, err
	}
	return pkgtemplate.Version{ModTime: info.ModTime(), Size: info.Size()}, nil
}
