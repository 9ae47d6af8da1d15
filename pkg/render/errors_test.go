package render_test

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/goliatone/go-promptkit/pkg/render"
	"github.com/goliatone/go-promptkit/pkg/resolve"
	pkgtemplate "github.com/goliatone/go-promptkit/pkg/template"
)

func TestResourceError(t *testing.T) {
	err := error(&render.ResourceError{Source: pkgtemplate.SourceFromFile("prompts/x.txt"), Err: fs.ErrNotExist})

	if !errors.Is(err, render.ErrResource) || !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("resource error should match ErrResource and its cause: %v", err)
	}
	if !strings.Contains(err.Error(), "file:prompts/x.txt") {
		t.Fatalf("message should name the source: %v", err)
	}
}

func TestResolutionError(t *testing.T) {
	err := error(&render.ResolutionError{Path: "meta.date", Segment: "meta", Offset: 3, Err: resolve.ErrNotFound})

	if !errors.Is(err, render.ErrResolution) || !errors.Is(err, resolve.ErrNotFound) {
		t.Fatalf("resolution error should match ErrResolution and its cause: %v", err)
	}
	if errors.Is(err, render.ErrResource) {
		t.Fatal("resolution error must not match ErrResource")
	}
	if !strings.Contains(err.Error(), "{meta.date}") {
		t.Fatalf("message should name the path: %v", err)
	}
}
