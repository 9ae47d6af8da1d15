package testsupport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	pkgtemplate "github.com/goliatone/go-promptkit/pkg/template"
	"github.com/goliatone/go-promptkit/pkg/vars"
)

// LoadTemplate reads a fixture into a Template using a file source. Testing
// helpers fail the test on error to keep table tests concise.
func LoadTemplate(t *testing.T, path string) pkgtemplate.Template {
	t.Helper()

	tpl, err := LoadTemplateFromPath(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	return tpl
}

// LoadTemplateFromPath returns a Template without requiring testing.T, allowing
// callers to wire fixtures in setup functions.
func LoadTemplateFromPath(path string) (pkgtemplate.Template, error) {
	if path == "" {
		return pkgtemplate.Template{}, errors.New("testsupport: template path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return pkgtemplate.Template{}, fmt.Errorf("testsupport: read template: %w", err)
	}
	tpl, err := pkgtemplate.NewTemplate(pkgtemplate.SourceFromFile(path), string(data), pkgtemplate.Version{Size: int64(len(data))})
	if err != nil {
		return pkgtemplate.Template{}, fmt.Errorf("testsupport: new template: %w", err)
	}
	return tpl, nil
}

// MustLoadVars reads a context document (JSON, YAML, TOML or HCL) for use as
// render data.
func MustLoadVars(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := vars.LoadFile(path)
	if err != nil {
		t.Fatalf("load vars: %v", err)
	}
	return data
}

// WriteGolden writes arbitrary data as JSON to a golden file when
// UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	writeFile(t, path, payload)
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	writeFile(t, path, data)
	return true
}

// AssertGoldenString compares rendered text with the golden file at path,
// refreshing the golden first when UPDATE_GOLDENS is set.
func AssertGoldenString(t *testing.T, path, got string) {
	t.Helper()
	if WriteMaybeGolden(t, path, []byte(got)) {
		return
	}
	want := MustReadGoldenString(t, path)
	if diff := CompareGolden(want, got); diff != "" {
		t.Fatalf("golden mismatch %s (-want +got):\n%s", path, diff)
	}
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}
