package vars_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-promptkit/pkg/vars"
)

func TestLoadFile_AllFormatsAgree(t *testing.T) {
	want := map[string]any{
		"config": map[string]any{
			"name":                "Ada Lovelace",
			"job_match_threshold": "Good",
		},
		"context": map[string]any{
			"summary": "Analyst and writer.",
		},
	}

	for _, name := range []string{"profile.yaml", "profile.json", "profile.toml", "profile.hcl"} {
		t.Run(name, func(t *testing.T) {
			got, err := vars.LoadFile(filepath.Join("testdata", name))
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := vars.LoadFile(filepath.Join("testdata", "profile.ini"))
	assert.Error(t, err)

	_, err = vars.LoadFile(filepath.Join("testdata", "absent.yaml"))
	assert.Error(t, err)

	_, err = vars.Parse([]byte("{not json"), vars.FormatJSON)
	assert.Error(t, err)

	_, err = vars.Parse([]byte("a = "), vars.FormatHCL)
	assert.Error(t, err)

	_, err = vars.Parse([]byte("x: 1"), vars.Format("ini"))
	assert.Error(t, err)
}

func TestParse_EmptyAndNested(t *testing.T) {
	got, err := vars.Parse([]byte("  \n"), vars.FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = vars.Parse([]byte("name: one\nlist:\n  - {a: b}\n"), vars.FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"name": "one",
		"list": []any{map[string]any{"a": "b"}},
	}, got)

	got, err = vars.Parse([]byte("[[jobs]]\ntitle = \"SRE\"\n"), vars.FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"jobs": []any{map[string]any{"title": "SRE"}}}, got)
}

func TestLoadFiles_MergesInOrder(t *testing.T) {
	got, err := vars.LoadFiles(
		filepath.Join("testdata", "profile.yaml"),
		filepath.Join("testdata", "override.yaml"),
	)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"config": map[string]any{
			"name":                "Ada Lovelace",
			"job_match_threshold": "Strong",
		},
		"context": map[string]any{"summary": "Analyst and writer."},
		"meta":    map[string]any{"date": "2024-01-01"},
	}, got)
}

func TestSetAndAssignments(t *testing.T) {
	dst := map[string]any{"user": "flat"}

	require.NoError(t, vars.Set(dst, "meta.date", "2024-01-01"))
	require.NoError(t, vars.ApplyAssignments(dst, "config.name=Ada", "config.note=a=b"))
	assert.Equal(t, map[string]any{
		"user":   "flat",
		"meta":   map[string]any{"date": "2024-01-01"},
		"config": map[string]any{"name": "Ada", "note": "a=b"},
	}, dst)

	assert.Error(t, vars.Set(dst, "user.name", "x"))
	assert.Error(t, vars.Set(dst, "bad..path", "x"))
	assert.Error(t, vars.ApplyAssignments(dst, "novalue"))
	assert.Error(t, vars.ApplyAssignments(dst, "=x"))
}

func TestText(t *testing.T) {
	slot, err := vars.Text("context.summary", "Builds engines.")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"context": map[string]any{"summary": "Builds engines."}}, slot)

	data := map[string]any{"context": map[string]any{"resume": "r"}}
	vars.Merge(data, slot)
	assert.Equal(t, map[string]any{"context": map[string]any{"resume": "r", "summary": "Builds engines."}}, data)

	_, err = vars.Text("bad..name", "x")
	assert.Error(t, err)
}

func TestClone(t *testing.T) {
	src := map[string]any{"a": map[string]any{"b": "c"}}
	dup := vars.Clone(src)
	require.NoError(t, vars.Set(dup, "a.b", "changed"))
	assert.Equal(t, "c", src["a"].(map[string]any)["b"])
	assert.Nil(t, vars.Clone(nil))
}
