package template_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-promptkit/pkg/template"
)

func TestSources_KindAndLocation(t *testing.T) {
	tests := []struct {
		name     string
		src      template.Source
		kind     template.SourceKind
		location string
	}{
		{"file cleans path", template.SourceFromFile("prompts/../prompts/system.txt"), template.SourceKindFile, "prompts/system.txt"},
		{"fs trims leading slash", template.SourceFromFS("/career/system.txt"), template.SourceKindFS, "career/system.txt"},
		{"url", template.SourceFromURL("https://example.com/p.txt"), template.SourceKindURL, "https://example.com/p.txt"},
		{"sql", template.SourceFromSQL(" system "), template.SourceKindSQL, "system"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.src.Kind() != tt.kind {
				t.Fatalf("kind: want %q got %q", tt.kind, tt.src.Kind())
			}
			if tt.src.Location() != tt.location {
				t.Fatalf("location: want %q got %q", tt.location, tt.src.Location())
			}
		})
	}
}

func TestSourceFromURL_PanicsOnInvalid(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for invalid URL")
		}
	}()
	template.SourceFromURL("not a url")
}

func TestParseSource(t *testing.T) {
	got, err := template.ParseSource("  ")
	if err != nil || got != nil {
		t.Fatalf("expected nil source for blank input, got %#v, %v", got, err)
	}
	got, err = template.ParseSource("https://example.com/x.txt")
	if err != nil || got.Kind() != template.SourceKindURL {
		t.Fatalf("expected url source, got %#v, %v", got, err)
	}
	got, err = template.ParseSource("prompts/x.txt")
	if err != nil || got.Kind() != template.SourceKindFile {
		t.Fatalf("expected file source, got %#v, %v", got, err)
	}
}

func TestParseURLSource_RejectsMalformed(t *testing.T) {
	for _, raw := range []string{"", "http://%zz/x.txt", "https://", "ftp://example.com/x.txt", "not a url"} {
		src, err := template.ParseURLSource(raw)
		if err == nil {
			t.Fatalf("%q: expected error, got %#v", raw, src)
		}
		if src != nil {
			t.Fatalf("%q: expected nil source on error", raw)
		}
	}
	if _, err := template.ParseSource("http://%zz/x.txt"); err == nil {
		t.Fatal("expected ParseSource to report malformed URL")
	}
}

func TestKey(t *testing.T) {
	got := []string{
		template.Key(template.SourceFromFS("a.txt")),
		template.Key(template.SourceFromFile("a.txt")),
		template.Key(nil),
	}
	want := []string{"fs:a.txt", "file:a.txt", ""}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestNewTemplate(t *testing.T) {
	if _, err := template.NewTemplate(nil, "x", template.Version{}); err == nil {
		t.Fatal("expected error for nil source")
	}

	now := time.Unix(1700000000, 0)
	tpl, err := template.NewTemplate(template.SourceFromFS("empty.txt"), "", template.Version{ModTime: now})
	if err != nil {
		t.Fatalf("empty template should be valid: %v", err)
	}
	if tpl.Text() != "" {
		t.Fatalf("expected empty text, got %q", tpl.Text())
	}
	if !tpl.Version().Equal(template.Version{ModTime: now}) {
		t.Fatalf("unexpected version %+v", tpl.Version())
	}
	if (template.Version{}).IsZero() != true {
		t.Fatal("zero version should report IsZero")
	}
}
