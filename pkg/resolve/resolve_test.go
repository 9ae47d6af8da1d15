package resolve_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-promptkit/pkg/resolve"
)

type chatbotConfig struct {
	Name              string
	GithubUsername    string `json:"github_username"`
	JobMatchThreshold string `yaml:"job_match_threshold"`
	secret            string
}

type base struct {
	Model string
}

type evaluatorConfig struct {
	base
	Threshold int
}

type wrapper struct {
	*base
}

type env map[string]string

func (e env) Lookup(key string) (any, bool) {
	v, ok := e["PK_"+key]
	return v, ok
}

type labelKey string

func TestParsePath(t *testing.T) {
	p, err := resolve.ParsePath("config.job_match_threshold")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff([]string{"config", "job_match_threshold"}, p.Segments()); diff != "" {
		t.Fatalf("segments mismatch (-want +got):\n%s", diff)
	}
	if p.String() != "config.job_match_threshold" || p.Len() != 2 {
		t.Fatalf("unexpected path %q len %d", p.String(), p.Len())
	}

	for _, bad := range []string{"", ".a", "a.", "a..b", "a-b", "a b", "ä"} {
		if _, err := resolve.ParsePath(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestClassify(t *testing.T) {
	var nilCfg *chatbotConfig
	tests := []struct {
		name string
		node any
		want resolve.NodeKind
	}{
		{"map any", map[string]any{}, resolve.KindMapping},
		{"map string", map[string]string{}, resolve.KindMapping},
		{"named string key map", map[labelKey]int{}, resolve.KindMapping},
		{"lookuper", env{}, resolve.KindMapping},
		{"struct", chatbotConfig{}, resolve.KindFields},
		{"struct pointer", &chatbotConfig{}, resolve.KindFields},
		{"nil", nil, resolve.KindOpaque},
		{"nil pointer", nilCfg, resolve.KindOpaque},
		{"string", "x", resolve.KindOpaque},
		{"slice", []any{1}, resolve.KindOpaque},
		{"int keyed map", map[int]string{}, resolve.KindOpaque},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolve.Classify(tt.node); got != tt.want {
				t.Fatalf("want %s got %s", tt.want, got)
			}
		})
	}
}

func TestResolve_MappingsAndFields(t *testing.T) {
	data := map[string]any{
		"config": &chatbotConfig{
			Name:              "Ada",
			GithubUsername:    "ada",
			JobMatchThreshold: "Good",
			secret:            "hidden",
		},
		"context": map[string]string{"summary": "Engineer"},
		"labels":  map[labelKey]int{"priority": 3},
		"env":     env{"PK_HOME": "/home/ada"},
		"eval":    evaluatorConfig{base: base{Model: "gemini"}, Threshold: 7},
	}

	tests := []struct {
		path string
		want any
	}{
		{"config.Name", "Ada"},
		{"config.name", "Ada"},
		{"config.github_username", "ada"},
		{"config.job_match_threshold", "Good"},
		{"context.summary", "Engineer"},
		{"labels.priority", 3},
		{"env.HOME", "/home/ada"},
		{"eval.model", "gemini"},
		{"eval.Threshold", 7},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := resolve.Lookup(data, tt.path)
			if err != nil {
				t.Fatalf("lookup: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolve_Failures(t *testing.T) {
	data := map[string]any{
		"config": chatbotConfig{Name: "Ada", secret: "hidden"},
		"user":   map[string]any{"name": "Ada", "tags": []any{"a"}},
		"empty":  nil,
		"ptr":    wrapper{},
	}

	tests := []struct {
		path    string
		segment string
		index   int
		target  error
	}{
		{"meta.date", "meta", 0, resolve.ErrNotFound},
		{"user.email", "email", 1, resolve.ErrNotFound},
		{"config.secret", "secret", 1, resolve.ErrNotFound},
		{"user.name.first", "first", 2, resolve.ErrNotTraversable},
		{"user.tags.0", "0", 2, resolve.ErrNotTraversable},
		{"empty.x", "x", 1, resolve.ErrNotTraversable},
		{"ptr.Model", "Model", 1, resolve.ErrNotTraversable},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := resolve.Lookup(data, tt.path)
			if !errors.Is(err, tt.target) {
				t.Fatalf("expected %v, got %v", tt.target, err)
			}
			var rerr *resolve.Error
			if !errors.As(err, &rerr) {
				t.Fatalf("expected *resolve.Error, got %T", err)
			}
			if rerr.Path != tt.path || rerr.Segment != tt.segment || rerr.Index != tt.index {
				t.Fatalf("unexpected error detail %+v", rerr)
			}
		})
	}
}

func TestResolve_NilValuePresent(t *testing.T) {
	got, err := resolve.Lookup(map[string]any{"note": nil}, "note")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil value, got %#v", got)
	}
}
