package vars

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	"gopkg.in/yaml.v3"
)

// Format names a context document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatHCL  Format = "hcl"
)

// FormatFromPath infers the document format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "hcl", "tfvars":
		return FormatHCL, nil
	default:
		return "", fmt.Errorf("vars: unsupported context file %q", path)
	}
}

// LoadFile reads a context document, choosing the decoder by extension.
func LoadFile(path string) (map[string]any, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vars: read %s: %w", path, err)
	}
	out, err := parse(data, format, path)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadFiles reads every document in order and deep-merges them, later files
// winning.
func LoadFiles(paths ...string) (map[string]any, error) {
	out := map[string]any{}
	for _, path := range paths {
		doc, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		Merge(out, doc)
	}
	return out, nil
}

// Parse decodes a context document of the given format. An empty document
// yields an empty map.
func Parse(data []byte, format Format) (map[string]any, error) {
	return parse(data, format, "<input>")
}

func parse(data []byte, format Format, name string) (map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}

	var (
		out map[string]any
		err error
	)
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &out)
	case FormatYAML:
		err = yaml.Unmarshal(data, &out)
	case FormatTOML:
		err = toml.Unmarshal(data, &out)
	case FormatHCL:
		out, err = parseHCL(data, name)
	default:
		return nil, fmt.Errorf("vars: unsupported format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("vars: parse %s as %s: %w", name, format, err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return normalize(out).(map[string]any), nil
}

// parseHCL evaluates top-level attributes without variables or functions and
// converts each value to plain Go data through cty's JSON encoding.
func parseHCL(data []byte, name string) (map[string]any, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, name)
	if diags.HasErrors() {
		return nil, diags
	}
	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}

	out := make(map[string]any, len(attrs))
	for key, attr := range attrs {
		value, diags := attr.Expr.Value(&hcl.EvalContext{})
		if diags.HasErrors() {
			return nil, diags
		}
		raw, err := ctyjson.Marshal(value, value.Type())
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", key, err)
		}
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, fmt.Errorf("attribute %s: %w", key, err)
		}
		out[key] = decoded
	}
	return out, nil
}

// normalize turns decoder-specific nested maps (yaml's map[any]any in older
// documents, toml tables) into map[string]any so every format traverses the
// same way.
func normalize(value any) any {
	switch v := value.(type) {
	case map[string]any:
		for key, item := range v {
			v[key] = normalize(item)
		}
		return v
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[fmt.Sprint(key)] = normalize(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalize(item)
		}
		return out
	case []any:
		for i, item := range v {
			v[i] = normalize(item)
		}
		return v
	default:
		return v
	}
}
