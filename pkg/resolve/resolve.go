package resolve

import (
	"reflect"
	"strings"
)

// Lookuper lets custom types behave as mappings during traversal.
type Lookuper interface {
	Lookup(key string) (any, bool)
}

// NodeKind is the traversal variant selected for a node.
type NodeKind int

const (
	// KindOpaque nodes cannot be traversed any further.
	KindOpaque NodeKind = iota
	// KindMapping nodes resolve segments by key lookup.
	KindMapping
	// KindFields nodes resolve segments by struct field access.
	KindFields
)

func (k NodeKind) String() string {
	switch k {
	case KindMapping:
		return "mapping"
	case KindFields:
		return "fields"
	default:
		return "opaque"
	}
}

// Classify inspects the runtime type of node and reports which traversal
// variant applies to it.
func Classify(node any) NodeKind {
	if node == nil {
		return KindOpaque
	}
	v, ok := indirect(reflect.ValueOf(node))
	if !ok {
		return KindOpaque
	}

	switch node.(type) {
	case map[string]any, map[string]string, Lookuper:
		return KindMapping
	}
	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() == reflect.String {
			return KindMapping
		}
	case reflect.Struct:
		return KindFields
	}
	return KindOpaque
}

// Resolve walks data along path, one segment at a time, and returns the final
// value. It fails with *Error on the first segment that cannot be resolved.
func Resolve(data any, path Path) (any, error) {
	current := data
	for i, segment := range path.segments {
		next, err := step(current, segment)
		if err != nil {
			return nil, &Error{Path: path.raw, Segment: segment, Index: i, Err: err}
		}
		current = next
	}
	return current, nil
}

// Lookup parses raw and resolves it against data.
func Lookup(data any, raw string) (any, error) {
	p, err := ParsePath(raw)
	if err != nil {
		return nil, err
	}
	return Resolve(data, p)
}

func step(node any, segment string) (any, error) {
	switch Classify(node) {
	case KindMapping:
		return lookupKey(node, segment)
	case KindFields:
		return accessField(node, segment)
	default:
		return nil, ErrNotTraversable
	}
}

func lookupKey(node any, key string) (any, error) {
	switch m := node.(type) {
	case map[string]any:
		if value, ok := m[key]; ok {
			return value, nil
		}
		return nil, ErrNotFound
	case map[string]string:
		if value, ok := m[key]; ok {
			return value, nil
		}
		return nil, ErrNotFound
	case Lookuper:
		if value, ok := m.Lookup(key); ok {
			return value, nil
		}
		return nil, ErrNotFound
	}

	v, _ := indirect(reflect.ValueOf(node))
	k := reflect.ValueOf(key).Convert(v.Type().Key())
	value := v.MapIndex(k)
	if !value.IsValid() {
		return nil, ErrNotFound
	}
	return value.Interface(), nil
}

func accessField(node any, name string) (any, error) {
	v, _ := indirect(reflect.ValueOf(node))
	field, ok := findField(v.Type(), name)
	if !ok {
		return nil, ErrNotFound
	}
	value, err := v.FieldByIndexErr(field.Index)
	if err != nil {
		// nil embedded pointer on the way to a promoted field
		return nil, ErrNotTraversable
	}
	return value.Interface(), nil
}

// findField matches name against exported fields by exact name, then
// case-insensitively, then by json or yaml tag.
func findField(t reflect.Type, name string) (reflect.StructField, bool) {
	fields := reflect.VisibleFields(t)

	for _, f := range fields {
		if f.IsExported() && f.Name == name {
			return f, true
		}
	}
	for _, f := range fields {
		if f.IsExported() && strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	for _, f := range fields {
		if !f.IsExported() {
			continue
		}
		if tagName(f.Tag.Get("json")) == name || tagName(f.Tag.Get("yaml")) == name {
			return f, true
		}
	}
	return reflect.StructField{}, false
}

func tagName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	return name
}

func indirect(v reflect.Value) (reflect.Value, bool) {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	return v, v.IsValid()
}
