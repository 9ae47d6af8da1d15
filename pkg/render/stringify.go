package render

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

// Stringer converts a resolved value into the text substituted for its
// placeholder.
type Stringer func(value any) (string, error)

// DefaultStringer formats scalars the way a person would type them and
// encodes composite values (maps, slices, structs) as compact JSON. A nil
// value renders as the empty string.
func DefaultStringer(value any) (string, error) {
	if isNilPointer(value) {
		return "", nil
	}

	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	case error:
		return v.Error(), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		b, err := json.Marshal(rv.Interface())
		if err != nil {
			return "", fmt.Errorf("render: encode %T: %w", value, err)
		}
		return string(b), nil
	default:
		return fmt.Sprint(rv.Interface()), nil
	}
}

// isNilPointer reports typed nils whose String or Error method would
// dereference them.
func isNilPointer(value any) bool {
	rv := reflect.ValueOf(value)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
