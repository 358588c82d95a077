package utils

import (
	"reflect"
)

// Attempts to convert a numeric value of any width to float64. Decoders hand
// us float64 for JSON but various integer types for msgpack.
func ToFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// Strict equality over decoded values. Both sides must be of the same JSON
// kind, numbers compare by value regardless of width and objects or arrays
// compare element by element.
func EqualAny(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	// ---------------------------
	if af, ok := ToFloat(a); ok {
		bf, ok := ToFloat(b)
		return ok && af == bf
	}
	// ---------------------------
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !EqualAny(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			other, ok := bv[k]
			if !ok || !EqualAny(v, other) {
				return false
			}
		}
		return true
	}
	// We don't know this type, fall back to deep equality.
	return reflect.DeepEqual(a, b)
}
