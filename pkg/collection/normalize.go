// Package collection holds pure functions over the generic value trees that
// documents are normalized into: map[string]any, map[any]any, []any and
// scalars.
//
// None of the functions mutate their input. Inputs are expected to be acyclic.
package collection

import (
	"fmt"
	"math"
	"reflect"

	"github.com/sanskrit-coders/docmodel/pkg/constants"
)

// NoRounding disables RoundFloats.
const NoRounding = -1

// RemoveNullKeys drops entries with a nil key. Such keys only occur in
// map[any]any values, which is what yaml.v3 produces for mappings whose keys
// are not all strings.
func RemoveNullKeys(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = RemoveNullKeys(val)
		}
		return out
	case map[any]any:
		out := make(map[any]any, len(x))
		for k, val := range x {
			if k == nil {
				continue
			}
			out[k] = RemoveNullKeys(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = RemoveNullKeys(val)
		}
		return out
	default:
		return v
	}
}

// RemoveNullValues drops nil-valued mapping entries, recursing through
// sequences and mappings. With onlyIfTyped set, mappings without a type tag
// are returned untouched.
func RemoveNullValues(v any, onlyIfTyped bool) any {
	switch x := v.(type) {
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = RemoveNullValues(val, onlyIfTyped)
		}
		return out
	case map[string]any:
		if onlyIfTyped {
			if _, ok := x[constants.TypeField]; !ok {
				return x
			}
		}
		out := make(map[string]any, len(x))
		for k, val := range x {
			if IsNil(val) {
				continue
			}
			out[k] = RemoveNullValues(val, onlyIfTyped)
		}
		return out
	case map[any]any:
		if onlyIfTyped {
			if _, ok := x[constants.TypeField]; !ok {
				return x
			}
		}
		out := make(map[any]any, len(x))
		for k, val := range x {
			if IsNil(val) {
				continue
			}
			out[k] = RemoveNullValues(val, onlyIfTyped)
		}
		return out
	default:
		return v
	}
}

// StringifyKeys coerces every mapping key to a string.
func StringifyKeys(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = StringifyKeys(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[fmt.Sprint(k)] = StringifyKeys(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = StringifyKeys(val)
		}
		return out
	default:
		return v
	}
}

// Flatten joins nested mapping keys with "." into a single-level mapping.
// Sequences are flattened element-wise and other leaves pass through.
func Flatten(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			if _, nested := val.(map[string]any); nested {
				for ik, iv := range Flatten(val).(map[string]any) {
					out[k+"."+ik] = iv
				}
				continue
			}
			out[k] = Flatten(val)
		}
		return out
	case map[any]any:
		return Flatten(StringifyKeys(x))
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = Flatten(val)
		}
		return out
	default:
		return v
	}
}

// RoundFloats rounds every floating point leaf to digits decimal places.
// A negative digits value leaves v as is.
func RoundFloats(v any, digits int) any {
	if digits < 0 {
		return v
	}
	switch x := v.(type) {
	case float64:
		return round(x, digits)
	case float32:
		return round(float64(x), digits)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = RoundFloats(val, digits)
		}
		return out
	case map[any]any:
		out := make(map[any]any, len(x))
		for k, val := range x {
			out[k] = RoundFloats(val, digits)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = RoundFloats(val, digits)
		}
		return out
	default:
		return v
	}
}

func round(f float64, digits int) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	pow := math.Pow10(digits)
	return math.Round(f*pow) / pow
}

// TuplesToSequences rewrites every sequence-like value (arrays and typed
// slices) as []any and every typed map as map[string]any or map[any]any, so
// that equality and encoding never depend on the Go kind a value was built
// with. Byte slices are binary leaves and are left alone.
func TuplesToSequences(v any) any {
	switch x := v.(type) {
	case nil, []byte, string, bool:
		return v
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = TuplesToSequences(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = TuplesToSequences(val)
		}
		return out
	case map[any]any:
		out := make(map[any]any, len(x))
		for k, val := range x {
			out[k] = TuplesToSequences(val)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return []any{}
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = TuplesToSequences(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			out := make(map[string]any, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				out[iter.Key().String()] = TuplesToSequences(iter.Value().Interface())
			}
			return out
		}
		out := make(map[any]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().Interface()] = TuplesToSequences(iter.Value().Interface())
		}
		return out
	default:
		return v
	}
}

type number interface {
	Int64() (int64, error)
	Float64() (float64, error)
}

// CanonicalNumbers converts every integer to int64 and every float to
// float64. json.Number values are parsed, preferring int64. Unsigned values
// too large for int64 become float64.
func CanonicalNumbers(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return canonicalUint(uint64(x))
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return canonicalUint(x)
	case float32:
		return float64(x)
	case number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return v
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = CanonicalNumbers(val)
		}
		return out
	case map[any]any:
		out := make(map[any]any, len(x))
		for k, val := range x {
			out[k] = CanonicalNumbers(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = CanonicalNumbers(val)
		}
		return out
	default:
		return v
	}
}

func canonicalUint(u uint64) any {
	if u > math.MaxInt64 {
		return float64(u)
	}
	return int64(u)
}

// DeepCopy copies maps and sequences recursively. Leaves are shared.
func DeepCopy(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = DeepCopy(val)
		}
		return out
	case map[any]any:
		out := make(map[any]any, len(x))
		for k, val := range x {
			out[k] = DeepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = DeepCopy(val)
		}
		return out
	default:
		return v
	}
}

// DeleteKeyRecursively removes key from every mapping in v.
func DeleteKeyRecursively(v any, key string) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			if k == key {
				continue
			}
			out[k] = DeleteKeyRecursively(val, key)
		}
		return out
	case map[any]any:
		out := make(map[any]any, len(x))
		for k, val := range x {
			if k == key {
				continue
			}
			out[k] = DeleteKeyRecursively(val, key)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = DeleteKeyRecursively(val, key)
		}
		return out
	default:
		return v
	}
}

// IsNil reports whether v is nil or a nil pointer.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
