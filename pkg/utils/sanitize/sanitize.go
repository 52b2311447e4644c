// Package sanitize removes absent values from document data before it is written.
package sanitize

import "reflect"

// Clean returns a copy of v with every absent value removed at any depth: map keys whose
// value is absent are dropped and absent slice elements are skipped. Typed containers
// such as []map[string]any or map[string]*T are walked as well and come back as
// map[string]any and []any. Byte slices and other values are returned unchanged. Clean is
// idempotent.
func Clean(v any) any {
	if isAbsent(v) {
		return nil
	}

	switch t := v.(type) {
	case map[string]any:
		return Map(t)
	case []any:
		out := make([]any, 0, len(t))
		for _, elem := range t {
			if isAbsent(elem) {
				continue
			}
			out = append(out, Clean(elem))
		}
		return out
	default:
		return cleanReflect(v)
	}
}

func cleanReflect(v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			elem := iter.Value().Interface()
			if isAbsent(elem) {
				continue
			}
			out[iter.Key().String()] = Clean(elem)
		}
		return out

	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return v
		}
		out := make([]any, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elem := rv.Index(i).Interface()
			if isAbsent(elem) {
				continue
			}
			out = append(out, Clean(elem))
		}
		return out
	}
	return v
}

// Map is Clean for document maps
func Map(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if isAbsent(v) {
			continue
		}
		out[k] = Clean(v)
	}
	return out
}

// isAbsent reports untyped nil and typed nil pointers, maps, slices and interfaces
func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
