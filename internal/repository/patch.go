package repository

import (
	"reflect"
	"strings"
)

// Patch turns an update request made of pointer fields into a patch keyed by
// json name. Nil pointers are omitted, so only fields the caller sent are
// written by Update.
func Patch(v any) map[string]any {
	out := make(map[string]any)
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return out
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return out
	}

	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() || sf.Type.Kind() != reflect.Pointer {
			continue
		}
		fv := rv.Field(i)
		if fv.IsNil() {
			continue
		}
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		out[name] = fv.Elem().Interface()
	}
	return out
}
