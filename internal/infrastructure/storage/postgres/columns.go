package postgres

import (
	"reflect"
	"sync"
)

var columnCache sync.Map // reflect.Type -> []column

type column struct {
	index int
	name  string
}

func columnsOf(t reflect.Type) []column {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := columnCache.Load(t); ok {
		return cached.([]column)
	}
	var cols []column
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			tag := t.Field(i).Tag.Get("db")
			if tag == "" || tag == "-" {
				continue
			}
			cols = append(cols, column{index: i, name: tag})
		}
	}
	columnCache.Store(t, cols)
	return cols
}

// Columns lists the "db" tags of T in declaration order.
func Columns[T any]() []string {
	var zero T
	cols := columnsOf(reflect.TypeOf(zero))
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.name
	}
	return out
}

// ToMap converts a struct into column -> value using "db" tags, skipping excluded columns.
func ToMap(v any, exclude ...string) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	skip := make(map[string]struct{}, len(exclude))
	for _, c := range exclude {
		skip[c] = struct{}{}
	}
	cols := columnsOf(rv.Type())
	out := make(map[string]any, len(cols))
	for _, c := range cols {
		if _, ok := skip[c.name]; ok {
			continue
		}
		out[c.name] = rv.Field(c.index).Interface()
	}
	return out
}
