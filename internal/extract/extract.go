// Package extract discovers record-like objects in arbitrary JSON and
// flattens each one into the fixed field catalog.
package extract

import (
	"strings"

	"github.com/dgallion1/reportcsv/internal/jsonval"
)

const pathSeparator = "."

// Extract flattens obj into a Record.
//
// The walk is depth first in key enumeration order, carrying a dotted path
// prefix. A key that names a catalog field assigns that field wherever it
// occurs, so a later occurrence overwrites an earlier one. An array reached
// through a top-level catalog key is assigned again from the array branch,
// which stringifies structured elements as JSON.
func Extract(obj *jsonval.Object) Record {
	var rec Record
	if obj == nil {
		return rec
	}
	w := walker{rec: &rec}
	w.object(obj, "")
	return rec
}

type walker struct {
	rec *Record
}

func (w *walker) walk(v jsonval.Value, prefix string) {
	switch v.Kind() {
	case jsonval.KindArray:
		w.array(v.Array(), prefix)
	case jsonval.KindObject:
		w.object(v.Object(), prefix)
	}
}

func (w *walker) array(elems []jsonval.Value, prefix string) {
	if i, ok := FieldIndex(strings.TrimSuffix(prefix, pathSeparator)); ok {
		w.rec[i] = jsonval.StringValue(joinElements(elems))
	}
	for _, e := range elems {
		if e.IsContainer() {
			w.walk(e, prefix)
		}
	}
}

func (w *walker) object(obj *jsonval.Object, prefix string) {
	obj.Each(func(key string, val jsonval.Value) {
		fullKey := prefix + key
		if i, ok := FieldIndex(key); ok {
			w.rec[i] = flatten(val)
		}
		if val.IsContainer() {
			w.walk(val, fullKey+pathSeparator)
		}
	})
}

// flatten converts a field value to a slot value: arrays are joined,
// objects become JSON text, scalars pass through.
func flatten(v jsonval.Value) jsonval.Value {
	switch v.Kind() {
	case jsonval.KindArray:
		return jsonval.StringValue(joinValues(v.Array(), ", "))
	case jsonval.KindObject:
		return jsonval.StringValue(v.JSON())
	default:
		return v
	}
}

// joinElements renders null and structured elements as JSON text and
// scalars as strings.
func joinElements(elems []jsonval.Value) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		switch e.Kind() {
		case jsonval.KindNull, jsonval.KindArray, jsonval.KindObject:
			parts[i] = e.JSON()
		default:
			parts[i] = e.String()
		}
	}
	return strings.Join(parts, ", ")
}

// joinValues follows Array.prototype.join: null becomes empty and nested
// arrays are joined with a bare comma. Objects render as JSON text.
func joinValues(elems []jsonval.Value, sep string) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		switch e.Kind() {
		case jsonval.KindUndefined, jsonval.KindNull:
		case jsonval.KindArray:
			parts[i] = joinValues(e.Array(), ",")
		default:
			parts[i] = e.String()
		}
	}
	return strings.Join(parts, sep)
}
