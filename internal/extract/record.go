package extract

import (
	"strings"

	"github.com/dgallion1/reportcsv/internal/jsonval"
)

// Record is one flattened row: a slot per catalog field, in catalog order.
// Slots hold Undefined, a scalar, or a string built from a nested value;
// never an array or object.
type Record [FieldCount]jsonval.Value

// Get returns the value of the named field, reporting false for names outside
// the catalog.
func (r Record) Get(name string) (jsonval.Value, bool) {
	i, ok := FieldIndex(name)
	if !ok {
		return jsonval.Value{}, false
	}
	return r[i], true
}

// Map returns the record keyed by field name. Undefined fields are present
// with the zero Value.
func (r Record) Map() map[string]jsonval.Value {
	m := make(map[string]jsonval.Value, FieldCount)
	for i, f := range fields {
		m[f] = r[i]
	}
	return m
}

// MarshalJSON emits the record as an object in catalog order. Undefined
// fields are omitted, the way JSON.stringify drops them.
func (r Record) MarshalJSON() ([]byte, error) {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	for i, v := range r {
		if v.IsUndefined() {
			continue
		}
		if !first {
			sb.WriteByte(',')
		}
		first = false
		sb.WriteString(jsonval.StringValue(fields[i]).JSON())
		sb.WriteByte(':')
		sb.WriteString(v.JSON())
	}
	sb.WriteByte('}')
	return []byte(sb.String()), nil
}
