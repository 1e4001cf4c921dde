package jsonval

import (
	"sort"
	"strconv"
)

// Object is a JSON object with browser enumeration order: keys that are
// canonical array indices come first in ascending numeric order, all other
// keys follow in the order they were first set.
type Object struct {
	keys    []string
	vals    map[string]Value
	nIndex  int      // keys[:nIndex] are array-index keys
	indices []uint32 // numeric values of keys[:nIndex]
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{vals: make(map[string]Value)}
}

// Set stores val under key. Re-setting an existing key replaces its value
// and keeps its position.
func (o *Object) Set(key string, val Value) {
	if o.vals == nil {
		o.vals = make(map[string]Value)
	}
	if _, ok := o.vals[key]; ok {
		o.vals[key] = val
		return
	}
	o.vals[key] = val

	idx, ok := arrayIndex(key)
	if !ok {
		o.keys = append(o.keys, key)
		return
	}
	pos := sort.Search(o.nIndex, func(i int) bool { return o.indices[i] > idx })
	o.keys = append(o.keys, "")
	copy(o.keys[pos+1:], o.keys[pos:])
	o.keys[pos] = key
	o.indices = append(o.indices, 0)
	copy(o.indices[pos+1:], o.indices[pos:])
	o.indices[pos] = idx
	o.nIndex++
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return Value{}, false
	}
	v, ok := o.vals[key]
	return v, ok
}

// Has reports whether key is an own key of o.
func (o *Object) Has(key string) bool {
	if o == nil {
		return false
	}
	_, ok := o.vals[key]
	return ok
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns a copy of the keys in enumeration order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Each calls fn for every key/value pair in enumeration order.
func (o *Object) Each(fn func(key string, val Value)) {
	if o == nil {
		return
	}
	for _, k := range o.keys {
		fn(k, o.vals[k])
	}
}

// arrayIndex reports whether key is the canonical decimal form of an
// integer in [0, 2^32-2].
func arrayIndex(key string) (uint32, bool) {
	if key == "" || len(key) > 10 {
		return 0, false
	}
	if len(key) > 1 && key[0] == '0' {
		return 0, false
	}
	for i := 0; i < len(key); i++ {
		if key[i] < '0' || key[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseUint(key, 10, 64)
	if err != nil || n > 1<<32-2 {
		return 0, false
	}
	return uint32(n), true
}
