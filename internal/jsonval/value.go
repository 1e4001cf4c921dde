// Package jsonval is a tagged-union model of parsed JSON documents.
//
// Objects keep their keys in the order a browser enumerates them
// (array-index keys ascending, then the rest in insertion order) so that
// traversals over a document visit fields in a stable, well-defined order.
package jsonval

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	// KindUndefined is the zero Kind. It marks an absent value and never
	// comes out of the parser.
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

var kindNames = [...]string{
	KindUndefined: "undefined",
	KindNull:      "null",
	KindBool:      "bool",
	KindNumber:    "number",
	KindString:    "string",
	KindArray:     "array",
	KindObject:    "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is one JSON value. The zero Value is Undefined.
type Value struct {
	kind Kind
	b    bool
	s    string // string contents, or the source text of a number
	arr  []Value
	obj  *Object
}

// NullValue returns the JSON null.
func NullValue() Value { return Value{kind: KindNull} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: KindString, s: s} }

// NumberValue wraps a number given as JSON number text, e.g. "12.50".
func NumberValue(text string) Value { return Value{kind: KindNumber, s: text} }

// ArrayValue wraps a list of elements.
func ArrayValue(elems ...Value) Value { return Value{kind: KindArray, arr: elems} }

// ObjectValue wraps an object. A nil object yields an empty one.
func ObjectValue(o *Object) Value {
	if o == nil {
		o = NewObject()
	}
	return Value{kind: KindObject, obj: o}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsUndefined reports whether v is the absent value.
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }

// IsContainer reports whether v is an array or an object.
func (v Value) IsContainer() bool { return v.kind == KindArray || v.kind == KindObject }

// Bool returns the boolean payload, false for other kinds.
func (v Value) Bool() bool { return v.kind == KindBool && v.b }

// Str returns the string payload, "" for other kinds.
func (v Value) Str() string {
	if v.kind != KindString {
		return ""
	}
	return v.s
}

// Float returns the numeric payload. Numbers too large for float64
// become ±Inf; other kinds return NaN.
func (v Value) Float() float64 {
	if v.kind != KindNumber {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(v.s, 64)
	if err != nil && !isRangeErr(err) {
		return math.NaN()
	}
	return f
}

// Array returns the elements of an array, nil for other kinds.
func (v Value) Array() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.arr
}

// Object returns the object payload, nil for other kinds.
func (v Value) Object() *Object {
	if v.kind != KindObject {
		return nil
	}
	return v.obj
}

// Truthy applies JavaScript truthiness: undefined, null, false, 0, NaN and
// "" are falsy; every array and object, including empty ones, is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindUndefined, KindNull:
		return false
	case KindBool:
		return v.b
	case KindNumber:
		f := v.Float()
		return f != 0 && !math.IsNaN(f)
	case KindString:
		return v.s != ""
	default:
		return true
	}
}

// String renders v for display. Scalars use their JavaScript string form,
// arrays and objects their compact JSON text, and Undefined the empty
// string.
func (v Value) String() string {
	switch v.kind {
	case KindUndefined:
		return ""
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return formatNumber(v.Float())
	case KindString:
		return v.s
	default:
		return v.JSON()
	}
}

// JSON renders v as compact JSON text in the style of JSON.stringify.
// Undefined renders as "".
func (v Value) JSON() string {
	var sb strings.Builder
	v.writeJSON(&sb)
	return sb.String()
}

func (v Value) writeJSON(sb *strings.Builder) {
	switch v.kind {
	case KindUndefined:
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		sb.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		f := v.Float()
		if math.IsInf(f, 0) || math.IsNaN(f) {
			sb.WriteString("null")
			return
		}
		sb.WriteString(formatNumber(f))
	case KindString:
		writeQuoted(sb, v.s)
	case KindArray:
		sb.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				sb.WriteByte(',')
			}
			if e.kind == KindUndefined {
				sb.WriteString("null")
				continue
			}
			e.writeJSON(sb)
		}
		sb.WriteByte(']')
	case KindObject:
		sb.WriteByte('{')
		first := true
		v.obj.Each(func(key string, val Value) {
			if val.kind == KindUndefined {
				return
			}
			if !first {
				sb.WriteByte(',')
			}
			first = false
			writeQuoted(sb, key)
			sb.WriteByte(':')
			val.writeJSON(sb)
		})
		sb.WriteByte('}')
	}
}

const hexDigits = "0123456789abcdef"

// writeQuoted escapes like JSON.stringify: quote, backslash and control
// characters only. HTML-significant characters are left alone.
func writeQuoted(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if c < 0x20 {
				sb.WriteString(`\u00`)
				sb.WriteByte(hexDigits[c>>4])
				sb.WriteByte(hexDigits[c&0xf])
				continue
			}
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
}

// formatNumber follows Number.prototype.toString: plain decimal notation
// for magnitudes in [1e-6, 1e21), exponent notation otherwise.
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mant + "e" + sign + digits
}

func isRangeErr(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}
