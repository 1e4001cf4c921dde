package jsonval

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxDepth bounds array/object nesting while parsing.
const MaxDepth = 10000

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse decodes exactly one JSON document from data. A leading UTF-8 byte
// order mark is ignored; anything other than whitespace after the document
// is an error.
func Parse(data []byte) (Value, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decode(dec, 0)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			return Value{}, fmt.Errorf("unexpected data after top-level value at offset %d", dec.InputOffset())
		}
		return Value{}, err
	}
	return v, nil
}

func decode(dec *json.Decoder, depth int) (Value, error) {
	if depth > MaxDepth {
		return Value{}, fmt.Errorf("exceeded max depth %d", MaxDepth)
	}
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Value{}, io.ErrUnexpectedEOF
		}
		return Value{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec, depth)
		case '[':
			return decodeArray(dec, depth)
		default:
			return Value{}, fmt.Errorf("unexpected %q at offset %d", rune(t), dec.InputOffset())
		}
	case string:
		return StringValue(t), nil
	case json.Number:
		return NumberValue(string(t)), nil
	case bool:
		return BoolValue(t), nil
	case nil:
		return NullValue(), nil
	default:
		return Value{}, fmt.Errorf("unexpected token %v", tok)
	}
}

func decodeObject(dec *json.Decoder, depth int) (Value, error) {
	obj := NewObject()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("expected object key at offset %d", dec.InputOffset())
		}
		val, err := decode(dec, depth+1)
		if err != nil {
			return Value{}, err
		}
		obj.Set(key, val)
	}
	if err := closing(dec, '}'); err != nil {
		return Value{}, err
	}
	return ObjectValue(obj), nil
}

func decodeArray(dec *json.Decoder, depth int) (Value, error) {
	elems := []Value{}
	for dec.More() {
		val, err := decode(dec, depth+1)
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, val)
	}
	if err := closing(dec, ']'); err != nil {
		return Value{}, err
	}
	return ArrayValue(elems...), nil
}

func closing(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q at offset %d", rune(want), dec.InputOffset())
	}
	return nil
}
