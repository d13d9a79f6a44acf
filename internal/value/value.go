// Package value defines the tagged value model shared by every stage of the
// placeholder pipeline. A Value wraps the result of a source lookup or a
// pipeline operation and carries enough type information for operations to
// check their preconditions, plus one canonical stringification used whenever
// a value crosses back into text.
package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindMap
)

// String returns a human-readable kind name for logs and error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	}
	return "unknown"
}

// Value is an immutable tagged union over the JSON-shaped types the engine
// works with: string, number, bool, null, list and map. Numbers are kept as
// json.Number so their literal textual form survives a round trip.
type Value struct {
	kind Kind
	data any
}

// Null returns the null value.
func Null() Value {
	return Value{kind: KindNull}
}

// Str wraps a plain string.
func Str(s string) Value {
	return Value{kind: KindString, data: s}
}

// Bool wraps a boolean.
func Bool(b bool) Value {
	return Value{kind: KindBool, data: b}
}

// Number wraps a numeric literal, preserving its textual form.
func Number(n json.Number) Value {
	return Value{kind: KindNumber, data: n}
}

// List wraps a slice of decoded JSON elements.
func List(items []any) Value {
	return Value{kind: KindList, data: items}
}

// FromAny normalizes a decoded JSON tree (or a plain Go scalar) into a Value.
// Unrecognized Go types degrade to their fmt string form rather than failing,
// since by this point the data already passed JSON decoding.
func FromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case string:
		return Str(t)
	case bool:
		return Bool(t)
	case json.Number:
		return Number(t)
	case float64:
		return Number(json.Number(strconv.FormatFloat(t, 'f', -1, 64)))
	case int:
		return Number(json.Number(strconv.Itoa(t)))
	case int64:
		return Number(json.Number(strconv.FormatInt(t, 10)))
	case []any:
		return Value{kind: KindList, data: t}
	case map[string]any:
		return Value{kind: KindMap, data: t}
	default:
		return Str(fmt.Sprintf("%v", t))
	}
}

// Decode parses a JSON document into a Value. Numbers are decoded with
// json.Number so literals like 3.14 keep their exact text.
func Decode(r io.Reader) (Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return Null(), fmt.Errorf("failed to decode JSON document: %w", err)
	}
	return FromAny(doc), nil
}

// DecodeBytes parses a JSON document held in memory.
func DecodeBytes(b []byte) (Value, error) {
	return Decode(bytes.NewReader(b))
}

// Kind reports which variant the value holds.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the value is the null variant.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// List returns the elements of a list value, each normalized to a Value.
// It returns nil for non-list values.
func (v Value) List() []Value {
	items, ok := v.data.([]any)
	if !ok {
		return nil
	}
	out := make([]Value, len(items))
	for i, item := range items {
		out[i] = FromAny(item)
	}
	return out
}

// Len returns the element count of a list value, and 0 otherwise.
func (v Value) Len() int {
	if items, ok := v.data.([]any); ok {
		return len(items)
	}
	return 0
}

// Field projects a named field out of a map value. The second return is false
// when the value is not a map or the field is absent.
func (v Value) Field(name string) (Value, bool) {
	m, ok := v.data.(map[string]any)
	if !ok {
		return Null(), false
	}
	item, ok := m[name]
	if !ok {
		return Null(), false
	}
	return FromAny(item), true
}

// Interface exposes the underlying decoded data for path evaluation.
func (v Value) Interface() any {
	return v.data
}

// String renders the canonical textual form: null becomes the empty string,
// booleans become true/false, numbers keep their literal text, lists join
// their stringified elements with commas, and maps render as compact JSON.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindString:
		return v.data.(string)
	case KindNumber:
		return v.data.(json.Number).String()
	case KindBool:
		if v.data.(bool) {
			return "true"
		}
		return "false"
	case KindList:
		items := v.List()
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = item.String()
		}
		return strings.Join(parts, ",")
	case KindMap:
		b, err := json.Marshal(v.data)
		if err != nil {
			return fmt.Sprintf("%v", v.data)
		}
		return string(b)
	}
	return ""
}

// IsBlank reports whether the value is null or stringifies to whitespace
// only. This is the truthiness rule used by the or() operation: a blank
// value yields to its fallback.
func (v Value) IsBlank() bool {
	if v.kind == KindNull {
		return true
	}
	return strings.TrimSpace(v.String()) == ""
}

// IsEmptyOrNA reports whether a raw field value is blank or one of the n/a
// spellings (N/A, n.a., na, "not applicable", not-applicable, ...) that
// upstream feeds use for absent data. Matching is case insensitive and
// ignores the separator characters between the letters.
func IsEmptyOrNA(s string) bool {
	t := strings.ToLower(strings.TrimSpace(s))
	if t == "" {
		return true
	}
	stripped := strings.Map(func(r rune) rune {
		switch r {
		case '/', '.', ' ', '-':
			return -1
		}
		return r
	}, t)
	return stripped == "na" || stripped == "notapplicable"
}
