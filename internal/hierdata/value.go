package hierdata

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind identifies the JSON shape of a Value
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindArray
	KindObject
)

// String returns the kind name for diagnostics
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
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is one node of a decoded hierarchical document. Objects keep their
// key insertion order explicitly, since the conversion pipeline treats
// document order as meaningful and Go maps do not preserve it.
type Value struct {
	kind    Kind
	str     string
	num     float64
	boolean bool
	items   []*Value
	keys    []string
	fields  map[string]*Value
}

// Kind returns the JSON shape of the value
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// IsNull reports whether the value is JSON null (or a nil node)
func (v *Value) IsNull() bool { return v.Kind() == KindNull }

// IsObject reports whether the value is a JSON object
func (v *Value) IsObject() bool { return v.Kind() == KindObject }

// IsArray reports whether the value is a JSON array
func (v *Value) IsArray() bool { return v.Kind() == KindArray }

// IsScalar reports whether the value is a primitive (string, number, bool)
// or null
func (v *Value) IsScalar() bool {
	switch v.Kind() {
	case KindString, KindNumber, KindBool, KindNull:
		return true
	default:
		return false
	}
}

// Str returns the string payload; empty unless Kind is KindString
func (v *Value) Str() string {
	if v == nil {
		return ""
	}
	return v.str
}

// Num returns the numeric payload; zero unless Kind is KindNumber
func (v *Value) Num() float64 {
	if v == nil {
		return 0
	}
	return v.num
}

// Bool returns the boolean payload; false unless Kind is KindBool
func (v *Value) Bool() bool {
	if v == nil {
		return false
	}
	return v.boolean
}

// Items returns the elements of an array value
func (v *Value) Items() []*Value {
	if v == nil {
		return nil
	}
	return v.items
}

// Keys returns an object's keys in insertion order
func (v *Value) Keys() []string {
	if v == nil {
		return nil
	}
	return v.keys
}

// Field returns the named member of an object value
func (v *Value) Field(key string) (*Value, bool) {
	if v == nil || v.fields == nil {
		return nil, false
	}
	f, ok := v.fields[key]
	return f, ok
}

// Len returns the member count of an array or object, zero otherwise
func (v *Value) Len() int {
	switch v.Kind() {
	case KindArray:
		return len(v.items)
	case KindObject:
		return len(v.keys)
	default:
		return 0
	}
}

// Interface converts the value back into plain Go data (map[string]any,
// []any, string, float64, bool, nil). Object key order is lost in the
// result, which is why callers that care about order work on Value directly.
func (v *Value) Interface() any {
	switch v.Kind() {
	case KindNull:
		return nil
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.boolean
	case KindArray:
		out := make([]any, 0, len(v.items))
		for _, item := range v.items {
			out = append(out, item.Interface())
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.keys))
		for _, key := range v.keys {
			out[key] = v.fields[key].Interface()
		}
		return out
	default:
		return nil
	}
}

// StringSlice interprets an array value as a list of strings, stringifying
// non-string members. Returns nil for non-array values.
func (v *Value) StringSlice() []string {
	if !v.IsArray() {
		return nil
	}
	out := make([]string, 0, len(v.items))
	for _, item := range v.items {
		switch item.Kind() {
		case KindString:
			out = append(out, item.str)
		default:
			out = append(out, item.Stringify())
		}
	}
	return out
}

// FloatSlice interprets an array value as a list of numbers. Returns nil
// when the value is not an array of numbers.
func (v *Value) FloatSlice() []float64 {
	if !v.IsArray() {
		return nil
	}
	out := make([]float64, 0, len(v.items))
	for _, item := range v.items {
		if item.Kind() != KindNumber {
			return nil
		}
		out = append(out, item.num)
	}
	return out
}

// Stringify renders the value as a display string. Scalars render their
// natural form; composites render compact JSON.
func (v *Value) Stringify() string {
	switch v.Kind() {
	case KindNull:
		return ""
	case KindString:
		return v.str
	case KindNumber:
		// Trim the float formatting for integral values
		if v.num == float64(int64(v.num)) {
			return fmt.Sprintf("%d", int64(v.num))
		}
		return fmt.Sprintf("%g", v.num)
	case KindBool:
		return fmt.Sprintf("%t", v.boolean)
	default:
		data, err := json.Marshal(v.Interface())
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// Constructors used by the decoder and by code assembling values directly.

// Null returns a JSON null value
func Null() *Value { return &Value{kind: KindNull} }

// String returns a string value
func String(s string) *Value { return &Value{kind: KindString, str: s} }

// Number returns a numeric value
func Number(n float64) *Value { return &Value{kind: KindNumber, num: n} }

// Bool returns a boolean value
func Bool(b bool) *Value { return &Value{kind: KindBool, boolean: b} }

// Array returns an array value holding the given items
func Array(items ...*Value) *Value {
	return &Value{kind: KindArray, items: items}
}

// Object returns an empty object value; members are added with Set
func Object() *Value {
	return &Value{kind: KindObject, fields: make(map[string]*Value)}
}

// Set adds or replaces an object member, preserving first-insertion order
func (v *Value) Set(key string, member *Value) *Value {
	if v.kind != KindObject {
		return v
	}
	if _, exists := v.fields[key]; !exists {
		v.keys = append(v.keys, key)
	}
	v.fields[key] = member
	return v
}

// FromInterface builds a Value from plain Go data, as produced by
// encoding/json unmarshaling or assembled by callers. Map key order is not
// recoverable here; use Decode when order matters.
func FromInterface(data any) *Value {
	switch d := data.(type) {
	case nil:
		return Null()
	case string:
		return String(d)
	case float64:
		return Number(d)
	case int:
		return Number(float64(d))
	case int64:
		return Number(float64(d))
	case bool:
		return Bool(d)
	case []any:
		items := make([]*Value, 0, len(d))
		for _, item := range d {
			items = append(items, FromInterface(item))
		}
		return Array(items...)
	case []string:
		items := make([]*Value, 0, len(d))
		for _, item := range d {
			items = append(items, String(item))
		}
		return Array(items...)
	case []float64:
		items := make([]*Value, 0, len(d))
		for _, item := range d {
			items = append(items, Number(item))
		}
		return Array(items...)
	case []map[string]any:
		items := make([]*Value, 0, len(d))
		for _, item := range d {
			items = append(items, FromInterface(item))
		}
		return Array(items...)
	case map[string]any:
		obj := Object()
		for _, key := range sortedKeys(d) {
			obj.Set(key, FromInterface(d[key]))
		}
		return obj
	case json.RawMessage:
		v, err := Decode(d)
		if err != nil {
			return String(string(d))
		}
		return v
	default:
		return String(fmt.Sprintf("%v", d))
	}
}

// Decode parses JSON into a Value, preserving object key order. The input
// must be a single JSON value; trailing data is rejected.
func Decode(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	v, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to decode hierarchical data: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected trailing data after JSON value")
	}
	return v, nil
}

// decodeValue consumes one JSON value from the token stream
func decodeValue(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeFromToken(dec, tok)
}

func decodeFromToken(dec *json.Decoder, tok json.Token) (*Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	case string:
		return String(t), nil
	case float64:
		return Number(t), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

func decodeObject(dec *json.Decoder) (*Value, error) {
	obj := Object()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is not a string: %v", keyTok)
		}
		member, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		obj.Set(key, member)
	}
	// Consume the closing brace
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeArray(dec *json.Decoder) (*Value, error) {
	var items []*Value
	for dec.More() {
		item, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return Array(items...), nil
}
