package messages

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind is the JSON kind held by a Value.
type Kind int

const (
	KindAbsent Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return "unknown"
}

// Value is an opaque JSON value received at the protocol boundary.
// The zero Value is absent.
type Value struct {
	raw json.RawMessage
}

// NewValue wraps raw, which must be a single valid JSON value or empty.
func NewValue(raw json.RawMessage) Value {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Value{}
	}
	return Value{raw: append(json.RawMessage(nil), trimmed...)}
}

func (v Value) Kind() Kind {
	if len(v.raw) == 0 {
		return KindAbsent
	}
	switch v.raw[0] {
	case 'n':
		return KindNull
	case 't', 'f':
		return KindBool
	case '"':
		return KindString
	case '[':
		return KindArray
	case '{':
		return KindObject
	default:
		return KindNumber
	}
}

// Raw returns the JSON text of the value, nil when absent.
func (v Value) Raw() json.RawMessage {
	return v.raw
}

// Decode unmarshals the value into out.
func (v Value) Decode(out interface{}) error {
	if v.Kind() == KindAbsent {
		return fmt.Errorf("cannot decode absent value")
	}
	return json.Unmarshal(v.raw, out)
}

func (v Value) AsBool() (bool, bool) {
	var b bool
	if v.Kind() != KindBool || json.Unmarshal(v.raw, &b) != nil {
		return false, false
	}
	return b, true
}

func (v Value) AsNumber() (float64, bool) {
	var n float64
	if v.Kind() != KindNumber || json.Unmarshal(v.raw, &n) != nil {
		return 0, false
	}
	return n, true
}

func (v Value) AsString() (string, bool) {
	var s string
	if v.Kind() != KindString || json.Unmarshal(v.raw, &s) != nil {
		return "", false
	}
	return s, true
}

func (v Value) AsArray() ([]Value, bool) {
	var items []json.RawMessage
	if v.Kind() != KindArray || json.Unmarshal(v.raw, &items) != nil {
		return nil, false
	}
	values := make([]Value, 0, len(items))
	for _, item := range items {
		values = append(values, NewValue(item))
	}
	return values, true
}

func (v Value) AsObject() (map[string]Value, bool) {
	var fields map[string]json.RawMessage
	if v.Kind() != KindObject || json.Unmarshal(v.raw, &fields) != nil {
		return nil, false
	}
	values := make(map[string]Value, len(fields))
	for k, item := range fields {
		values[k] = NewValue(item)
	}
	return values, true
}

// Text renders the value for logs: strings unquoted, everything else as JSON.
func (v Value) Text() string {
	if s, ok := v.AsString(); ok {
		return s
	}
	if v.Kind() == KindAbsent {
		return ""
	}
	return string(v.raw)
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.Kind() == KindAbsent {
		return []byte("null"), nil
	}
	return v.raw, nil
}

func (v *Value) UnmarshalJSON(b []byte) error {
	*v = NewValue(b)
	return nil
}
