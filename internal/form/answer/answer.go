// Package answer parses submitted answer payloads into an ordered JSON tree.
//
// Object members keep their declaration order so that recursive lookups are
// deterministic: members are searched in order, array elements in index order.
package answer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// ErrMalformed is returned when a payload is not a JSON object.
var ErrMalformed = errors.New("answer payload is not a valid JSON object")

// Stored answers are cast to jsonb, which has no representation for U+0000.
var errNUL = errors.New("NUL character in string")

// Kind is the JSON type of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindArray
	KindObject
)

// Value is one node of a parsed answer. Scalars keep their literal text.
type Value struct {
	Kind    Kind
	Text    string
	Items   []*Value
	Members []Member
}

// Member is one key of an object, in declaration order.
type Member struct {
	Key   string
	Value *Value
}

// Parse decodes a payload that must be a JSON object.
func Parse(raw string) (*Value, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrMalformed
	}
	if !utf8.ValidString(raw) {
		return nil, fmt.Errorf("%w: invalid UTF-8", ErrMalformed)
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	v, err := decode(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data", ErrMalformed)
	}
	if v.Kind != KindObject {
		return nil, ErrMalformed
	}
	return v, nil
}

// ParseLenient parses raw and returns an empty object when it cannot.
func ParseLenient(raw string) *Value {
	v, err := Parse(raw)
	if err != nil {
		return &Value{Kind: KindObject}
	}
	return v
}

func decode(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := &Value{Kind: KindObject}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", keyTok)
				}
				if strings.ContainsRune(key, 0) {
					return nil, errNUL
				}
				child, err := decode(dec)
				if err != nil {
					return nil, err
				}
				obj.Members = append(obj.Members, Member{Key: key, Value: child})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := &Value{Kind: KindArray}
			for dec.More() {
				child, err := decode(dec)
				if err != nil {
					return nil, err
				}
				arr.Items = append(arr.Items, child)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", t)
		}
	case string:
		if strings.ContainsRune(t, 0) {
			return nil, errNUL
		}
		return &Value{Kind: KindString, Text: t}, nil
	case json.Number:
		return &Value{Kind: KindNumber, Text: t.String()}, nil
	case bool:
		if t {
			return &Value{Kind: KindBool, Text: "true"}, nil
		}
		return &Value{Kind: KindBool, Text: "false"}, nil
	case nil:
		return &Value{Kind: KindNull}, nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

// Lookup returns the direct member named name. An exact-case match wins over
// a case-insensitive one.
func (v *Value) Lookup(name string) (*Value, bool) {
	if v == nil || v.Kind != KindObject {
		return nil, false
	}
	var folded *Value
	for _, m := range v.Members {
		if m.Key == name {
			return m.Value, true
		}
		if folded == nil && strings.EqualFold(m.Key, name) {
			folded = m.Value
		}
	}
	return folded, folded != nil
}

// Find searches depth-first for a member named name: the direct member if
// present, otherwise each member value in order, then array elements in
// order. The first match wins.
func (v *Value) Find(name string) (*Value, bool) {
	if v == nil {
		return nil, false
	}
	switch v.Kind {
	case KindObject:
		if found, ok := v.Lookup(name); ok {
			return found, true
		}
		for _, m := range v.Members {
			if found, ok := m.Value.Find(name); ok {
				return found, true
			}
		}
	case KindArray:
		for _, item := range v.Items {
			if found, ok := item.Find(name); ok {
				return found, true
			}
		}
	}
	return nil, false
}

// Resolve returns the direct member when present, otherwise the first nested
// match.
func (v *Value) Resolve(name string) (*Value, bool) {
	if found, ok := v.Lookup(name); ok {
		return found, true
	}
	return v.Find(name)
}

// Strings flattens a value into its string form: one entry for a scalar, one
// per scalar element for an array, and the compact JSON text for an object.
// Null yields nil.
func (v *Value) Strings() []string {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case KindNull:
		return nil
	case KindArray:
		out := make([]string, 0, len(v.Items))
		for _, item := range v.Items {
			out = append(out, item.Strings()...)
		}
		return out
	case KindObject:
		return []string{v.String()}
	default:
		return []string{v.Text}
	}
}

// Scalar returns the scalar text of v, or the values joined by a comma for an
// array. Missing values read as the empty string.
func (v *Value) Scalar() string {
	return strings.Join(v.Strings(), ",")
}

// String renders v as compact JSON.
func (v *Value) String() string {
	var buf bytes.Buffer
	v.write(&buf)
	return buf.String()
}

func (v *Value) write(buf *bytes.Buffer) {
	if v == nil {
		buf.WriteString("null")
		return
	}
	switch v.Kind {
	case KindNull:
		buf.WriteString("null")
	case KindString:
		b, _ := json.Marshal(v.Text)
		buf.Write(b)
	case KindNumber, KindBool:
		buf.WriteString(v.Text)
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			item.write(buf)
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, m := range v.Members {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, _ := json.Marshal(m.Key)
			buf.Write(b)
			buf.WriteByte(':')
			m.Value.write(buf)
		}
		buf.WriteByte('}')
	}
}

// IsAnswered reports whether a stored payload counts as an answer: anything
// but null, blank or an empty object. Unparsable non-blank text counts.
func IsAnswered(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return false
	}
	v, err := Parse(trimmed)
	if err != nil {
		return true
	}
	return len(v.Members) > 0
}
