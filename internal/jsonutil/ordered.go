// Package jsonutil holds JSON helpers shared by the model and query packages.
// Engine DSL objects are keyed maps whose key order is meaningful to callers
// (filter iteration order, facet order), so decoding walks the token stream
// instead of unmarshalling into a Go map.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Member is one key/value pair of a JSON object, value left undecoded.
type Member struct {
	Key   string
	Value json.RawMessage
}

// Members decodes a JSON object into its members, preserving key order.
// A JSON null yields no members and no error.
func Members(data []byte) ([]Member, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	var members []Member
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode value of %q: %w", key, err)
		}
		members = append(members, Member{Key: key, Value: raw})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return members, nil
}

// Single decodes an object expected to carry exactly one member, the usual
// shape of a tagged DSL node such as {"term": {...}}.
func Single(data []byte) (Member, error) {
	members, err := Members(data)
	if err != nil {
		return Member{}, err
	}
	if len(members) != 1 {
		return Member{}, fmt.Errorf("expected a single-key object, got %d keys", len(members))
	}
	return members[0], nil
}

// Value decodes a scalar or composite JSON value into Go values, keeping
// numbers as json.Number so integers survive untouched.
func Value(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// IsNull reports whether raw is absent or the JSON literal null.
func IsNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Object incrementally encodes a JSON object with a fixed key order.
type Object struct {
	buf   bytes.Buffer
	count int
	err   error
}

// Add appends key with the JSON encoding of value.
func (o *Object) Add(key string, value any) {
	if o.err != nil {
		return
	}
	var encoded []byte
	if raw, ok := value.(json.RawMessage); ok {
		encoded = raw
	} else {
		encoded, o.err = json.Marshal(value)
		if o.err != nil {
			return
		}
	}
	k, _ := json.Marshal(key)
	if o.count == 0 {
		o.buf.WriteByte('{')
	} else {
		o.buf.WriteByte(',')
	}
	o.buf.Write(k)
	o.buf.WriteByte(':')
	o.buf.Write(encoded)
	o.count++
}

// Bytes finishes the object.
func (o *Object) Bytes() ([]byte, error) {
	if o.err != nil {
		return nil, o.err
	}
	if o.count == 0 {
		return []byte("{}"), nil
	}
	out := append([]byte(nil), o.buf.Bytes()...)
	return append(out, '}'), nil
}
