package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/gcbaptista/go-facet-query/internal/jsonutil"
)

// FilterValue is the selection a user made on one facet: either a list of
// values (terms facets) or a range (range, date_histogram, geo_distance).
type FilterValue struct {
	Values []any
	Range  *Bound
}

// TermValues builds a terms selection.
func TermValues(values ...any) FilterValue {
	return FilterValue{Values: values}
}

// RangeValue builds a range selection. Pass nil for an open end.
func RangeValue(from, to any) FilterValue {
	return FilterValue{Range: &Bound{From: from, To: to}}
}

// IsRange reports whether the selection is a range.
func (v FilterValue) IsRange() bool { return v.Range != nil }

// MarshalJSON renders a range as an object and a terms selection as an array.
func (v FilterValue) MarshalJSON() ([]byte, error) {
	if v.Range != nil {
		return json.Marshal(v.Range)
	}
	if v.Values == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(v.Values)
}

// UnmarshalJSON accepts an array of values, a {from, to} object or a bare
// scalar (treated as a one-value selection). Numbers are kept as
// json.Number so large integers reach the query unchanged.
func (v *FilterValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty filter value")
	}
	switch trimmed[0] {
	case '[':
		var values []any
		if err := decodeNumbers(trimmed, &values); err != nil {
			return err
		}
		*v = FilterValue{Values: values}
	case '{':
		var b Bound
		if err := decodeNumbers(trimmed, &b); err != nil {
			return err
		}
		*v = FilterValue{Range: &b}
	default:
		var scalar any
		if err := decodeNumbers(trimmed, &scalar); err != nil {
			return err
		}
		*v = FilterValue{Values: []any{scalar}}
	}
	return nil
}

func decodeNumbers(data []byte, target any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(target)
}

// FilterSet maps field names to selections while remembering the order in
// which fields were added.
type FilterSet struct {
	fields []string
	values map[string]FilterValue
}

// NewFilterSet returns an empty set.
func NewFilterSet() *FilterSet {
	return &FilterSet{values: make(map[string]FilterValue)}
}

// Set stores value under field. An existing field keeps its position.
func (s *FilterSet) Set(field string, value FilterValue) {
	if s.values == nil {
		s.values = make(map[string]FilterValue)
	}
	if _, exists := s.values[field]; !exists {
		s.fields = append(s.fields, field)
	}
	s.values[field] = value
}

// Get returns the selection for field.
func (s *FilterSet) Get(field string) (FilterValue, bool) {
	if s == nil {
		return FilterValue{}, false
	}
	v, ok := s.values[field]
	return v, ok
}

// Fields returns field names in insertion order.
func (s *FilterSet) Fields() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.fields...)
}

// Len returns the number of fields.
func (s *FilterSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fields)
}

// MarshalJSON writes the set as an object in insertion order.
func (s *FilterSet) MarshalJSON() ([]byte, error) {
	var obj jsonutil.Object
	if s != nil {
		for _, field := range s.fields {
			obj.Add(field, s.values[field])
		}
	}
	return obj.Bytes()
}

// UnmarshalJSON reads an object, keeping key order.
func (s *FilterSet) UnmarshalJSON(data []byte) error {
	members, err := jsonutil.Members(data)
	if err != nil {
		return err
	}
	*s = FilterSet{values: make(map[string]FilterValue, len(members))}
	for _, m := range members {
		var v FilterValue
		if err := json.Unmarshal(m.Value, &v); err != nil {
			return fmt.Errorf("filter '%s': %w", m.Key, err)
		}
		s.Set(m.Key, v)
	}
	return nil
}
