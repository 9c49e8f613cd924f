package query

import (
	"encoding/json"
	"fmt"

	"github.com/gcbaptista/go-facet-query/internal/jsonutil"
)

// Clause tags as they appear in the engine DSL.
const (
	TagTerm             = "term"
	TagTerms            = "terms"
	TagRange            = "range"
	TagGeoDistanceRange = "geo_distance_range"
)

// Clause is one entry of filtered.filter.bool.must.
type Clause interface {
	json.Marshaler
	Tag() string
}

var (
	_ Clause = TermClause{}
	_ Clause = TermsClause{}
	_ Clause = RangeClause{}
	_ Clause = GeoDistanceRangeClause{}
	_ Clause = RawClause{}
)

// TermClause matches a single value on a field: {"term": {field: value}}.
type TermClause struct {
	Field string
	Value any
}

func (c TermClause) Tag() string { return TagTerm }

func (c TermClause) MarshalJSON() ([]byte, error) {
	var inner jsonutil.Object
	inner.Add(c.Field, c.Value)
	return wrap(TagTerm, &inner)
}

// TermsClause matches any of several values: {"terms": {field: [values]}}.
type TermsClause struct {
	Field  string
	Values []any
}

func (c TermsClause) Tag() string { return TagTerms }

func (c TermsClause) MarshalJSON() ([]byte, error) {
	values := c.Values
	if values == nil {
		values = []any{}
	}
	var inner jsonutil.Object
	inner.Add(c.Field, values)
	return wrap(TagTerms, &inner)
}

// RangeClause bounds a field: {"range": {field: {"lt": to, "gte": from}}}.
// Nil bounds are left out.
type RangeClause struct {
	Field string
	LT    any
	GTE   any
}

func (c RangeClause) Tag() string { return TagRange }

func (c RangeClause) MarshalJSON() ([]byte, error) {
	bounds, err := boundsObject(c.LT, c.GTE)
	if err != nil {
		return nil, err
	}
	var inner jsonutil.Object
	inner.Add(c.Field, json.RawMessage(bounds))
	return wrap(TagRange, &inner)
}

// GeoDistanceRangeClause bounds the distance from a point. LT and GTE carry
// the distance with its unit suffix, e.g. "10km".
type GeoDistanceRangeClause struct {
	Field string
	Lon   any
	Lat   any
	LT    any
	GTE   any
}

func (c GeoDistanceRangeClause) Tag() string { return TagGeoDistanceRange }

func (c GeoDistanceRangeClause) MarshalJSON() ([]byte, error) {
	var inner jsonutil.Object
	if c.LT != nil {
		inner.Add("lt", c.LT)
	}
	if c.GTE != nil {
		inner.Add("gte", c.GTE)
	}
	// lon/lat order follows GeoJSON
	inner.Add(c.Field, []any{c.Lon, c.Lat})
	return wrap(TagGeoDistanceRange, &inner)
}

// RawClause is a prebuilt clause passed through verbatim.
type RawClause json.RawMessage

// Tag returns the clause's top-level key, or "" if it cannot be read.
func (c RawClause) Tag() string {
	m, err := jsonutil.Single(c)
	if err != nil {
		return ""
	}
	return m.Key
}

func (c RawClause) MarshalJSON() ([]byte, error) {
	if len(c) == 0 {
		return []byte("null"), nil
	}
	return c, nil
}

// DecodeClauses reads one must entry. An entry carrying several fields under
// the same tag yields one clause per field, in key order. Unknown tags are
// kept as RawClause.
func DecodeClauses(data []byte) ([]Clause, error) {
	members, err := jsonutil.Members(data)
	if err != nil {
		return nil, err
	}

	var out []Clause
	for _, m := range members {
		switch m.Key {
		case TagTerm:
			fields, err := jsonutil.Members(m.Value)
			if err != nil {
				return nil, fmt.Errorf("term clause: %w", err)
			}
			for _, f := range fields {
				v, err := jsonutil.Value(f.Value)
				if err != nil {
					return nil, fmt.Errorf("term clause on '%s': %w", f.Key, err)
				}
				out = append(out, TermClause{Field: f.Key, Value: v})
			}
		case TagTerms:
			fields, err := jsonutil.Members(m.Value)
			if err != nil {
				return nil, fmt.Errorf("terms clause: %w", err)
			}
			for _, f := range fields {
				v, err := jsonutil.Value(f.Value)
				if err != nil {
					return nil, fmt.Errorf("terms clause on '%s': %w", f.Key, err)
				}
				values, ok := v.([]any)
				if !ok {
					values = []any{v}
				}
				out = append(out, TermsClause{Field: f.Key, Values: values})
			}
		case TagRange:
			fields, err := jsonutil.Members(m.Value)
			if err != nil {
				return nil, fmt.Errorf("range clause: %w", err)
			}
			for _, f := range fields {
				lt, gte, _, err := decodeBounds(f.Value)
				if err != nil {
					return nil, fmt.Errorf("range clause on '%s': %w", f.Key, err)
				}
				out = append(out, RangeClause{Field: f.Key, LT: lt, GTE: gte})
			}
		case TagGeoDistanceRange:
			clause, err := decodeGeoDistanceRange(m.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, clause)
		default:
			var obj jsonutil.Object
			obj.Add(m.Key, m.Value)
			raw, err := obj.Bytes()
			if err != nil {
				return nil, err
			}
			out = append(out, RawClause(raw))
		}
	}
	return out, nil
}

func decodeGeoDistanceRange(data []byte) (GeoDistanceRangeClause, error) {
	var c GeoDistanceRangeClause
	members, err := jsonutil.Members(data)
	if err != nil {
		return c, fmt.Errorf("geo_distance_range clause: %w", err)
	}
	for _, m := range members {
		v, err := jsonutil.Value(m.Value)
		if err != nil {
			return c, fmt.Errorf("geo_distance_range clause key '%s': %w", m.Key, err)
		}
		switch m.Key {
		case "lt":
			c.LT = v
		case "gte":
			c.GTE = v
		default:
			if c.Field != "" {
				continue
			}
			c.Field = m.Key
			if point, ok := v.([]any); ok && len(point) == 2 {
				c.Lon, c.Lat = point[0], point[1]
			}
		}
	}
	return c, nil
}

func decodeBounds(data []byte) (lt, gte any, other []jsonutil.Member, err error) {
	members, err := jsonutil.Members(data)
	if err != nil {
		return nil, nil, nil, err
	}
	for _, m := range members {
		switch m.Key {
		case "lt", "gte":
			v, err := jsonutil.Value(m.Value)
			if err != nil {
				return nil, nil, nil, err
			}
			if m.Key == "lt" {
				lt = v
			} else {
				gte = v
			}
		default:
			other = append(other, m)
		}
	}
	return lt, gte, other, nil
}

func boundsObject(lt, gte any) ([]byte, error) {
	var obj jsonutil.Object
	if lt != nil {
		obj.Add("lt", lt)
	}
	if gte != nil {
		obj.Add("gte", gte)
	}
	return obj.Bytes()
}

func wrap(tag string, inner *jsonutil.Object) ([]byte, error) {
	body, err := inner.Bytes()
	if err != nil {
		return nil, err
	}
	var outer jsonutil.Object
	outer.Add(tag, json.RawMessage(body))
	return outer.Bytes()
}
