package query

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"

	"github.com/gcbaptista/go-facet-query/internal/jsonutil"
	"github.com/gcbaptista/go-facet-query/model"
)

// FacetSpec is one engine facet request.
type FacetSpec interface {
	json.Marshaler
	// FacetField is the field the facet aggregates on.
	FacetField() string
	// FacetSize is the requested bucket count, 0 if the type has none.
	FacetSize() int
}

var (
	_ FacetSpec = TermsFacet{}
	_ FacetSpec = RangeFacet{}
	_ FacetSpec = GeoDistanceFacet{}
	_ FacetSpec = StatisticalFacet{}
	_ FacetSpec = TermsStatsFacet{}
	_ FacetSpec = DateHistogramFacet{}
	_ FacetSpec = (*RawFacet)(nil)
)

// TermsFacet: {"terms": {"field", "size", "order"}}.
type TermsFacet struct {
	Field string
	Size  int
	Order string
}

func (f TermsFacet) FacetField() string { return f.Field }
func (f TermsFacet) FacetSize() int     { return f.Size }

func (f TermsFacet) MarshalJSON() ([]byte, error) {
	var inner jsonutil.Object
	inner.Add("field", f.Field)
	inner.Add("size", f.Size)
	if f.Order != "" {
		inner.Add("order", f.Order)
	}
	return wrap(string(model.FacetTypeTerms), &inner)
}

// RangeFacet: {"range": {field: [{from, to}, ...]}}.
type RangeFacet struct {
	Field  string
	Ranges []model.Bound
}

func (f RangeFacet) FacetField() string { return f.Field }
func (f RangeFacet) FacetSize() int     { return 0 }

func (f RangeFacet) MarshalJSON() ([]byte, error) {
	var inner jsonutil.Object
	inner.Add(f.Field, nonNilBounds(f.Ranges))
	return wrap(string(model.FacetTypeRange), &inner)
}

// GeoDistanceFacet: {"geo_distance": {field: [lon, lat], "unit", "ranges"}}.
type GeoDistanceFacet struct {
	Field  string
	Lon    any
	Lat    any
	Unit   string
	Ranges []model.Bound
}

func (f GeoDistanceFacet) FacetField() string { return f.Field }
func (f GeoDistanceFacet) FacetSize() int     { return 0 }

func (f GeoDistanceFacet) MarshalJSON() ([]byte, error) {
	var inner jsonutil.Object
	inner.Add(f.Field, []any{f.Lon, f.Lat})
	inner.Add("unit", f.Unit)
	inner.Add("ranges", nonNilBounds(f.Ranges))
	return wrap(string(model.FacetTypeGeoDistance), &inner)
}

// StatisticalFacet: {"statistical": {"field"}}.
type StatisticalFacet struct {
	Field string
}

func (f StatisticalFacet) FacetField() string { return f.Field }
func (f StatisticalFacet) FacetSize() int     { return 0 }

func (f StatisticalFacet) MarshalJSON() ([]byte, error) {
	var inner jsonutil.Object
	inner.Add("field", f.Field)
	return wrap(string(model.FacetTypeStatistical), &inner)
}

// TermsStatsFacet: {"terms_stats": {"key_field", "value_field", "size", "order"}}.
type TermsStatsFacet struct {
	KeyField   string
	ValueField string
	Size       int
	Order      string
}

func (f TermsStatsFacet) FacetField() string { return f.KeyField }
func (f TermsStatsFacet) FacetSize() int     { return f.Size }

func (f TermsStatsFacet) MarshalJSON() ([]byte, error) {
	var inner jsonutil.Object
	inner.Add("key_field", f.KeyField)
	inner.Add("value_field", f.ValueField)
	inner.Add("size", f.Size)
	if f.Order != "" {
		inner.Add("order", f.Order)
	}
	return wrap(string(model.FacetTypeTermsStats), &inner)
}

// DateHistogramFacet: {"date_histogram": {"field", "interval"}}.
type DateHistogramFacet struct {
	Field    string
	Interval string
}

func (f DateHistogramFacet) FacetField() string { return f.Field }
func (f DateHistogramFacet) FacetSize() int     { return 0 }

func (f DateHistogramFacet) MarshalJSON() ([]byte, error) {
	var inner jsonutil.Object
	inner.Add("field", f.Field)
	inner.Add("interval", f.Interval)
	return wrap(string(model.FacetTypeDateHistogram), &inner)
}

// RawFacet is a caller-supplied facet body kept verbatim. Field and size are
// read from the body when it has the usual {"<type>": {"field", "size"}} shape.
type RawFacet struct {
	Name  string
	Body  json.RawMessage
	field string
	size  int
}

// NewRawFacet wraps body, registered under name.
func NewRawFacet(name string, body json.RawMessage) *RawFacet {
	f := &RawFacet{Name: name, Body: body, field: name}
	if m, err := jsonutil.Single(body); err == nil {
		if inner, err := jsonutil.Members(m.Value); err == nil {
			for _, kv := range inner {
				switch kv.Key {
				case "field", "key_field":
					if s, err := jsonutil.Value(kv.Value); err == nil {
						if str, ok := s.(string); ok && str != "" {
							f.field = str
						}
					}
				case "size":
					var v any
					if err := json.Unmarshal(kv.Value, &v); err == nil {
						f.size = cast.ToInt(v)
					}
				}
			}
		}
	}
	return f
}

func (f *RawFacet) FacetField() string { return f.field }
func (f *RawFacet) FacetSize() int     { return f.size }

func (f *RawFacet) MarshalJSON() ([]byte, error) {
	if len(f.Body) == 0 {
		return []byte("{}"), nil
	}
	return f.Body, nil
}

// DecodeFacet reads a facet body registered under name. Bodies that do not
// match a known facet shape come back as *RawFacet.
func DecodeFacet(name string, data []byte) (FacetSpec, error) {
	m, err := jsonutil.Single(data)
	if err != nil {
		return NewRawFacet(name, append(json.RawMessage(nil), data...)), nil
	}

	switch model.FacetType(m.Key) {
	case model.FacetTypeTerms:
		var body struct {
			Field string `json:"field"`
			Size  any    `json:"size"`
			Order string `json:"order"`
		}
		if err := json.Unmarshal(m.Value, &body); err != nil {
			return nil, fmt.Errorf("terms facet '%s': %w", name, err)
		}
		return TermsFacet{Field: body.Field, Size: cast.ToInt(body.Size), Order: body.Order}, nil
	case model.FacetTypeTermsStats:
		var body struct {
			KeyField   string `json:"key_field"`
			ValueField string `json:"value_field"`
			Size       any    `json:"size"`
			Order      string `json:"order"`
		}
		if err := json.Unmarshal(m.Value, &body); err != nil {
			return nil, fmt.Errorf("terms_stats facet '%s': %w", name, err)
		}
		return TermsStatsFacet{KeyField: body.KeyField, ValueField: body.ValueField, Size: cast.ToInt(body.Size), Order: body.Order}, nil
	case model.FacetTypeStatistical:
		var body struct {
			Field string `json:"field"`
		}
		if err := json.Unmarshal(m.Value, &body); err != nil {
			return nil, fmt.Errorf("statistical facet '%s': %w", name, err)
		}
		return StatisticalFacet{Field: body.Field}, nil
	case model.FacetTypeDateHistogram:
		var body struct {
			Field    string `json:"field"`
			Interval string `json:"interval"`
		}
		if err := json.Unmarshal(m.Value, &body); err != nil {
			return nil, fmt.Errorf("date_histogram facet '%s': %w", name, err)
		}
		return DateHistogramFacet{Field: body.Field, Interval: body.Interval}, nil
	case model.FacetTypeRange:
		fields, err := jsonutil.Members(m.Value)
		if err != nil || len(fields) != 1 {
			return NewRawFacet(name, append(json.RawMessage(nil), data...)), nil
		}
		var ranges []model.Bound
		if err := json.Unmarshal(fields[0].Value, &ranges); err != nil {
			return nil, fmt.Errorf("range facet '%s': %w", name, err)
		}
		return RangeFacet{Field: fields[0].Key, Ranges: ranges}, nil
	case model.FacetTypeGeoDistance:
		return decodeGeoDistanceFacet(name, m.Value, data)
	}
	return NewRawFacet(name, append(json.RawMessage(nil), data...)), nil
}

func decodeGeoDistanceFacet(name string, body, original []byte) (FacetSpec, error) {
	members, err := jsonutil.Members(body)
	if err != nil {
		return nil, fmt.Errorf("geo_distance facet '%s': %w", name, err)
	}
	var f GeoDistanceFacet
	for _, m := range members {
		switch m.Key {
		case "unit":
			if err := json.Unmarshal(m.Value, &f.Unit); err != nil {
				return nil, fmt.Errorf("geo_distance facet '%s' unit: %w", name, err)
			}
		case "ranges":
			if err := json.Unmarshal(m.Value, &f.Ranges); err != nil {
				return nil, fmt.Errorf("geo_distance facet '%s' ranges: %w", name, err)
			}
		default:
			v, err := jsonutil.Value(m.Value)
			if err != nil {
				return nil, fmt.Errorf("geo_distance facet '%s' point: %w", name, err)
			}
			point, ok := v.([]any)
			if !ok || len(point) != 2 || f.Field != "" {
				return NewRawFacet(name, append(json.RawMessage(nil), original...)), nil
			}
			f.Field, f.Lon, f.Lat = m.Key, point[0], point[1]
		}
	}
	return f, nil
}

func nonNilBounds(bounds []model.Bound) []model.Bound {
	if bounds == nil {
		return []model.Bound{}
	}
	return bounds
}
