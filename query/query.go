// Package query models the engine-side search DSL: a free-text node,
// optionally wrapped with filter clauses, plus sort, paging, projections and
// facet requests. Every DSL node is a closed set of Go types with JSON
// encoders that reproduce the engine's wire shape and key order.
package query

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"

	"github.com/gcbaptista/go-facet-query/internal/jsonutil"
	"github.com/gcbaptista/go-facet-query/model"
)

// SortList is the query's sort. An empty list encodes as "".
type SortList []model.SortSpec

func (s SortList) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte(`""`), nil
	}
	return json.Marshal([]model.SortSpec(s))
}

func (s *SortList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		*s = nil
		return nil
	}
	var specs []model.SortSpec
	if err := json.Unmarshal(trimmed, &specs); err != nil {
		return err
	}
	*s = specs
	return nil
}

// URLParam is one key=value pair added verbatim to the serialized URL.
type URLParam struct {
	Key   string
	Value string
}

// Chip is a UI-selected filter rendered into the free-text parameter as
// field:"value".
type Chip struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Query is the full structured request handed to the serializer.
type Query struct {
	Query          Node
	Sort           SortList
	PageSize       int
	Fields         any
	PartialFields  any
	ScriptFields   any
	From           *int
	QueryParameter string
	Facets         *FacetSet

	DefaultURLParams []URLParam
	Paging           []URLParam
	SelectedFilters  []Chip
}

// FreeText returns the free-text node and the filter clauses, unwrapping a
// Filtered root.
func (q *Query) FreeText() (Node, []Clause) {
	if q == nil || q.Query == nil {
		return nil, nil
	}
	if f, ok := q.Query.(Filtered); ok {
		return f.Query, f.Must
	}
	return q.Query, nil
}

// MarshalJSON writes the query with a stable key order. Projection keys are
// present only when set, which the builder does with "" placeholders.
func (q Query) MarshalJSON() ([]byte, error) {
	var obj jsonutil.Object
	root := q.Query
	if root == nil {
		root = MatchAll{}
	}
	obj.Add("query", root)
	obj.Add("sort", q.Sort)
	obj.Add("page_size", q.PageSize)
	if q.Fields != nil {
		obj.Add("fields", q.Fields)
	}
	if q.PartialFields != nil {
		obj.Add("partial_fields", q.PartialFields)
	}
	if q.ScriptFields != nil {
		obj.Add("script_fields", q.ScriptFields)
	}
	if q.From != nil {
		obj.Add("from", *q.From)
	}
	obj.Add("query_parameter", q.QueryParameter)
	if q.Facets != nil {
		obj.Add("facets", q.Facets)
	}
	if len(q.DefaultURLParams) > 0 {
		obj.Add("default_url_params", json.RawMessage(mustParams(q.DefaultURLParams)))
	}
	if len(q.Paging) > 0 {
		obj.Add("paging", json.RawMessage(mustParams(q.Paging)))
	}
	if len(q.SelectedFilters) > 0 {
		obj.Add("selected_filters", q.SelectedFilters)
	}
	return obj.Bytes()
}

// UnmarshalJSON reads a structured query, e.g. one restored from a bookmark.
// Numeric fields accept numbers or numeric strings.
func (q *Query) UnmarshalJSON(data []byte) error {
	members, err := jsonutil.Members(data)
	if err != nil {
		return err
	}
	*q = Query{}
	for _, m := range members {
		if err := q.decodeMember(m); err != nil {
			return fmt.Errorf("query key '%s': %w", m.Key, err)
		}
	}
	return nil
}

func (q *Query) decodeMember(m jsonutil.Member) error {
	switch m.Key {
	case "query":
		if jsonutil.IsNull(m.Value) {
			return nil
		}
		node, err := DecodeNode(m.Value)
		if err != nil {
			return err
		}
		q.Query = node
	case "sort":
		return json.Unmarshal(m.Value, &q.Sort)
	case "page_size":
		v, err := scalar(m.Value)
		if err != nil {
			return err
		}
		q.PageSize, err = cast.ToIntE(v)
		return err
	case "from":
		if jsonutil.IsNull(m.Value) {
			return nil
		}
		v, err := scalar(m.Value)
		if err != nil {
			return err
		}
		from, err := cast.ToIntE(v)
		if err != nil {
			return err
		}
		q.From = &from
	case "fields", "partial_fields", "script_fields":
		v, err := jsonutil.Value(m.Value)
		if err != nil {
			return err
		}
		switch m.Key {
		case "fields":
			q.Fields = v
		case "partial_fields":
			q.PartialFields = v
		default:
			q.ScriptFields = v
		}
	case "query_parameter":
		return json.Unmarshal(m.Value, &q.QueryParameter)
	case "facets":
		if jsonutil.IsNull(m.Value) {
			return nil
		}
		set, err := DecodeFacetSet(m.Value)
		if err != nil {
			return err
		}
		q.Facets = set
	case "default_url_params":
		params, err := decodeParams(m.Value)
		if err != nil {
			return err
		}
		q.DefaultURLParams = params
	case "paging":
		params, err := decodeParams(m.Value)
		if err != nil {
			return err
		}
		q.Paging = params
	case "selected_filters":
		return json.Unmarshal(m.Value, &q.SelectedFilters)
	}
	return nil
}

func scalar(raw json.RawMessage) (any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeParams(data []byte) ([]URLParam, error) {
	members, err := jsonutil.Members(data)
	if err != nil {
		return nil, err
	}
	params := make([]URLParam, 0, len(members))
	for _, m := range members {
		v, err := scalar(m.Value)
		if err != nil {
			return nil, err
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, fmt.Errorf("param '%s': %w", m.Key, err)
		}
		params = append(params, URLParam{Key: m.Key, Value: s})
	}
	return params, nil
}

func mustParams(params []URLParam) []byte {
	var obj jsonutil.Object
	for _, p := range params {
		obj.Add(p.Key, p.Value)
	}
	out, _ := obj.Bytes()
	return out
}
