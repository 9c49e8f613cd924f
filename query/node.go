package query

import (
	"encoding/json"
	"fmt"

	"github.com/gcbaptista/go-facet-query/internal/jsonutil"
)

// Node is the root of the query proper: MatchAll, QueryString or Filtered.
type Node interface {
	json.Marshaler
	isNode()
}

var (
	_ Node = MatchAll{}
	_ Node = QueryString{}
	_ Node = Filtered{}
)

// MatchAll: {"match_all": {}}.
type MatchAll struct{}

func (MatchAll) isNode() {}

func (MatchAll) MarshalJSON() ([]byte, error) {
	return []byte(`{"match_all":{}}`), nil
}

// QueryString: {"query_string": {"query", "default_field", "default_operator"}}.
type QueryString struct {
	Query           string
	DefaultField    string
	DefaultOperator string
}

func (QueryString) isNode() {}

func (q QueryString) MarshalJSON() ([]byte, error) {
	var inner jsonutil.Object
	inner.Add("query", q.Query)
	if q.DefaultField != "" {
		inner.Add("default_field", q.DefaultField)
	}
	if q.DefaultOperator != "" {
		inner.Add("default_operator", q.DefaultOperator)
	}
	return wrap("query_string", &inner)
}

// Filtered wraps a free-text node with conjunctive filter clauses:
// {"filtered": {"filter": {"bool": {"must": [...]}}, "query": {...}}}.
type Filtered struct {
	Must  []Clause
	Query Node
}

func (Filtered) isNode() {}

func (f Filtered) MarshalJSON() ([]byte, error) {
	must := f.Must
	if must == nil {
		must = []Clause{}
	}
	mustJSON, err := json.Marshal(must)
	if err != nil {
		return nil, err
	}
	var boolObj jsonutil.Object
	boolObj.Add("must", json.RawMessage(mustJSON))
	boolJSON, err := boolObj.Bytes()
	if err != nil {
		return nil, err
	}
	var filterObj jsonutil.Object
	filterObj.Add("bool", json.RawMessage(boolJSON))
	filterJSON, err := filterObj.Bytes()
	if err != nil {
		return nil, err
	}

	var inner jsonutil.Object
	inner.Add("filter", json.RawMessage(filterJSON))
	if f.Query != nil {
		inner.Add("query", f.Query)
	}
	return wrap("filtered", &inner)
}

// DecodeNode reads a query root. Unknown roots are an error.
func DecodeNode(data []byte) (Node, error) {
	m, err := jsonutil.Single(data)
	if err != nil {
		return nil, fmt.Errorf("query node: %w", err)
	}
	switch m.Key {
	case "match_all":
		return MatchAll{}, nil
	case "query_string":
		var body struct {
			Query           string `json:"query"`
			DefaultField    string `json:"default_field"`
			DefaultOperator string `json:"default_operator"`
		}
		if err := json.Unmarshal(m.Value, &body); err != nil {
			return nil, fmt.Errorf("query_string node: %w", err)
		}
		return QueryString{Query: body.Query, DefaultField: body.DefaultField, DefaultOperator: body.DefaultOperator}, nil
	case "filtered":
		return decodeFiltered(m.Value)
	}
	return nil, fmt.Errorf("unsupported query node '%s'", m.Key)
}

func decodeFiltered(data []byte) (Filtered, error) {
	var body struct {
		Filter struct {
			Bool struct {
				Must []json.RawMessage `json:"must"`
			} `json:"bool"`
		} `json:"filter"`
		Query json.RawMessage `json:"query"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return Filtered{}, fmt.Errorf("filtered node: %w", err)
	}

	var f Filtered
	for i, raw := range body.Filter.Bool.Must {
		clauses, err := DecodeClauses(raw)
		if err != nil {
			return Filtered{}, fmt.Errorf("must[%d]: %w", i, err)
		}
		f.Must = append(f.Must, clauses...)
	}
	if !jsonutil.IsNull(body.Query) {
		node, err := DecodeNode(body.Query)
		if err != nil {
			return Filtered{}, err
		}
		f.Query = node
	}
	return f, nil
}
