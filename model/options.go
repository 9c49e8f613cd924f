package model

import (
	"encoding/json"

	"github.com/gcbaptista/go-facet-query/internal/jsonutil"
)

// Fuzzify modes accepted by SearchOptions.DefaultFreetextFuzzify.
const (
	FuzzifyNone     = ""
	FuzzifyWildcard = "*"
	FuzzifyFuzzy    = "~"
)

// Defaults applied by the query builder when the options leave them unset.
const (
	DefaultPageSize       = 100
	DefaultQueryParameter = "q"
)

// SortSpec orders results on one field.
type SortSpec struct {
	Field string
	Order string
}

// MarshalJSON renders {"<field>": {"order": "<order>"}}.
func (s SortSpec) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]map[string]string{
		s.Field: {"order": s.Order},
	})
}

// UnmarshalJSON reads {"<field>": {"order": "<order>"}}; a bare string value
// is accepted as the order. Only the first key of the object is used.
func (s *SortSpec) UnmarshalJSON(data []byte) error {
	members, err := jsonutil.Members(data)
	if err != nil {
		return err
	}
	if len(members) == 0 {
		return nil
	}

	first := members[0]
	var order struct {
		Order string `json:"order"`
	}
	if err := json.Unmarshal(first.Value, &order); err != nil {
		var bare string
		if err2 := json.Unmarshal(first.Value, &bare); err2 != nil {
			return err
		}
		order.Order = bare
	}
	s.Field = first.Key
	s.Order = order.Order
	return nil
}

// SearchOptions is the UI-facing description of a search.
type SearchOptions struct {
	Q                      string            `json:"q,omitempty"`
	SearchField            string            `json:"searchfield,omitempty"`
	DefaultOperator        string            `json:"default_operator,omitempty"`
	Sort                   []SortSpec        `json:"sort,omitempty"`
	PageSize               int               `json:"page_size,omitempty"`
	From                   *int              `json:"from,omitempty"`
	Facets                 []FacetDefinition `json:"facets,omitempty"`
	ActiveFilters          *FilterSet        `json:"active_filters,omitempty"`
	PredefinedFilters      *FilterSet        `json:"predefined_filters,omitempty"`
	FixedFilters           []json.RawMessage `json:"fixed_filters,omitempty"`
	ExtraFacets            json.RawMessage   `json:"extra_facets,omitempty"`
	QueryParameter         string            `json:"query_parameter,omitempty"`
	SolrFacetInflation     int               `json:"solr_facet_inflation,omitempty"`
	DefaultFreetextFuzzify string            `json:"default_freetext_fuzzify,omitempty"`
	Fields                 any               `json:"fields,omitempty"`
	PartialFields          any               `json:"partial_fields,omitempty"`
	ScriptFields           any               `json:"script_fields,omitempty"`

	// SelectedOperators records the logic recovered for each filtered field
	// when options are rebuilt from a query.
	SelectedOperators map[string]string `json:"selected_operators,omitempty"`
}

// IntPtr is a convenience for setting SearchOptions.From.
func IntPtr(v int) *int {
	return &v
}
