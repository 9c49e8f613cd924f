// Package reverse rebuilds search options from a structured query, e.g. one
// restored from a bookmarked URL. The inverse is partial: facet inflation,
// fixed filters and extra facets cannot be recovered.
package reverse

import (
	"encoding/json"
	"fmt"
	"net/url"

	internalErrors "github.com/gcbaptista/go-facet-query/internal/errors"
	"github.com/gcbaptista/go-facet-query/internal/querystring"
	"github.com/gcbaptista/go-facet-query/model"
	"github.com/gcbaptista/go-facet-query/query"
)

// DefaultSourceParam is the URL parameter carrying the query JSON.
const DefaultSourceParam = "source"

// ParseOptions recovers the options a query was built from. Every filter
// clause lands in ActiveFilters, with the AND/OR logic of term and terms
// clauses recorded in SelectedOperators.
func ParseOptions(q *query.Query) model.SearchOptions {
	var opts model.SearchOptions
	if q == nil {
		return opts
	}

	if q.From != nil {
		from := *q.From
		opts.From = &from
	}
	if q.PageSize != 0 {
		opts.PageSize = q.PageSize
	}
	if len(q.Sort) > 0 {
		opts.Sort = append([]model.SortSpec(nil), q.Sort...)
	}

	node, clauses := q.FreeText()
	if len(clauses) > 0 {
		opts.ActiveFilters = model.NewFilterSet()
		opts.SelectedOperators = make(map[string]string)
	}
	for _, clause := range clauses {
		applyClause(&opts, clause)
	}

	switch n := node.(type) {
	case query.QueryString:
		opts.Q = querystring.Unescape(n.Query)
		opts.SearchField = n.DefaultField
		opts.DefaultOperator = n.DefaultOperator
	case query.MatchAll:
		opts.Q = ""
	}

	return opts
}

func applyClause(opts *model.SearchOptions, clause query.Clause) {
	active := opts.ActiveFilters

	switch c := clause.(type) {
	case query.TermClause:
		opts.SelectedOperators[c.Field] = model.LogicAnd
		current, _ := active.Get(c.Field)
		active.Set(c.Field, model.FilterValue{Values: append(current.Values, c.Value)})
	case query.TermsClause:
		opts.SelectedOperators[c.Field] = model.LogicOr
		current, _ := active.Get(c.Field)
		active.Set(c.Field, model.FilterValue{Values: append(current.Values, c.Values...)})
	case query.RangeClause:
		active.Set(c.Field, model.RangeValue(c.GTE, c.LT))
	case query.GeoDistanceRangeClause:
		active.Set(c.Field, model.RangeValue(stripUnit(c.GTE), stripUnit(c.LT)))
	}
	// raw clauses come from fixed filters and have no option counterpart
}

// stripUnit removes the distance unit from a geo bound. Numeric leftovers
// come back as json.Number so the bound keeps its number type.
func stripUnit(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	bare := querystring.StripDistanceUnit(s)
	if isNumber(bare) {
		return json.Number(bare)
	}
	return bare
}

func isNumber(s string) bool {
	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) {
		return false
	}
	return json.Valid([]byte(s))
}

// ParseOptionsJSON decodes a structured query and recovers its options.
func ParseOptionsJSON(data []byte) (model.SearchOptions, error) {
	var q query.Query
	if err := json.Unmarshal(data, &q); err != nil {
		return model.SearchOptions{}, internalErrors.NewValidationError("source", fmt.Sprintf("invalid query: %v", err))
	}
	return ParseOptions(&q), nil
}

// ParseOptionsURL reads the query JSON from the param parameter of rawURL
// (DefaultSourceParam when empty) and recovers its options.
func ParseOptionsURL(rawURL, param string) (model.SearchOptions, error) {
	if param == "" {
		param = DefaultSourceParam
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return model.SearchOptions{}, internalErrors.NewValidationError("url", err.Error())
	}
	source := u.Query().Get(param)
	if source == "" {
		return model.SearchOptions{}, internalErrors.NewValidationError(param, "parameter is missing or empty")
	}
	return ParseOptionsJSON([]byte(source))
}

// Parser adapts ParseOptions to services.OptionsParser.
type Parser struct{}

func (Parser) ParseOptions(q *query.Query) model.SearchOptions {
	return ParseOptions(q)
}
