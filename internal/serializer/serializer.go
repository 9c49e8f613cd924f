// Package serializer renders a structured query as the engine's HTTP GET
// query string.
package serializer

import (
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/gcbaptista/go-facet-query/model"
	"github.com/gcbaptista/go-facet-query/query"
)

// CatchAll is sent when there is no free text to search for.
const CatchAll = "*:*"

// Serializer renders queries. The paging table maps the keys of
// Query.Paging to engine parameter names; unmapped keys are sent as is.
type Serializer struct {
	pagingParams map[string]string
}

// New creates a serializer with a copy of the paging-parameter table.
func New(pagingParams map[string]string) *Serializer {
	table := make(map[string]string, len(pagingParams))
	for k, v := range pagingParams {
		table[k] = v
	}
	return &Serializer{pagingParams: table}
}

// Serialize builds the query string. Parameters always come out in the
// same order: wt, default params, paging, rows, start, facet fields and
// limits, sort, facet=on, then the free-text parameter last. Values are not
// URL-escaped.
func (s *Serializer) Serialize(q *query.Query) string {
	if q == nil {
		q = &query.Query{}
	}

	var b strings.Builder
	b.WriteString("wt=json&")

	for _, p := range q.DefaultURLParams {
		writeParam(&b, p.Key, p.Value)
	}

	for _, p := range q.Paging {
		writeParam(&b, s.pagingName(p.Key), p.Value)
	}
	writeParam(&b, "rows", strconv.Itoa(q.PageSize))
	start := 0
	if q.From != nil {
		start = *q.From
	}
	writeParam(&b, "start", strconv.Itoa(start))

	for _, name := range q.Facets.Names() {
		spec, _ := q.Facets.Get(name)
		field := spec.FacetField()
		writeParam(&b, "facet.field", field)
		if size := spec.FacetSize(); size > 0 {
			writeParam(&b, "f."+field+".facet.limit", strconv.Itoa(size))
		}
	}

	if len(q.Sort) > 0 {
		writeParam(&b, "sort", sortParam(q.Sort))
	}
	if q.Facets.Len() > 0 {
		b.WriteString("facet=on&")
	}

	param := q.QueryParameter
	if param == "" {
		param = model.DefaultQueryParameter
	}
	b.WriteString(param)
	b.WriteByte('=')
	b.WriteString(FreeTextParam(q))

	return b.String()
}

func (s *Serializer) pagingName(key string) string {
	if name, ok := s.pagingParams[key]; ok && name != "" {
		return name
	}
	return key
}

func writeParam(b *strings.Builder, key, value string) {
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(value)
	b.WriteByte('&')
}

func sortParam(sort query.SortList) string {
	parts := make([]string, 0, len(sort))
	for _, spec := range sort {
		parts = append(parts, spec.Field+"+"+spec.Order)
	}
	return strings.Join(parts, ",")
}

// FreeTextParam assembles the value of the free-text parameter: the
// selected filter chips, then the query text, with a trailing wildcard.
// Without query text the catch-all query is used.
func FreeTextParam(q *query.Query) string {
	text, set := queryText(q)

	var b strings.Builder
	for _, chip := range q.SelectedFilters {
		b.WriteString(chip.Field)
		b.WriteString(`:"`)
		b.WriteString(chip.Value)
		b.WriteString(`" AND `)
	}
	b.WriteString(text)

	out := b.String()
	if !strings.HasSuffix(out, "*") {
		out += "*"
	}
	out = strings.TrimSuffix(out, " AND ")

	if out == "" || !set {
		return CatchAll
	}
	return out
}

// queryText returns the query_string text and whether there is any
func queryText(q *query.Query) (string, bool) {
	node, _ := q.FreeText()
	qs, ok := node.(query.QueryString)
	if !ok || qs.Query == "" {
		return "", false
	}
	return qs.Query, true
}

// Chips turns the term selections of filters into free-text chips, one per
// value, in field order. Range selections have no chip form, and fields whose
// facet definition is disabled are left out.
func Chips(filters *model.FilterSet, defs []model.FacetDefinition) []query.Chip {
	var chips []query.Chip
	for _, field := range filters.Fields() {
		if facet, found := model.FindFacet(defs, field); found && facet.Disabled {
			continue
		}
		value, _ := filters.Get(field)
		if value.IsRange() {
			continue
		}
		for _, v := range value.Values {
			chips = append(chips, query.Chip{Field: field, Value: cast.ToString(v)})
		}
	}
	return chips
}
