package filters

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalErrors "github.com/gcbaptista/go-facet-query/internal/errors"
	"github.com/gcbaptista/go-facet-query/internal/metrics"
	"github.com/gcbaptista/go-facet-query/model"
	"github.com/gcbaptista/go-facet-query/query"
)

var testFacets = []model.FacetDefinition{
	{Field: "type", Type: model.FacetTypeTerms, Logic: model.LogicAnd},
	{Field: "tags", Type: model.FacetTypeTerms, Logic: model.LogicOr},
	{Field: "price", Type: model.FacetTypeRange},
	{Field: "published", Type: model.FacetTypeDateHistogram, Interval: "year"},
	{Field: "location", Type: model.FacetTypeGeoDistance, Unit: "km", Lon: -0.12, Lat: 51.5},
	{Field: "rating", Type: model.FacetTypeStatistical},
	{Field: "hidden", Type: model.FacetTypeTerms, Disabled: true},
}

func filterSet(pairs ...any) *model.FilterSet {
	set := model.NewFilterSet()
	for i := 0; i < len(pairs); i += 2 {
		set.Set(pairs[i].(string), pairs[i+1].(model.FilterValue))
	}
	return set
}

func marshalClauses(t *testing.T, clauses []query.Clause) string {
	t.Helper()
	data, err := json.Marshal(clauses)
	require.NoError(t, err)
	return string(data)
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name   string
		active *model.FilterSet
		want   string
	}{
		{
			name:   "AND terms give one term clause per value",
			active: filterSet("type", model.TermValues("book", "ebook")),
			want:   `[{"term":{"type":"book"}},{"term":{"type":"ebook"}}]`,
		},
		{
			name:   "OR terms give one terms clause",
			active: filterSet("tags", model.TermValues("fiction", "classic")),
			want:   `[{"terms":{"tags":["fiction","classic"]}}]`,
		},
		{
			name:   "range with both bounds",
			active: filterSet("price", model.RangeValue(10, 50)),
			want:   `[{"range":{"price":{"lt":50,"gte":10}}}]`,
		},
		{
			name:   "range with only a lower bound omits lt",
			active: filterSet("price", model.RangeValue(10, nil)),
			want:   `[{"range":{"price":{"gte":10}}}]`,
		},
		{
			name:   "date histogram compiles like a range",
			active: filterSet("published", model.RangeValue("2001-01-01", "2002-01-01")),
			want:   `[{"range":{"published":{"lt":"2002-01-01","gte":"2001-01-01"}}}]`,
		},
		{
			name:   "geo distance suffixes the unit and adds the point",
			active: filterSet("location", model.RangeValue(nil, 10)),
			want:   `[{"geo_distance_range":{"lt":"10km","location":[-0.12,51.5]}}]`,
		},
		{
			name:   "disabled facets are skipped",
			active: filterSet("hidden", model.TermValues("x"), "type", model.TermValues("book")),
			want:   `[{"term":{"type":"book"}}]`,
		},
		{
			name:   "field insertion order is kept",
			active: filterSet("price", model.RangeValue(1, nil), "type", model.TermValues("book")),
			want:   `[{"range":{"price":{"gte":1}}},{"term":{"type":"book"}}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCompiler(nil, nil)
			clauses, err := c.Compile(tt.active, nil, nil, testFacets)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, marshalClauses(t, clauses))
			assert.Equal(t, tt.want, marshalClauses(t, clauses), "key order must be stable")
		})
	}
}

func TestCompileOrdersActivePredefinedFixed(t *testing.T) {
	active := filterSet("type", model.TermValues("book"))
	predefined := filterSet("tags", model.TermValues("classic"))
	fixed := []json.RawMessage{json.RawMessage(`{"exists":{"field":"isbn"}}`)}

	clauses, err := NewCompiler(nil, nil).Compile(active, predefined, fixed, testFacets)
	require.NoError(t, err)

	assert.Equal(t,
		`[{"term":{"type":"book"}},{"terms":{"tags":["classic"]}},{"exists":{"field":"isbn"}}]`,
		marshalClauses(t, clauses))
	assert.Equal(t, "exists", clauses[2].Tag())
}

func TestCompileEmpty(t *testing.T) {
	clauses, err := NewCompiler(nil, nil).Compile(nil, nil, nil, testFacets)
	require.NoError(t, err)
	assert.Empty(t, clauses)
}

func TestCompileMissingFacet(t *testing.T) {
	_, err := NewCompiler(nil, nil).Compile(filterSet("author", model.TermValues("x")), nil, nil, testFacets)
	require.Error(t, err)
	assert.True(t, errors.Is(err, internalErrors.ErrFacetNotFound))

	var facetErr *internalErrors.FacetNotFoundError
	require.True(t, errors.As(err, &facetErr))
	assert.Equal(t, "author", facetErr.Field)
}

func TestCompileShapeMismatch(t *testing.T) {
	tests := []struct {
		name   string
		active *model.FilterSet
		facets []model.FacetDefinition
	}{
		{"terms given a range", filterSet("type", model.RangeValue(1, 2)), testFacets},
		{"range given values", filterSet("price", model.TermValues(1, 2)), testFacets},
		{"geo given values", filterSet("location", model.TermValues(5)), testFacets},
		{
			"unknown terms logic",
			filterSet("type", model.TermValues("book")),
			[]model.FacetDefinition{{Field: "type", Type: model.FacetTypeTerms, Logic: "XOR"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCompiler(nil, nil).Compile(tt.active, nil, nil, tt.facets)
			require.Error(t, err)
			assert.True(t, errors.Is(err, internalErrors.ErrInvalidInput))
		})
	}
}

func TestCompileEmptyLogicDefaultsToAnd(t *testing.T) {
	facets := []model.FacetDefinition{{Field: "type", Type: model.FacetTypeTerms}}
	clauses, err := NewCompiler(nil, nil).Compile(filterSet("type", model.TermValues("a", "b")), nil, nil, facets)
	require.NoError(t, err)
	assert.Len(t, clauses, 2)
}

func TestCompileUnsupportedTypeIsRecorded(t *testing.T) {
	collector := metrics.NewCollector(nil)
	c := NewCompiler(nil, collector)

	clauses, err := c.Compile(filterSet("rating", model.RangeValue(1, 5)), nil, nil, testFacets)
	require.NoError(t, err)
	assert.Empty(t, clauses)
	assert.Equal(t, int64(1), collector.Snapshot().UnsupportedFacetTypes["statistical"])
}
