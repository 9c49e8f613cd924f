package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalErrors "github.com/gcbaptista/go-facet-query/internal/errors"
)

func TestFilterSetKeepsInsertionOrder(t *testing.T) {
	var set FilterSet
	require.NoError(t, json.Unmarshal([]byte(`{"z":["a"],"price":{"from":1,"to":5},"a":"single"}`), &set))

	assert.Equal(t, []string{"z", "price", "a"}, set.Fields())

	price, ok := set.Get("price")
	require.True(t, ok)
	assert.True(t, price.IsRange())

	single, _ := set.Get("a")
	assert.Equal(t, []any{"single"}, single.Values)

	data, err := json.Marshal(&set)
	require.NoError(t, err)
	assert.Equal(t, `{"z":["a"],"price":{"from":1,"to":5},"a":["single"]}`, string(data))
}

func TestFilterValueKeepsNumbers(t *testing.T) {
	var set FilterSet
	require.NoError(t, json.Unmarshal([]byte(`{"id":[9007199254740993],"price":{"from":1.5},"one":42}`), &set))

	id, _ := set.Get("id")
	assert.Equal(t, []any{json.Number("9007199254740993")}, id.Values)

	price, _ := set.Get("price")
	require.True(t, price.IsRange())
	assert.Equal(t, json.Number("1.5"), price.Range.From)
	assert.Nil(t, price.Range.To)

	one, _ := set.Get("one")
	assert.Equal(t, []any{json.Number("42")}, one.Values)

	data, err := json.Marshal(&set)
	require.NoError(t, err)
	assert.Equal(t, `{"id":[9007199254740993],"price":{"from":1.5},"one":[42]}`, string(data))
}

func TestFilterSetSetKeepsPosition(t *testing.T) {
	set := NewFilterSet()
	set.Set("a", TermValues(1))
	set.Set("b", TermValues(2))
	set.Set("a", TermValues(3))

	assert.Equal(t, []string{"a", "b"}, set.Fields())
	v, _ := set.Get("a")
	assert.Equal(t, []any{3}, v.Values)
}

func TestFilterSetNil(t *testing.T) {
	var set *FilterSet
	assert.Zero(t, set.Len())
	assert.Nil(t, set.Fields())
	_, ok := set.Get("a")
	assert.False(t, ok)
}

func TestSearchOptionsJSON(t *testing.T) {
	data := `{
		"q": "cat",
		"sort": [{"year": {"order": "desc"}}, {"title": "asc"}],
		"from": 0,
		"facets": [{"field": "type", "type": "terms", "size": 5, "logic": "or"}],
		"active_filters": {"type": ["book"]},
		"fixed_filters": [{"exists": {"field": "isbn"}}],
		"extra_facets": {"year": {"terms": {"field": "year"}}}
	}`

	var opts SearchOptions
	require.NoError(t, json.Unmarshal([]byte(data), &opts))

	assert.Equal(t, "cat", opts.Q)
	assert.Equal(t, []SortSpec{{Field: "year", Order: "desc"}, {Field: "title", Order: "asc"}}, opts.Sort)
	require.NotNil(t, opts.From)
	assert.Zero(t, *opts.From)
	require.Len(t, opts.Facets, 1)
	assert.Equal(t, LogicOr, opts.Facets[0].EffectiveLogic())
	assert.Equal(t, 1, opts.ActiveFilters.Len())
	require.Len(t, opts.FixedFilters, 1)
	assert.NotEmpty(t, opts.ExtraFacets)
}

func TestSortSpecTakesFirstKey(t *testing.T) {
	for i := 0; i < 20; i++ {
		var spec SortSpec
		require.NoError(t, json.Unmarshal([]byte(`{"year":{"order":"desc"},"title":{"order":"asc"},"rank":"asc"}`), &spec))
		assert.Equal(t, SortSpec{Field: "year", Order: "desc"}, spec)
	}

	var empty SortSpec
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	assert.Equal(t, SortSpec{}, empty)

	var bad SortSpec
	assert.Error(t, json.Unmarshal([]byte(`{"year":{"order":1}}`), &bad))
}

func TestParseFacetType(t *testing.T) {
	for _, name := range []string{"terms", "range", "geo_distance", "statistical", "terms_stats", "date_histogram"} {
		ft, err := ParseFacetType(name)
		require.NoError(t, err)
		assert.Equal(t, FacetType(name), ft)
	}

	_, err := ParseFacetType("polygon")
	require.Error(t, err)
	assert.True(t, errors.Is(err, internalErrors.ErrUnsupportedFacetType))
}

func TestFindFacetFirstMatchWins(t *testing.T) {
	defs := []FacetDefinition{
		{Field: "type", Type: FacetTypeTerms, Size: 1},
		{Field: "type", Type: FacetTypeTerms, Size: 2},
	}
	def, ok := FindFacet(defs, "type")
	require.True(t, ok)
	assert.Equal(t, 1, def.Size)

	_, ok = FindFacet(defs, "other")
	assert.False(t, ok)
}

func TestFacetCounts(t *testing.T) {
	counts := NewFacetCounts()
	counts.Set("red", 3)
	counts.Set("blue", 5)
	counts.Set("red", 4)

	assert.Equal(t, 2, counts.Len())
	data, err := json.Marshal(counts)
	require.NoError(t, err)
	assert.Equal(t, `{"red":4,"blue":5}`, string(data))

	result := Result{Records: []Document{}, Facets: map[string]*FacetCounts{"color": counts}}
	data, err = json.Marshal(result)
	require.NoError(t, err)
	assert.Equal(t, `{"records":[],"start":0,"found":0,"facets":{"color":{"red":4,"blue":5}}}`, string(data))
}

func TestDocumentProjection(t *testing.T) {
	doc := Document{"fields": map[string]interface{}{"id": "2"}}
	projected, ok := doc.Projection()
	require.True(t, ok)
	assert.Equal(t, Document{"id": "2"}, projected)

	id, ok := projected.GetDocumentID()
	assert.True(t, ok)
	assert.Equal(t, "2", id)

	_, ok = Document{"id": "1"}.Projection()
	assert.False(t, ok)
}
