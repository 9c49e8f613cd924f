// Package testing provides fixtures and helpers for testing the translator.
package testing

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/gcbaptista/go-facet-query/config"
	"github.com/gcbaptista/go-facet-query/internal/engine"
	"github.com/gcbaptista/go-facet-query/internal/metrics"
	"github.com/gcbaptista/go-facet-query/model"
)

// SampleFacets returns one definition of every facet type.
func SampleFacets() []model.FacetDefinition {
	return []model.FacetDefinition{
		{Field: "type", Type: model.FacetTypeTerms, Size: 5},
		{Field: "tags", Type: model.FacetTypeTerms, Size: 10, Logic: model.LogicOr, Order: "count"},
		{Field: "price", Type: model.FacetTypeRange, Range: []model.Bound{{To: 10}, {From: 10, To: 50}, {From: 50}}},
		{Field: "location", Type: model.FacetTypeGeoDistance, Unit: "km", Lon: -0.12, Lat: 51.5, Distance: []model.Bound{{To: 10}, {From: 10}}},
		{Field: "rating", Type: model.FacetTypeStatistical},
		{Field: "author", Type: model.FacetTypeTermsStats, Size: 3, ValueField: "sales"},
		{Field: "published", Type: model.FacetTypeDateHistogram, Interval: "year"},
	}
}

// SampleOptions returns options with free text, filters of every compiled
// shape and paging.
func SampleOptions() model.SearchOptions {
	active := model.NewFilterSet()
	active.Set("type", model.TermValues("book", "ebook"))
	active.Set("tags", model.TermValues("fiction", "classic"))
	active.Set("price", model.RangeValue(10, 50))

	return model.SearchOptions{
		Q:               "cat",
		SearchField:     "title",
		DefaultOperator: "AND",
		Sort:            []model.SortSpec{{Field: "year", Order: "desc"}},
		PageSize:        20,
		From:            model.IntPtr(40),
		Facets:          SampleFacets(),
		ActiveFilters:   active,
	}
}

// SampleEngineResponse is a response body as the engine returns it.
const SampleEngineResponse = `{
  "responseHeader": {"status": 0, "QTime": 3},
  "response": {
    "numFound": 2,
    "start": 0,
    "docs": [
      {"id": "1", "title": "The Cat"},
      {"fields": {"id": "2", "title": "Cat's Cradle"}}
    ]
  },
  "facet_counts": {
    "facet_fields": {
      "type": ["book", 3, "ebook", 5]
    }
  }
}`

// CreateTestEngine creates an engine with a test logger and a collector on
// a private registry.
func CreateTestEngine(t *testing.T, settings *config.Settings, opts ...engine.Option) (*engine.Engine, *metrics.Collector, *prometheus.Registry) {
	t.Helper()
	if settings == nil {
		settings = config.Default()
	}
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)
	eng := engine.NewEngine(settings, zaptest.NewLogger(t), collector, opts...)
	return eng, collector, registry
}

// SearchEndpoint is a stub search engine that records the query strings it
// receives.
type SearchEndpoint struct {
	Server *httptest.Server

	mu      sync.Mutex
	queries []string
}

// NewSearchEndpoint starts a stub that answers every request with status
// and body. It is closed when the test ends.
func NewSearchEndpoint(t *testing.T, status int, body string) *SearchEndpoint {
	t.Helper()
	ep := &SearchEndpoint{}
	ep.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ep.mu.Lock()
		ep.queries = append(ep.queries, r.URL.RawQuery)
		ep.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ep.Server.Close)
	return ep
}

// URL returns the base search URL, ready for a query string to be appended.
func (ep *SearchEndpoint) URL() string {
	return ep.Server.URL + "/select?"
}

// Queries returns the raw query strings received so far.
func (ep *SearchEndpoint) Queries() []string {
	ep.mu.Lock()
	defer ep.mu.Unlock()
	return append([]string(nil), ep.queries...)
}

// AssertSampleResult verifies the mapping of SampleEngineResponse.
func AssertSampleResult(t *testing.T, result *model.Result) {
	t.Helper()
	require.NotNil(t, result)
	assert.Equal(t, int64(2), result.Found)
	assert.Equal(t, int64(0), result.Start)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "The Cat", result.Records[0]["title"])
	assert.Equal(t, "Cat's Cradle", result.Records[1]["title"], "projected document should be flattened")

	require.Contains(t, result.Facets, "type")
	assert.Equal(t, []model.FacetCount{{Value: "book", Count: 3}, {Value: "ebook", Count: 5}}, result.Facets["type"].Entries())
}
