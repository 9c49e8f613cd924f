// Package metrics counts translation work: queries built and serialized,
// options restored, responses mapped, and facet types seen.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation labels.
const (
	OpBuild     = "build"
	OpSerialize = "serialize"
	OpRestore   = "restore"
	OpMap       = "map"
	OpSearch    = "search"
)

// Snapshot is a copy of the counters, safe to serialize
type Snapshot struct {
	QueriesBuilt          int64            `json:"queries_built"`
	QueriesSerialized     int64            `json:"queries_serialized"`
	OptionsRestored       int64            `json:"options_restored"`
	ResponsesMapped       int64            `json:"responses_mapped"`
	MalformedResponses    int64            `json:"malformed_responses"`
	SearchesFailed        int64            `json:"searches_failed"`
	FacetsByType          map[string]int64 `json:"facets_by_type"`
	UnsupportedFacetTypes map[string]int64 `json:"unsupported_facet_types"`
	AverageSearchTime     time.Duration    `json:"average_search_time_ns"`
	LastUpdated           time.Time        `json:"last_updated"`
}

// Collector tracks counters in memory and mirrors them to Prometheus.
// All methods are safe on a nil *Collector and do nothing.
type Collector struct {
	mu                    sync.RWMutex
	queriesBuilt          int64
	queriesSerialized     int64
	optionsRestored       int64
	responsesMapped       int64
	malformedResponses    int64
	searchesFailed        int64
	searches              int64
	totalSearchTime       time.Duration
	facetsByType          map[string]int64
	unsupportedFacetTypes map[string]int64
	lastUpdated           time.Time

	operations  *prometheus.CounterVec
	facets      *prometheus.CounterVec
	unsupported *prometheus.CounterVec
	malformed   prometheus.Counter
	searchTime  prometheus.Histogram
}

// NewCollector creates a collector whose Prometheus series are registered on
// reg. A nil reg keeps the series unregistered.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		facetsByType:          make(map[string]int64),
		unsupportedFacetTypes: make(map[string]int64),
		lastUpdated:           time.Now(),

		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "facetquery_operations_total",
				Help: "Total number of translation operations by kind",
			},
			[]string{"operation"},
		),
		facets: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "facetquery_facets_built_total",
				Help: "Total number of facet specs built by facet type",
			},
			[]string{"type"},
		),
		unsupported: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "facetquery_unsupported_facet_types_total",
				Help: "Facet definitions skipped because their type has no DSL shape",
			},
			[]string{"type"},
		),
		malformed: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "facetquery_malformed_responses_total",
				Help: "Engine responses rejected by the result mapper",
			},
		),
		searchTime: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "facetquery_search_duration_seconds",
				Help:    "Round trip time of searches against the engine",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// RecordQueryBuilt increments the built-query counter
func (c *Collector) RecordQueryBuilt() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.queriesBuilt++
	c.lastUpdated = time.Now()
	c.operations.WithLabelValues(OpBuild).Inc()
}

// RecordFacetBuilt counts a facet spec of the given type
func (c *Collector) RecordFacetBuilt(facetType string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.facetsByType[facetType]++
	c.lastUpdated = time.Now()
	c.facets.WithLabelValues(facetType).Inc()
}

// RecordUnsupportedFacetType counts a skipped facet type
func (c *Collector) RecordUnsupportedFacetType(facetType string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.unsupportedFacetTypes[facetType]++
	c.lastUpdated = time.Now()
	c.unsupported.WithLabelValues(facetType).Inc()
}

// RecordSerialized increments the serialized-query counter
func (c *Collector) RecordSerialized() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.queriesSerialized++
	c.lastUpdated = time.Now()
	c.operations.WithLabelValues(OpSerialize).Inc()
}

// RecordRestored increments the restored-options counter
func (c *Collector) RecordRestored() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.optionsRestored++
	c.lastUpdated = time.Now()
	c.operations.WithLabelValues(OpRestore).Inc()
}

// RecordResponseMapped records a mapping attempt
func (c *Collector) RecordResponseMapped(malformed bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if malformed {
		c.malformedResponses++
		c.malformed.Inc()
	} else {
		c.responsesMapped++
		c.operations.WithLabelValues(OpMap).Inc()
	}
	c.lastUpdated = time.Now()
}

// RecordSearch records a round trip to the engine
func (c *Collector) RecordSearch(elapsed time.Duration, failed bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.searches++
	c.totalSearchTime += elapsed
	if failed {
		c.searchesFailed++
	}
	c.lastUpdated = time.Now()
	c.operations.WithLabelValues(OpSearch).Inc()
	c.searchTime.Observe(elapsed.Seconds())
}

// Snapshot returns a copy of the current counters
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{FacetsByType: map[string]int64{}, UnsupportedFacetTypes: map[string]int64{}}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		QueriesBuilt:          c.queriesBuilt,
		QueriesSerialized:     c.queriesSerialized,
		OptionsRestored:       c.optionsRestored,
		ResponsesMapped:       c.responsesMapped,
		MalformedResponses:    c.malformedResponses,
		SearchesFailed:        c.searchesFailed,
		FacetsByType:          make(map[string]int64, len(c.facetsByType)),
		UnsupportedFacetTypes: make(map[string]int64, len(c.unsupportedFacetTypes)),
		LastUpdated:           c.lastUpdated,
	}
	for k, v := range c.facetsByType {
		snap.FacetsByType[k] = v
	}
	for k, v := range c.unsupportedFacetTypes {
		snap.UnsupportedFacetTypes[k] = v
	}
	if c.searches > 0 {
		snap.AverageSearchTime = c.totalSearchTime / time.Duration(c.searches)
	}
	return snap
}
