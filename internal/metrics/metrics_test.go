package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordQueryBuilt()
	c.RecordFacetBuilt("terms")
	c.RecordFacetBuilt("terms")
	c.RecordFacetBuilt("range")
	c.RecordUnsupportedFacetType("polygon")
	c.RecordSerialized()
	c.RecordRestored()
	c.RecordResponseMapped(false)
	c.RecordResponseMapped(true)
	c.RecordSearch(100*time.Millisecond, false)
	c.RecordSearch(300*time.Millisecond, true)

	snap := c.Snapshot()
	assert.Equal(t, int64(1), snap.QueriesBuilt)
	assert.Equal(t, int64(1), snap.QueriesSerialized)
	assert.Equal(t, int64(1), snap.OptionsRestored)
	assert.Equal(t, int64(1), snap.ResponsesMapped)
	assert.Equal(t, int64(1), snap.MalformedResponses)
	assert.Equal(t, int64(1), snap.SearchesFailed)
	assert.Equal(t, map[string]int64{"terms": 2, "range": 1}, snap.FacetsByType)
	assert.Equal(t, map[string]int64{"polygon": 1}, snap.UnsupportedFacetTypes)
	assert.Equal(t, 200*time.Millisecond, snap.AverageSearchTime)

	assert.Equal(t, float64(1), counterValue(t, reg, "facetquery_operations_total", OpBuild))
	assert.Equal(t, float64(2), counterValue(t, reg, "facetquery_operations_total", OpSearch))
	assert.Equal(t, float64(2), counterValue(t, reg, "facetquery_facets_built_total", "terms"))
	assert.Equal(t, float64(1), counterValue(t, reg, "facetquery_malformed_responses_total", ""))
	assert.Equal(t, float64(1), counterValue(t, reg, "facetquery_unsupported_facet_types_total", "polygon"))
}

// counterValue reads a counter from reg; label is the value of its only
// label, or "" for an unlabelled counter.
func counterValue(t *testing.T, reg *prometheus.Registry, name, label string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			labels := m.GetLabel()
			if label == "" && len(labels) == 0 || len(labels) == 1 && labels[0].GetValue() == label {
				return m.GetCounter().GetValue()
			}
		}
	}
	t.Fatalf("counter %s{%s} not found", name, label)
	return 0
}

func TestSnapshotIsACopy(t *testing.T) {
	c := NewCollector(nil)
	c.RecordFacetBuilt("terms")

	snap := c.Snapshot()
	snap.FacetsByType["terms"] = 99

	assert.Equal(t, int64(1), c.Snapshot().FacetsByType["terms"])
}

func TestNilCollector(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.RecordQueryBuilt()
		c.RecordFacetBuilt("terms")
		c.RecordUnsupportedFacetType("x")
		c.RecordSerialized()
		c.RecordRestored()
		c.RecordResponseMapped(true)
		c.RecordSearch(time.Second, false)
	})

	snap := c.Snapshot()
	assert.NotNil(t, snap.FacetsByType)
	assert.Zero(t, snap.QueriesBuilt)
}

func TestCollectorConcurrentUse(t *testing.T) {
	c := NewCollector(nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.RecordQueryBuilt()
				c.RecordFacetBuilt("terms")
				_ = c.Snapshot()
			}
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	assert.Equal(t, int64(1000), snap.QueriesBuilt)
	assert.Equal(t, int64(1000), snap.FacetsByType["terms"])
}
