package model

import (
	"github.com/gcbaptista/go-facet-query/internal/jsonutil"
)

// FacetCount is one value/count pair of a facet breakdown.
type FacetCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// FacetCounts maps facet values to counts, keeping first-seen order.
type FacetCounts struct {
	order  []string
	counts map[string]int64
}

// NewFacetCounts returns an empty mapping.
func NewFacetCounts() *FacetCounts {
	return &FacetCounts{counts: make(map[string]int64)}
}

// Set records count for value. A repeated value keeps its first position and
// takes the latest count.
func (f *FacetCounts) Set(value string, count int64) {
	if f.counts == nil {
		f.counts = make(map[string]int64)
	}
	if _, seen := f.counts[value]; !seen {
		f.order = append(f.order, value)
	}
	f.counts[value] = count
}

// Get returns the count for value.
func (f *FacetCounts) Get(value string) (int64, bool) {
	if f == nil {
		return 0, false
	}
	c, ok := f.counts[value]
	return c, ok
}

// Len returns the number of distinct values.
func (f *FacetCounts) Len() int {
	if f == nil {
		return 0
	}
	return len(f.order)
}

// Entries returns the pairs in first-seen order.
func (f *FacetCounts) Entries() []FacetCount {
	if f == nil {
		return nil
	}
	out := make([]FacetCount, 0, len(f.order))
	for _, v := range f.order {
		out = append(out, FacetCount{Value: v, Count: f.counts[v]})
	}
	return out
}

// MarshalJSON renders {"value": count, ...} in first-seen order.
func (f *FacetCounts) MarshalJSON() ([]byte, error) {
	var obj jsonutil.Object
	if f != nil {
		for _, v := range f.order {
			obj.Add(v, f.counts[v])
		}
	}
	return obj.Bytes()
}

// Result is the UI-friendly shape of an engine response.
type Result struct {
	Records []Document              `json:"records"`
	Start   int64                   `json:"start"`
	Found   int64                   `json:"found"`
	Facets  map[string]*FacetCounts `json:"facets"`
}
