package model

import (
	"strings"

	internalErrors "github.com/gcbaptista/go-facet-query/internal/errors"
)

// FacetType names the aggregation a facet definition asks the engine for.
type FacetType string

const (
	FacetTypeTerms         FacetType = "terms"
	FacetTypeRange         FacetType = "range"
	FacetTypeGeoDistance   FacetType = "geo_distance"
	FacetTypeStatistical   FacetType = "statistical"
	FacetTypeTermsStats    FacetType = "terms_stats"
	FacetTypeDateHistogram FacetType = "date_histogram"
)

// Logic values for terms facets. AND compiles one term clause per selected
// value, OR compiles a single terms clause carrying all of them.
const (
	LogicAnd = "AND"
	LogicOr  = "OR"
)

var knownFacetTypes = map[FacetType]struct{}{
	FacetTypeTerms:         {},
	FacetTypeRange:         {},
	FacetTypeGeoDistance:   {},
	FacetTypeStatistical:   {},
	FacetTypeTermsStats:    {},
	FacetTypeDateHistogram: {},
}

// Known reports whether t is one of the supported facet types.
func (t FacetType) Known() bool {
	_, ok := knownFacetTypes[t]
	return ok
}

// ParseFacetType validates a facet type name.
func ParseFacetType(name string) (FacetType, error) {
	t := FacetType(strings.TrimSpace(name))
	if !t.Known() {
		return "", internalErrors.NewUnsupportedFacetTypeError(name)
	}
	return t, nil
}

// Bound is a {from, to} pair. A nil end means the bound is not set.
type Bound struct {
	From any `json:"from,omitempty"`
	To   any `json:"to,omitempty"`
}

// HasFrom reports whether the lower bound is set.
func (b Bound) HasFrom() bool { return b.From != nil }

// HasTo reports whether the upper bound is set.
func (b Bound) HasTo() bool { return b.To != nil }

// FacetDefinition describes one facet of the UI. Field is the lookup key.
type FacetDefinition struct {
	Field      string    `json:"field"`
	Type       FacetType `json:"type"`
	Size       int       `json:"size,omitempty"`
	Order      string    `json:"order,omitempty"`
	Disabled   bool      `json:"disabled,omitempty"`
	Logic      string    `json:"logic,omitempty"` // terms only: "AND" (default) or "OR"
	Unit       string    `json:"unit,omitempty"`  // geo_distance
	Lon        any       `json:"lon,omitempty"`   // geo_distance
	Lat        any       `json:"lat,omitempty"`   // geo_distance
	Interval   string    `json:"interval,omitempty"`
	ValueField string    `json:"value_field,omitempty"`
	Range      []Bound   `json:"range,omitempty"`
	Distance   []Bound   `json:"distance,omitempty"`
}

// EffectiveLogic returns the terms logic, defaulting to AND.
func (d FacetDefinition) EffectiveLogic() string {
	if d.Logic == "" {
		return LogicAnd
	}
	return strings.ToUpper(d.Logic)
}

// FindFacet returns the first definition whose Field equals field.
func FindFacet(defs []FacetDefinition, field string) (FacetDefinition, bool) {
	for _, def := range defs {
		if def.Field == field {
			return def, true
		}
	}
	return FacetDefinition{}, false
}
