// Package filters compiles UI filter selections into engine filter clauses.
package filters

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	internalErrors "github.com/gcbaptista/go-facet-query/internal/errors"
	"github.com/gcbaptista/go-facet-query/internal/metrics"
	"github.com/gcbaptista/go-facet-query/model"
	"github.com/gcbaptista/go-facet-query/query"
)

// Compiler turns active, predefined and fixed filters into must clauses.
type Compiler struct {
	logger  *zap.Logger
	metrics *metrics.Collector
}

// NewCompiler creates a compiler. A nil logger disables logging and a nil
// collector disables metrics.
func NewCompiler(logger *zap.Logger, collector *metrics.Collector) *Compiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compiler{logger: logger, metrics: collector}
}

// Compile returns the clauses for active filters, then predefined filters,
// then the fixed clauses unchanged. Every filtered field must have a facet
// definition; filters on disabled facets are skipped.
func (c *Compiler) Compile(active, predefined *model.FilterSet, fixed []json.RawMessage, defs []model.FacetDefinition) ([]query.Clause, error) {
	var clauses []query.Clause

	for _, set := range []*model.FilterSet{active, predefined} {
		compiled, err := c.compileSet(set, defs)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, compiled...)
	}

	for _, raw := range fixed {
		clauses = append(clauses, query.RawClause(raw))
	}

	return clauses, nil
}

// compileSet compiles one filter set in field insertion order
func (c *Compiler) compileSet(set *model.FilterSet, defs []model.FacetDefinition) ([]query.Clause, error) {
	var clauses []query.Clause

	for _, field := range set.Fields() {
		facet, found := model.FindFacet(defs, field)
		if !found {
			return nil, internalErrors.NewFacetNotFoundError(field)
		}

		if facet.Disabled {
			c.logger.Debug("Skipping filter on disabled facet", zap.String("field", field))
			continue
		}

		value, _ := set.Get(field)
		compiled, err := c.compileFilter(facet, value)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, compiled...)
	}

	return clauses, nil
}

// compileFilter dispatches on the facet type
func (c *Compiler) compileFilter(facet model.FacetDefinition, value model.FilterValue) ([]query.Clause, error) {
	switch facet.Type {
	case model.FacetTypeTerms:
		return termsFilter(facet, value)
	case model.FacetTypeRange, model.FacetTypeDateHistogram:
		bound, err := rangeOf(facet, value)
		if err != nil {
			return nil, err
		}
		return []query.Clause{rangeFilter(facet, bound)}, nil
	case model.FacetTypeGeoDistance:
		bound, err := rangeOf(facet, value)
		if err != nil {
			return nil, err
		}
		return []query.Clause{geoFilter(facet, bound)}, nil
	default:
		c.logger.Warn("Ignoring filter on facet type without a filter shape",
			zap.String("field", facet.Field),
			zap.String("type", string(facet.Type)))
		c.metrics.RecordUnsupportedFacetType(string(facet.Type))
		return nil, nil
	}
}

// termsFilter builds one term clause per value for AND logic, a single terms
// clause for OR logic
func termsFilter(facet model.FacetDefinition, value model.FilterValue) ([]query.Clause, error) {
	if value.IsRange() {
		return nil, internalErrors.NewValidationError(facet.Field, "terms facet expects a list of values, got a range")
	}

	switch facet.EffectiveLogic() {
	case model.LogicAnd:
		clauses := make([]query.Clause, 0, len(value.Values))
		for _, v := range value.Values {
			clauses = append(clauses, query.TermClause{Field: facet.Field, Value: v})
		}
		return clauses, nil
	case model.LogicOr:
		values := append([]any(nil), value.Values...)
		return []query.Clause{query.TermsClause{Field: facet.Field, Values: values}}, nil
	default:
		return nil, internalErrors.NewValidationError(facet.Field, fmt.Sprintf("unknown terms logic '%s' (must be AND or OR)", facet.Logic))
	}
}

func rangeFilter(facet model.FacetDefinition, bound model.Bound) query.Clause {
	return query.RangeClause{Field: facet.Field, LT: bound.To, GTE: bound.From}
}

func geoFilter(facet model.FacetDefinition, bound model.Bound) query.Clause {
	clause := query.GeoDistanceRangeClause{Field: facet.Field, Lon: facet.Lon, Lat: facet.Lat}
	if bound.HasTo() {
		clause.LT = withUnit(bound.To, facet.Unit)
	}
	if bound.HasFrom() {
		clause.GTE = withUnit(bound.From, facet.Unit)
	}
	return clause
}

func rangeOf(facet model.FacetDefinition, value model.FilterValue) (model.Bound, error) {
	if !value.IsRange() {
		return model.Bound{}, internalErrors.NewValidationError(facet.Field, fmt.Sprintf("%s facet expects a {from, to} range", facet.Type))
	}
	return *value.Range, nil
}

func withUnit(distance any, unit string) string {
	return fmt.Sprint(distance) + unit
}
