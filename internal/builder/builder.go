// Package builder assembles the structured engine query from search options
// and facet definitions.
package builder

import (
	"go.uber.org/zap"

	internalErrors "github.com/gcbaptista/go-facet-query/internal/errors"
	"github.com/gcbaptista/go-facet-query/internal/filters"
	"github.com/gcbaptista/go-facet-query/internal/metrics"
	"github.com/gcbaptista/go-facet-query/internal/querystring"
	"github.com/gcbaptista/go-facet-query/model"
	"github.com/gcbaptista/go-facet-query/query"
)

// BuildOption adjusts a single Build call.
type BuildOption func(*buildConfig)

type buildConfig struct {
	includeFacets bool
	includeFields bool
}

// WithoutFacets leaves the facets key out of the query.
func WithoutFacets() BuildOption {
	return func(c *buildConfig) { c.includeFacets = false }
}

// WithoutFields leaves the fields, partial_fields and script_fields keys out.
func WithoutFields() BuildOption {
	return func(c *buildConfig) { c.includeFields = false }
}

// Builder turns SearchOptions into a query.Query.
type Builder struct {
	logger   *zap.Logger
	metrics  *metrics.Collector
	compiler *filters.Compiler
}

// New creates a builder. Nil logger and collector are allowed.
func New(logger *zap.Logger, collector *metrics.Collector) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		logger:   logger,
		metrics:  collector,
		compiler: filters.NewCompiler(logger, collector),
	}
}

// Build compiles the filters, wraps the free-text clause and attaches sort,
// paging, projections and facet specs. opts is not modified.
func (b *Builder) Build(opts model.SearchOptions, options ...BuildOption) (*query.Query, error) {
	cfg := buildConfig{includeFacets: true, includeFields: true}
	for _, opt := range options {
		opt(&cfg)
	}

	clauses, err := b.compiler.Compile(opts.ActiveFilters, opts.PredefinedFilters, opts.FixedFilters, opts.Facets)
	if err != nil {
		return nil, err
	}

	q := &query.Query{
		Query:          rootNode(freeText(opts), clauses),
		Sort:           append(query.SortList(nil), opts.Sort...),
		PageSize:       opts.PageSize,
		QueryParameter: opts.QueryParameter,
	}
	if q.PageSize <= 0 {
		q.PageSize = model.DefaultPageSize
	}
	if q.QueryParameter == "" {
		q.QueryParameter = model.DefaultQueryParameter
	}
	if opts.From != nil {
		from := *opts.From
		q.From = &from
	}

	if cfg.includeFields {
		q.Fields = placeholder(opts.Fields)
		q.PartialFields = placeholder(opts.PartialFields)
		q.ScriptFields = placeholder(opts.ScriptFields)
	}

	if cfg.includeFacets {
		facets, err := b.facets(opts)
		if err != nil {
			return nil, err
		}
		q.Facets = facets
	}

	b.metrics.RecordQueryBuilt()
	b.logger.Debug("Built query",
		zap.Int("clauses", len(clauses)),
		zap.Int("facets", q.Facets.Len()),
		zap.Bool("free_text", opts.Q != ""))

	return q, nil
}

func freeText(opts model.SearchOptions) query.Node {
	if opts.Q == "" {
		return query.MatchAll{}
	}
	return query.QueryString{
		Query:           querystring.Fuzzify(opts.Q, opts.DefaultFreetextFuzzify),
		DefaultField:    opts.SearchField,
		DefaultOperator: opts.DefaultOperator,
	}
}

func rootNode(text query.Node, clauses []query.Clause) query.Node {
	if len(clauses) == 0 {
		return text
	}
	return query.Filtered{Must: clauses, Query: text}
}

// placeholder keeps projection keys present as "" when unset
func placeholder(v any) any {
	if v == nil {
		return ""
	}
	return v
}

// facets builds one spec per enabled definition, sized with the shard
// inflation, then overlays the extra facets verbatim.
func (b *Builder) facets(opts model.SearchOptions) (*query.FacetSet, error) {
	set := query.NewFacetSet()

	for _, def := range opts.Facets {
		if def.Disabled {
			continue
		}
		size := def.Size + opts.SolrFacetInflation

		spec, ok := facetSpec(def, size)
		if !ok {
			b.logger.Warn("Skipping facet with unsupported type",
				zap.String("field", def.Field),
				zap.String("type", string(def.Type)))
			b.metrics.RecordUnsupportedFacetType(string(def.Type))
			continue
		}
		b.metrics.RecordFacetBuilt(string(def.Type))
		set.Set(def.Field, spec)
	}

	if len(opts.ExtraFacets) > 0 {
		extra, err := query.RawFacetSet(opts.ExtraFacets)
		if err != nil {
			return nil, internalErrors.NewValidationError("extra_facets", err.Error())
		}
		set.Merge(extra)
	}

	return set, nil
}

func facetSpec(def model.FacetDefinition, size int) (query.FacetSpec, bool) {
	switch def.Type {
	case model.FacetTypeTerms:
		return query.TermsFacet{Field: def.Field, Size: size, Order: def.Order}, true
	case model.FacetTypeRange:
		return query.RangeFacet{Field: def.Field, Ranges: copyBounds(def.Range)}, true
	case model.FacetTypeGeoDistance:
		return query.GeoDistanceFacet{
			Field:  def.Field,
			Lon:    def.Lon,
			Lat:    def.Lat,
			Unit:   def.Unit,
			Ranges: copyBounds(def.Distance),
		}, true
	case model.FacetTypeStatistical:
		return query.StatisticalFacet{Field: def.Field}, true
	case model.FacetTypeTermsStats:
		return query.TermsStatsFacet{KeyField: def.Field, ValueField: def.ValueField, Size: size, Order: def.Order}, true
	case model.FacetTypeDateHistogram:
		return query.DateHistogramFacet{Field: def.Field, Interval: def.Interval}, true
	}
	return nil, false
}

func copyBounds(bounds []model.Bound) []model.Bound {
	if bounds == nil {
		return nil
	}
	return append([]model.Bound(nil), bounds...)
}
