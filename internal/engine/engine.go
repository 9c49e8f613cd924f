// Package engine wires the builder, serializer, reverse parser, result mapper
// and transport into the pipeline used by the API and the CLI.
package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gcbaptista/go-facet-query/config"
	"github.com/gcbaptista/go-facet-query/internal/builder"
	internalErrors "github.com/gcbaptista/go-facet-query/internal/errors"
	"github.com/gcbaptista/go-facet-query/internal/metrics"
	"github.com/gcbaptista/go-facet-query/internal/results"
	"github.com/gcbaptista/go-facet-query/internal/reverse"
	"github.com/gcbaptista/go-facet-query/internal/serializer"
	"github.com/gcbaptista/go-facet-query/internal/transport"
	"github.com/gcbaptista/go-facet-query/model"
	"github.com/gcbaptista/go-facet-query/query"
	"github.com/gcbaptista/go-facet-query/services"
)

// Engine is the translation pipeline.
// It implements the services.Translator interface.
type Engine struct {
	settings   *config.Settings
	logger     *zap.Logger
	metrics    *metrics.Collector
	builder    services.QueryBuilder
	serializer services.QuerySerializer
	parser     services.OptionsParser
	mapper     services.ResultMapper
	transport  services.Transport
}

var _ services.Translator = (*Engine)(nil)

// Option customizes an Engine.
type Option func(*Engine)

// WithTransport replaces the HTTP transport, e.g. with a test double.
func WithTransport(t services.Transport) Option {
	return func(e *Engine) { e.transport = t }
}

// NewEngine creates the pipeline from settings. Without a search URL the
// engine translates but cannot search.
func NewEngine(settings *config.Settings, logger *zap.Logger, collector *metrics.Collector, opts ...Option) *Engine {
	if settings == nil {
		settings = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Engine{
		settings:   settings,
		logger:     logger,
		metrics:    collector,
		builder:    builder.New(logger.Named("builder"), collector),
		serializer: serializer.New(settings.PagingParams),
		parser:     reverse.Parser{},
		mapper:     results.NewMapper(logger.Named("results"), collector),
	}
	if settings.SearchURL != "" {
		e.transport = transport.NewClient(settings.SearchURL, settings.Timeout(),
			transport.WithLogger(logger.Named("transport")),
			transport.WithRateLimit(settings.SearchRateLimit, settings.SearchRateBurst))
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Settings returns the settings the engine was created with.
func (e *Engine) Settings() *config.Settings {
	return e.settings
}

// Metrics returns the engine's collector, possibly nil.
func (e *Engine) Metrics() *metrics.Collector {
	return e.metrics
}

// Translate fills unset option values from the settings, builds the query,
// attaches the default URL parameters and filter chips, and serializes it.
func (e *Engine) Translate(opts model.SearchOptions, options ...builder.BuildOption) (*services.Translation, error) {
	e.settings.ApplyTo(&opts)

	q, err := e.builder.Build(opts, options...)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	q.DefaultURLParams = e.settings.URLParams()
	q.SelectedFilters = serializer.Chips(opts.ActiveFilters, opts.Facets)

	qs := e.Serialize(q)
	t := &services.Translation{Query: q, QueryString: qs}
	if e.settings.SearchURL != "" {
		t.URL = e.settings.SearchURL + qs
	}
	return t, nil
}

// Serialize renders q as a query string.
func (e *Engine) Serialize(q *query.Query) string {
	qs := e.serializer.Serialize(q)
	e.metrics.RecordSerialized()
	return qs
}

// Restore recovers search options from a structured query.
func (e *Engine) Restore(q *query.Query) model.SearchOptions {
	opts := e.parser.ParseOptions(q)
	e.metrics.RecordRestored()
	return opts
}

// RestoreJSON decodes a structured query and recovers its options.
func (e *Engine) RestoreJSON(data []byte) (model.SearchOptions, error) {
	opts, err := reverse.ParseOptionsJSON(data)
	if err != nil {
		return model.SearchOptions{}, err
	}
	e.metrics.RecordRestored()
	return opts, nil
}

// MapResponse normalizes a raw engine response body.
func (e *Engine) MapResponse(data []byte) (*model.Result, error) {
	return e.mapper.MapJSON(data)
}

// Search translates opts, sends the query to the search endpoint and maps
// the response.
func (e *Engine) Search(ctx context.Context, opts model.SearchOptions) (*model.Result, error) {
	if e.transport == nil {
		return nil, internalErrors.NewTransportError("", 0, fmt.Errorf("no search_url configured"))
	}

	t, err := e.Translate(opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	call := e.transport.Dispatch(ctx, t.QueryString)
	body, err := call.Await(ctx)
	if err != nil {
		call.Cancel()
		e.metrics.RecordSearch(time.Since(start), true)
		return nil, err
	}

	result, err := e.MapResponse(body)
	e.metrics.RecordSearch(time.Since(start), err != nil)
	if err != nil {
		return nil, err
	}

	e.logger.Info("Search completed",
		zap.String("query_string", t.QueryString),
		zap.Int64("found", result.Found),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}
