package services

import (
	"context"

	"github.com/gcbaptista/go-facet-query/internal/builder"
	"github.com/gcbaptista/go-facet-query/internal/transport"
	"github.com/gcbaptista/go-facet-query/model"
	"github.com/gcbaptista/go-facet-query/query"
)

// QueryBuilder compiles search options into a structured query.
type QueryBuilder interface {
	Build(opts model.SearchOptions, options ...builder.BuildOption) (*query.Query, error)
}

// QuerySerializer renders a structured query as an engine query string.
type QuerySerializer interface {
	Serialize(q *query.Query) string
}

// OptionsParser recovers search options from a structured query.
type OptionsParser interface {
	ParseOptions(q *query.Query) model.SearchOptions
}

// ResultMapper normalizes raw engine responses.
type ResultMapper interface {
	Map(raw map[string]any) (*model.Result, error)
	MapJSON(data []byte) (*model.Result, error)
}

// Transport sends a query string to the search endpoint.
type Transport interface {
	Dispatch(ctx context.Context, queryString string) *transport.Call
}

// Translation is the output of a Translate call.
type Translation struct {
	Query       *query.Query `json:"query"`
	QueryString string       `json:"query_string"`
	URL         string       `json:"url,omitempty"`
}

// Translator is the full pipeline used by the API and the CLI.
type Translator interface {
	Translate(opts model.SearchOptions, options ...builder.BuildOption) (*Translation, error)
	Serialize(q *query.Query) string
	Restore(q *query.Query) model.SearchOptions
	RestoreJSON(data []byte) (model.SearchOptions, error)
	MapResponse(data []byte) (*model.Result, error)
	Search(ctx context.Context, opts model.SearchOptions) (*model.Result, error)
}
